// Package http exposes the ledger over a JSON API: transaction entry,
// recurring rules, budgets, goals, categories and the derived reports.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"tally/internal/cache"
	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/services"
)

// mutationRateLimit is the per-IP budget for write requests per minute.
const mutationRateLimit = 60

// Store is the persistence surface the API needs.
type Store interface {
	services.LedgerStore

	ListTransactions(ctx context.Context) ([]core.Transaction, error)

	CreateRecurringRule(ctx context.Context, rule core.RecurringRule) (int64, error)
	GetRecurringRule(ctx context.Context, id int64) (core.RecurringRule, error)
	ListRecurringRules(ctx context.Context) ([]core.RecurringRule, error)
	SetRecurringRuleActive(ctx context.Context, id int64, active bool) error
	DeleteRecurringRule(ctx context.Context, id int64) error

	SetBudget(ctx context.Context, budget core.Budget) error
	GetBudget(ctx context.Context, month string) (core.Budget, error)
	DeleteBudget(ctx context.Context, month string) error

	CreateGoal(ctx context.Context, g core.Goal) (int64, error)
	GetGoal(ctx context.Context, id int64) (core.Goal, error)
	ListGoals(ctx context.Context) ([]core.Goal, error)
	ContributeToGoal(ctx context.Context, id int64, amount core.Money) (core.Goal, error)
	DeleteGoal(ctx context.Context, id int64) error

	AddCategory(ctx context.Context, kind core.Kind, name string) error
	RemoveCategory(ctx context.Context, kind core.Kind, name string) error
	ResetCategories(ctx context.Context, kind core.Kind) error
}

// Config wires the server's collaborators.
type Config struct {
	Port      string
	Store     Store
	Ledger    *services.LedgerService
	Processor *services.RecurringProcessor
	Logger    *log.Logger
	CacheTTL  time.Duration
	CacheSize int
}

// Server is the HTTP front end. Derived reports are cached per request
// URI and the whole cache is purged on any ledger mutation.
type Server struct {
	httpServer *http.Server
	store      Store
	ledger     *services.LedgerService
	processor  *services.RecurringProcessor
	reports    *cache.LRUCache[[]byte]
	limiter    *rateLimiter
	metrics    securityMetrics
	logger     *log.Logger
	structured *log.StructuredLogger

	// now is replaceable so handlers resolve "today" deterministically
	// under test.
	now func() time.Time

	shutdownOnce sync.Once
}

// NewServer builds the server and its routing table.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = 256
	}

	s := &Server{
		store:      cfg.Store,
		ledger:     cfg.Ledger,
		processor:  cfg.Processor,
		reports:    cache.NewLRUCache[[]byte](cacheSize, cacheTTL),
		limiter:    newRateLimiter(mutationRateLimit),
		logger:     logger,
		structured: log.NewStructuredLogger(logger),
		now:        time.Now,
	}

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.withObservability(s.routes()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("POST /api/recurring", s.handleCreateRule)
	mux.HandleFunc("GET /api/recurring", s.handleListRules)
	mux.HandleFunc("GET /api/recurring/{id}", s.handleGetRule)
	mux.HandleFunc("DELETE /api/recurring/{id}", s.handleDeleteRule)
	mux.HandleFunc("POST /api/recurring/{id}/activate", s.handleActivateRule)
	mux.HandleFunc("POST /api/recurring/{id}/deactivate", s.handleDeactivateRule)
	mux.HandleFunc("POST /api/recurring/run", s.handleRunDue)

	mux.HandleFunc("PUT /api/budgets/{month}", s.handleSetBudget)
	mux.HandleFunc("GET /api/budgets/{month}", s.handleGetBudget)
	mux.HandleFunc("DELETE /api/budgets/{month}", s.handleDeleteBudget)
	mux.HandleFunc("GET /api/budgets/{month}/variance", s.handleBudgetVariance)

	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("GET /api/goals/projections", s.handleGoalProjections)
	mux.HandleFunc("GET /api/goals/{id}", s.handleGetGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)
	mux.HandleFunc("POST /api/goals/{id}/contribute", s.handleContributeGoal)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleAddCategory)
	mux.HandleFunc("DELETE /api/categories", s.handleRemoveCategory)
	mux.HandleFunc("POST /api/categories/reset", s.handleResetCategories)

	mux.HandleFunc("GET /api/reports/summary", s.handleReportSummary)
	mux.HandleFunc("GET /api/reports/categories", s.handleReportCategories)
	mux.HandleFunc("GET /api/reports/series", s.handleReportSeries)
	mux.HandleFunc("GET /api/reports/patterns/weekday", s.handleReportWeekday)
	mux.HandleFunc("GET /api/reports/patterns/day-of-month", s.handleReportDayOfMonth)
	mux.HandleFunc("GET /api/reports/cashflow", s.handleReportCashFlow)
	mux.HandleFunc("GET /api/reports/monthly", s.handleReportMonthly)
	mux.HandleFunc("GET /api/reports/tax", s.handleReportTax)
	mux.HandleFunc("GET /api/health-score", s.handleHealthScore)
	mux.HandleFunc("GET /api/insights", s.handleInsights)

	return mux
}

// Handler returns the fully wrapped handler, for tests that drive the
// server without a listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ReportCache exposes the report cache for expiry sweeps.
func (s *Server) ReportCache() cache.Cleaner {
	return s.reports
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops background goroutines.
// Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "HTTP server shutting down",
			log.FieldOperation, log.OpShutdown)
		s.limiter.stop()
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}

// today resolves the current calendar date for preset ranges, dueness
// and projections.
func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// statusRecorder captures the status code written downstream.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withObservability is the outermost middleware: request ID, client IP
// resolution, rate limiting on writes, security headers and start/end
// logging.
func (s *Server) withObservability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := newRequestID()
		clientIP := extractClientIP(r)

		setSecurityHeaders(w)
		w.Header().Set("X-Request-ID", requestID)

		reqLogger := s.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, reqLogger)
		r = r.WithContext(ctx)

		if isMutating(r.Method) && !s.limiter.allow(clientIP, &s.metrics) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			writeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}

		s.structured.LogHTTPStart(ctx, r, clientIP)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.structured.LogHTTPEnd(ctx, r, rec.status, time.Since(start).Milliseconds(), clientIP)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz reports ready only when the store answers.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Categories(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
