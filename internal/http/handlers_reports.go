package http

import (
	"encoding/json"
	"net/http"
	"time"

	"tally/internal/core"
	"tally/internal/report"
)

// cachedReport serves a derived view from the report cache, keyed by
// the request URI, computing and storing it on a miss. Mutating
// handlers purge the whole cache, so a hit is never stale.
func (s *Server) cachedReport(w http.ResponseWriter, r *http.Request, compute func() (any, error)) {
	key := r.URL.RequestURI()
	if body, ok := s.reports.Get(key); ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("X-Cache", "hit")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}

	v, err := compute()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	body, err := json.Marshal(v)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.reports.Set(key, body)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Cache", "miss")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// filteredTransactions loads the ledger and applies the query filter.
func (s *Server) filteredTransactions(r *http.Request) ([]core.Transaction, listFilter, error) {
	filter, err := parseListFilter(r)
	if err != nil {
		return nil, listFilter{}, err
	}
	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		return nil, listFilter{}, err
	}
	return filter.apply(txs, s.today()), filter, nil
}

type summaryResponse struct {
	report.Summary
	Net         core.Money `json:"net"`
	SavingsRate float64    `json:"savings_rate"`
	Count       int        `json:"count"`
}

func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	s.cachedReport(w, r, func() (any, error) {
		txs, _, err := s.filteredTransactions(r)
		if err != nil {
			return nil, err
		}
		summary := report.Summarize(txs)
		return summaryResponse{
			Summary:     summary,
			Net:         summary.Net(),
			SavingsRate: summary.SavingsRate(),
			Count:       len(txs),
		}, nil
	})
}

func (s *Server) handleReportCategories(w http.ResponseWriter, r *http.Request) {
	s.cachedReport(w, r, func() (any, error) {
		txs, _, err := s.filteredTransactions(r)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"categories": report.GroupByCategory(txs),
		}, nil
	})
}

func (s *Server) handleReportSeries(w http.ResponseWriter, r *http.Request) {
	granularity, err := parseGranularity(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.cachedReport(w, r, func() (any, error) {
		txs, _, err := s.filteredTransactions(r)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"granularity": granularity,
			"buckets":     report.BucketByPeriod(txs, granularity),
		}, nil
	})
}

func (s *Server) handleReportWeekday(w http.ResponseWriter, r *http.Request) {
	s.cachedReport(w, r, func() (any, error) {
		txs, _, err := s.filteredTransactions(r)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"weekdays": report.ByDayOfWeek(txs),
		}, nil
	})
}

func (s *Server) handleReportDayOfMonth(w http.ResponseWriter, r *http.Request) {
	s.cachedReport(w, r, func() (any, error) {
		txs, _, err := s.filteredTransactions(r)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"days": report.ByDayOfMonth(txs),
		}, nil
	})
}

func (s *Server) handleReportCashFlow(w http.ResponseWriter, r *http.Request) {
	s.cachedReport(w, r, func() (any, error) {
		txs, _, err := s.filteredTransactions(r)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"weeks": report.WeeklyCashFlow(txs),
		}, nil
	})
}

func (s *Server) handleReportMonthly(w http.ResponseWriter, r *http.Request) {
	s.cachedReport(w, r, func() (any, error) {
		txs, filter, err := s.filteredTransactions(r)
		if err != nil {
			return nil, err
		}

		// The daily average only makes sense over a bounded window.
		var dailyAverage core.Money
		rng, bounded := s.resolveRange(filter)
		if bounded {
			dailyAverage = report.AverageDailySpend(txs, rng)
		}

		return map[string]any{
			"months":              report.MonthlySeries(txs),
			"average_daily_spend": dailyAverage,
		}, nil
	})
}

// resolveRange turns the filter into a concrete date range when it has
// one.
func (s *Server) resolveRange(f listFilter) (report.Range, bool) {
	if f.preset != "" {
		return report.PresetRange(f.preset, s.today())
	}
	if f.bounded {
		return report.Range{Start: f.from, End: f.to}, true
	}
	return report.Range{}, false
}

func (s *Server) handleReportTax(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearParam(r, s.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.cachedReport(w, r, func() (any, error) {
		txs, err := s.store.ListTransactions(r.Context())
		if err != nil {
			return nil, err
		}
		return report.TaxYearSummary(txs, year), nil
	})
}

// handleHealthScore scores the month named by the month query
// parameter, defaulting to the current one.
func (s *Server) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthParam(r, s.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.cachedReport(w, r, func() (any, error) {
		txs, err := s.store.ListTransactions(r.Context())
		if err != nil {
			return nil, err
		}
		budget, err := s.store.GetBudget(r.Context(), month)
		if err != nil {
			return nil, err
		}
		goals, err := s.store.ListGoals(r.Context())
		if err != nil {
			return nil, err
		}

		start, _ := time.Parse("2006-01", month)
		monthStart := core.DateOf(start)
		period := report.FilterByRange(txs, monthStart, monthStart.MonthEnd())

		score := report.Score(report.HealthInput{
			PeriodTransactions: period,
			Budget:             budget,
			Goals:              goals,
		})
		return map[string]any{
			"month": month,
			"score": score,
		}, nil
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	s.cachedReport(w, r, func() (any, error) {
		today := s.today()
		txs, err := s.store.ListTransactions(r.Context())
		if err != nil {
			return nil, err
		}
		budget, err := s.store.GetBudget(r.Context(), today.MonthKey())
		if err != nil {
			return nil, err
		}
		goals, err := s.store.ListGoals(r.Context())
		if err != nil {
			return nil, err
		}
		return report.BuildInsights(txs, budget, goals, today), nil
	})
}
