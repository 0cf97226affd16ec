package http

import (
	"net/http"

	"tally/internal/core"
	"tally/internal/report"
)

// setBudgetRequest carries only the limits; the month comes from the
// path and always wins.
type setBudgetRequest struct {
	Limits map[string]core.Money `json:"limits"`
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	month, err := pathMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var req setBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	budget := core.Budget{Month: month, Limits: req.Limits}
	if err := budget.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.store.SetBudget(r.Context(), budget); err != nil {
		writeDomainError(w, err)
		return
	}

	s.reports.Purge()
	writeJSON(w, http.StatusOK, budget)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	month, err := pathMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	budget, err := s.store.GetBudget(r.Context(), month)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	month, err := pathMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.store.DeleteBudget(r.Context(), month); err != nil {
		writeDomainError(w, err)
		return
	}

	s.reports.Purge()
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleBudgetVariance(w http.ResponseWriter, r *http.Request) {
	month, err := pathMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.cachedReport(w, r, func() (any, error) {
		budget, err := s.store.GetBudget(r.Context(), month)
		if err != nil {
			return nil, err
		}
		txs, err := s.store.ListTransactions(r.Context())
		if err != nil {
			return nil, err
		}
		return report.BudgetVariance(budget, txs), nil
	})
}
