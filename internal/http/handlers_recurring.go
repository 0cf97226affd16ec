package http

import (
	"net/http"

	"tally/internal/core"
)

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var rule core.RecurringRule
	if err := decodeJSON(r, &rule); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rule.ID = 0
	rule.LastProcessed = core.Date{}
	rule.Active = true
	rule.Tags = core.NormalizeTags(rule.Tags)

	if err := rule.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	categories, err := s.store.Categories(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !categories.Contains(rule.Kind, rule.Category) {
		writeDomainError(w, core.ErrUnknownCategory)
		return
	}

	id, err := s.store.CreateRecurringRule(r.Context(), rule)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.store.ListRecurringRules(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rules": rules,
		"count": len(rules),
	})
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rule, err := s.store.GetRecurringRule(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.store.DeleteRecurringRule(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleActivateRule(w http.ResponseWriter, r *http.Request) {
	s.setRuleActive(w, r, true)
}

func (s *Server) handleDeactivateRule(w http.ResponseWriter, r *http.Request) {
	s.setRuleActive(w, r, false)
}

func (s *Server) setRuleActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.store.SetRecurringRuleActive(r.Context(), id, active); err != nil {
		writeDomainError(w, err)
		return
	}

	rule, err := s.store.GetRecurringRule(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// handleRunDue triggers a scheduling batch on demand, outside the
// periodic ticker.
func (s *Server) handleRunDue(w http.ResponseWriter, r *http.Request) {
	created, err := s.processor.ProcessDueTransactions(r.Context(), s.now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if created > 0 {
		s.reports.Purge()
	}
	writeJSON(w, http.StatusOK, map[string]int{"materialized": created})
}
