package http

import (
	"errors"
	"net/http"

	"tally/internal/core"
	"tally/internal/report"
)

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var goal core.Goal
	if err := decodeJSON(r, &goal); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	goal.ID = 0
	goal.CreatedAt = s.today()
	if goal.Priority == "" {
		goal.Priority = core.PriorityMedium
	}

	if err := goal.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	id, err := s.store.CreateGoal(r.Context(), goal)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.reports.Purge()
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

// handleListGoals returns goals ordered most urgent priority first.
func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.store.ListGoals(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	goals = core.SortGoals(goals)
	writeJSON(w, http.StatusOK, map[string]any{
		"goals": goals,
		"count": len(goals),
	})
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	goal, err := s.store.GetGoal(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.store.DeleteGoal(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	s.reports.Purge()
	writeJSON(w, http.StatusNoContent, nil)
}

type contributeRequest struct {
	Amount core.Money `json:"amount"`
}

func (s *Server) handleContributeGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var req contributeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, errors.New("contribution amount must be positive"))
		return
	}

	goal, err := s.store.ContributeToGoal(r.Context(), id, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.reports.Purge()
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleGoalProjections(w http.ResponseWriter, r *http.Request) {
	s.cachedReport(w, r, func() (any, error) {
		goals, err := s.store.ListGoals(r.Context())
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"projections": report.ProjectGoals(goals, s.today()),
		}, nil
	})
}
