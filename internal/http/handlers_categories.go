package http

import (
	"net/http"
	"strings"

	"tally/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.Categories(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

type categoryRequest struct {
	Kind core.Kind `json:"kind"`
	Name string    `json:"name"`
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !req.Kind.IsValid() {
		writeDomainError(w, core.ErrInvalidKind)
		return
	}

	if err := s.store.AddCategory(r.Context(), req.Kind, strings.TrimSpace(req.Name)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"kind": string(req.Kind),
		"name": strings.TrimSpace(req.Name),
	})
}

// handleRemoveCategory identifies the category by query parameters;
// labels carry emoji so they stay out of the path.
func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKindParam(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeDomainError(w, core.ErrEmptyCategory)
		return
	}

	if err := s.store.RemoveCategory(r.Context(), kind, name); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// handleResetCategories restores one kind's list to the defaults.
func (s *Server) handleResetCategories(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKindParam(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.store.ResetCategories(r.Context(), kind); err != nil {
		writeDomainError(w, err)
		return
	}

	categories, err := s.store.Categories(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}
