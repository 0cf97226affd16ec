package http

import (
	"net/http"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/report"
)

type createdResponse struct {
	ID int64 `json:"id"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := decodeJSON(r, &tx); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tx.ID = 0

	id, err := s.ledger.CreateTransaction(r.Context(), tx)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.reports.Purge()
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	txs = report.SortByDateDesc(filter.apply(txs, s.today()))
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txs,
		"count":        len(txs),
	})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tx, err := s.store.GetTransaction(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Transaction delete failed",
			log.FieldTransactionID, id, log.FieldError, err.Error())
		writeDomainError(w, err)
		return
	}

	s.reports.Purge()
	writeJSON(w, http.StatusNoContent, nil)
}
