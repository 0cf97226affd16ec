package services

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/core"
)

// LedgerStore is the slice of the ledger store direct entry needs.
type LedgerStore interface {
	AppendTransaction(ctx context.Context, tx core.Transaction) (int64, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	Categories(ctx context.Context) (core.CategorySet, error)
}

// LedgerService handles direct transaction entry and deletion,
// validating records before the core accepts them and publishing sync
// events afterwards.
type LedgerService struct {
	store  LedgerStore
	events EventPublisher
}

// NewLedgerService creates a service. events may be nil.
func NewLedgerService(store LedgerStore, events EventPublisher) *LedgerService {
	return &LedgerService{store: store, events: events}
}

// CreateTransaction validates and appends a transaction. The category
// must exist in the set matching the transaction's kind at creation
// time; it is not re-validated later.
func (s *LedgerService) CreateTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	tx.Tags = core.NormalizeTags(tx.Tags)
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	categories, err := s.store.Categories(ctx)
	if err != nil {
		return 0, fmt.Errorf("load categories: %w", err)
	}
	if !categories.Contains(tx.Kind, tx.Category) {
		return 0, core.ErrUnknownCategory
	}

	id, err := s.store.AppendTransaction(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("append transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"transaction_id", id,
		"kind", string(tx.Kind),
		"category", tx.Category,
		"amount", tx.Amount.String())

	if s.events != nil {
		if err := s.events.PublishTransactionSync(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message",
				"transaction_id", id, "error", err)
			// The local write succeeded; sync catches up later.
		}
	}

	return id, nil
}

// DeleteTransaction removes a transaction wholesale and publishes a
// delete event carrying the record, since downstream stores locate rows
// by content rather than by our IDs.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id)

	if s.events != nil {
		if err := s.events.PublishTransactionDelete(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete message",
				"transaction_id", id, "error", err)
		}
	}

	return nil
}
