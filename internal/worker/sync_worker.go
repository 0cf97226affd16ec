package worker

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/sheets"
)

// TransactionGetter is the slice of the ledger store the worker needs
// to resolve sync events into full records.
type TransactionGetter interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
}

// SyncWorker mirrors ledger changes into the export target.
type SyncWorker struct {
	store   TransactionGetter
	writer  sheets.TransactionWriter
	deleter sheets.TransactionDeleter
}

func NewSyncWorker(store TransactionGetter, writer sheets.TransactionWriter, deleter sheets.TransactionDeleter) *SyncWorker {
	return &SyncWorker{
		store:   store,
		writer:  writer,
		deleter: deleter,
	}
}

// HandleEvent dispatches one ledger event. Returning an error requeues
// the message for retry.
func (w *SyncWorker) HandleEvent(ctx context.Context, event *amqp.Event) error {
	switch event.Type {
	case amqp.EventTransactionSync:
		return w.handleSync(ctx, event)
	case amqp.EventTransactionDelete:
		return w.handleDelete(ctx, event)
	default:
		return fmt.Errorf("unhandled event type: %q", event.Type)
	}
}

func (w *SyncWorker) handleSync(ctx context.Context, event *amqp.Event) error {
	tx, err := w.store.GetTransaction(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("get transaction %d: %w", event.ID, err)
	}

	ref, err := w.writer.Append(ctx, tx)
	if err != nil {
		return fmt.Errorf("append to export target: %w", err)
	}

	slog.InfoContext(ctx, "Synced transaction to export target",
		"transaction_id", event.ID,
		"ref", ref,
		"category", tx.Category,
		"amount", tx.Amount.String())
	return nil
}

func (w *SyncWorker) handleDelete(ctx context.Context, event *amqp.Event) error {
	if w.deleter == nil {
		slog.WarnContext(ctx, "No deleter configured, skipping export deletion",
			"transaction_id", event.ID)
		return nil
	}
	if event.Transaction == nil {
		return fmt.Errorf("delete event %d has no record payload", event.ID)
	}

	// The local row is already gone; the payload is the only way to
	// find the exported copy.
	if err := w.deleter.Delete(ctx, *event.Transaction); err != nil {
		return fmt.Errorf("delete from export target: %w", err)
	}

	slog.InfoContext(ctx, "Deleted transaction from export target",
		"transaction_id", event.ID)
	return nil
}
