package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tally/internal/core"
)

// RuleStore is the slice of the ledger store the scheduler needs: a rule
// snapshot to evaluate, and atomic commit of one batch's output.
type RuleStore interface {
	ListRecurringRules(ctx context.Context) ([]core.RecurringRule, error)

	// ApplyScheduleResult appends the materialized transactions and
	// replaces the rule set in a single transaction, so readers never
	// observe a partially advanced batch. It returns the appended
	// transactions with their assigned IDs.
	ApplyScheduleResult(ctx context.Context, materialized []core.Transaction, updated []core.RecurringRule) ([]core.Transaction, error)
}

// EventPublisher publishes ledger change events for downstream sync.
type EventPublisher interface {
	PublishTransactionSync(ctx context.Context, id int64) error
	PublishTransactionDelete(ctx context.Context, tx core.Transaction) error
}

// RecurringProcessor runs scheduling batches against the ledger store.
type RecurringProcessor struct {
	store  RuleStore
	events EventPublisher
}

// NewRecurringProcessor creates a processor. events may be nil when no
// downstream sync is configured.
func NewRecurringProcessor(store RuleStore, events EventPublisher) *RecurringProcessor {
	return &RecurringProcessor{store: store, events: events}
}

// ProcessDueTransactions evaluates every rule against now's calendar
// date, commits the batch atomically and returns how many transactions
// were materialized. Re-running within the same day creates nothing new.
func (p *RecurringProcessor) ProcessDueTransactions(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	today := core.DateOf(now)

	rules, err := p.store.ListRecurringRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurring rules: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring rules",
		"total_rules", len(rules),
		"processing_date", today.String())

	result := ProcessDue(rules, today)

	for _, diag := range result.Skipped {
		slog.WarnContext(ctx, "Skipped malformed recurring rule",
			"rule_id", diag.RuleID,
			"reason", diag.Reason)
	}

	created, err := p.store.ApplyScheduleResult(ctx, result.Materialized, result.Updated)
	if err != nil {
		return 0, fmt.Errorf("apply schedule result: %w", err)
	}

	for _, tx := range created {
		slog.InfoContext(ctx, "Materialized transaction from recurring rule",
			"transaction_id", tx.ID,
			"description", tx.Description,
			"amount", tx.Amount.String(),
			"category", tx.Category)

		if p.events == nil {
			continue
		}
		if err := p.events.PublishTransactionSync(ctx, tx.ID); err != nil {
			// The ledger write already succeeded; sync catches up later.
			slog.ErrorContext(ctx, "Failed to publish sync message",
				"transaction_id", tx.ID,
				"error", err)
		}
	}

	slog.InfoContext(ctx, "Recurring rule processing complete",
		"materialized", len(created),
		"skipped", len(result.Skipped),
		"total_checked", len(rules))

	return len(created), nil
}
