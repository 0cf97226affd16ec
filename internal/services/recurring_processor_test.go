package services

import (
	"context"
	"testing"
	"time"

	"tally/internal/core"
)

type fakeRuleStore struct {
	rules   []core.RecurringRule
	applied int
}

func (f *fakeRuleStore) ListRecurringRules(_ context.Context) ([]core.RecurringRule, error) {
	return f.rules, nil
}

func (f *fakeRuleStore) ApplyScheduleResult(_ context.Context, materialized []core.Transaction, updated []core.RecurringRule) ([]core.Transaction, error) {
	f.applied++
	f.rules = updated
	out := make([]core.Transaction, len(materialized))
	for i, tx := range materialized {
		tx.ID = int64(i + 1)
		out[i] = tx
	}
	return out, nil
}

type fakePublisher struct {
	synced []int64
}

func (f *fakePublisher) PublishTransactionSync(_ context.Context, id int64) error {
	f.synced = append(f.synced, id)
	return nil
}

func (f *fakePublisher) PublishTransactionDelete(_ context.Context, _ core.Transaction) error {
	return nil
}

func TestProcessDueTransactions_CommitsBatchAndPublishes(t *testing.T) {
	store := &fakeRuleStore{rules: []core.RecurringRule{
		monthlyRule(1),
		monthlyRule(2),
	}}
	events := &fakePublisher{}
	processor := NewRecurringProcessor(store, events)

	now := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)
	count, err := processor.ProcessDueTransactions(context.Background(), now)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if store.applied != 1 {
		t.Fatalf("batch applied %d times, want exactly 1", store.applied)
	}
	if len(events.synced) != 2 {
		t.Fatalf("published %d sync messages, want 2", len(events.synced))
	}

	// Second run the same day: the committed cursors make it a no-op.
	count, err = processor.ProcessDueTransactions(context.Background(), now)
	if err != nil {
		t.Fatalf("second process: %v", err)
	}
	if count != 0 {
		t.Fatalf("second run count = %d, want 0", count)
	}
}

func TestProcessDueTransactions_NilPublisher(t *testing.T) {
	store := &fakeRuleStore{rules: []core.RecurringRule{monthlyRule(1)}}
	processor := NewRecurringProcessor(store, nil)

	count, err := processor.ProcessDueTransactions(context.Background(), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}
