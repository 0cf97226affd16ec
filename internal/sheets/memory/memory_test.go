package memory

import (
	"context"
	"testing"

	"tally/internal/core"
)

func TestAppendAndDelete(t *testing.T) {
	store := New()
	ctx := context.Background()

	tx := core.Transaction{
		Date:        core.NewDate(2024, 3, 15),
		Kind:        core.Expense,
		Category:    "🛒 Groceries",
		Amount:      core.MoneyFromCents(4250),
		Description: "weekly shop",
	}

	ref, err := store.Append(ctx, tx)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "mem:1" {
		t.Fatalf("ref = %s", ref)
	}
	if len(store.Items()) != 1 {
		t.Fatal("item not stored")
	}

	if err := store.Delete(ctx, tx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.Items()) != 0 {
		t.Fatal("item not deleted")
	}

	// Deleting again is a no-op.
	if err := store.Delete(ctx, tx); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	store := New()
	if _, err := store.Append(context.Background(), core.Transaction{}); err == nil {
		t.Fatal("invalid transaction accepted")
	}
}
