package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"tally/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := core.Transaction{
		Date:        core.NewDate(2024, 3, 15),
		Kind:        core.Expense,
		Category:    "🛒 Groceries",
		Amount:      core.MoneyFromCents(4250),
		Description: "weekly shop",
		Notes:       "market",
		Tags:        []string{"food", "weekly"},
		Recurring:   true,
	}

	id, err := repo.AppendTransaction(ctx, in)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if id == 0 {
		t.Fatal("no ID assigned")
	}

	got, err := repo.GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Date.Equal(in.Date) || got.Kind != in.Kind || got.Category != in.Category {
		t.Fatalf("got %+v", got)
	}
	if got.Amount.String() != "42.50" {
		t.Fatalf("amount = %s", got.Amount)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "food" || got.Tags[1] != "weekly" {
		t.Fatalf("tags = %v", got.Tags)
	}
	if !got.Recurring {
		t.Fatal("recurring flag lost")
	}

	if err := repo.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTransaction(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete = %v, want ErrNotFound", err)
	}
}

func TestListTransactionsOrdered(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, day := range []int{20, 5, 12} {
		_, err := repo.AppendTransaction(ctx, core.Transaction{
			Date:     core.NewDate(2024, 3, day),
			Kind:     core.Expense,
			Category: "🛒 Groceries",
			Amount:   core.MoneyFromCents(1000),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	txs, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("got %d transactions", len(txs))
	}
	for i, wantDay := range []int{5, 12, 20} {
		if txs[i].Date.Day() != wantDay {
			t.Fatalf("position %d = day %d, want %d", i, txs[i].Date.Day(), wantDay)
		}
	}
}

func TestRecurringRuleLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rule := core.RecurringRule{
		Kind:        core.Expense,
		Category:    "🏠 Housing",
		Amount:      core.MoneyFromCents(120000),
		Description: "Rent",
		Frequency:   core.Monthly,
		StartDate:   core.NewDate(2024, 1, 1),
		Active:      true,
	}

	id, err := repo.CreateRecurringRule(ctx, rule)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetRecurringRule(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Frequency != core.Monthly || !got.Active {
		t.Fatalf("got %+v", got)
	}
	if !got.LastProcessed.IsZero() {
		t.Fatalf("new rule has cursor %s", got.LastProcessed)
	}

	if err := repo.SetRecurringRuleActive(ctx, id, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	got, err = repo.GetRecurringRule(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Active {
		t.Fatal("rule still active")
	}

	if err := repo.DeleteRecurringRule(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetRecurringRule(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete = %v", err)
	}
}

func TestApplyScheduleResult(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	today := core.NewDate(2024, 4, 1)

	id, err := repo.CreateRecurringRule(ctx, core.RecurringRule{
		Kind:        core.Expense,
		Category:    "🏠 Housing",
		Amount:      core.MoneyFromCents(120000),
		Description: "Rent",
		Frequency:   core.Monthly,
		StartDate:   core.NewDate(2024, 1, 1),
		Active:      true,
	})
	if err != nil {
		t.Fatalf("create rule: %v", err)
	}

	rule, err := repo.GetRecurringRule(ctx, id)
	if err != nil {
		t.Fatalf("get rule: %v", err)
	}
	rule.LastProcessed = today

	materialized := core.Transaction{
		Date:        today,
		Kind:        core.Expense,
		Category:    "🏠 Housing",
		Amount:      core.MoneyFromCents(120000),
		Description: "Rent (Recurring)",
		Recurring:   true,
	}

	created, err := repo.ApplyScheduleResult(ctx,
		[]core.Transaction{materialized}, []core.RecurringRule{rule})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(created) != 1 || created[0].ID == 0 {
		t.Fatalf("created = %+v", created)
	}

	stored, err := repo.GetTransaction(ctx, created[0].ID)
	if err != nil {
		t.Fatalf("get created: %v", err)
	}
	if stored.Description != "Rent (Recurring)" || !stored.Recurring {
		t.Fatalf("stored = %+v", stored)
	}

	advanced, err := repo.GetRecurringRule(ctx, id)
	if err != nil {
		t.Fatalf("get rule: %v", err)
	}
	if !advanced.LastProcessed.Equal(today) {
		t.Fatalf("cursor = %s, want %s", advanced.LastProcessed, today)
	}
}

func TestBudgetReplacePerMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := core.Budget{
		Month: "2024-03",
		Limits: map[string]core.Money{
			"🛒 Groceries": core.MoneyFromCents(40000),
			"🏠 Housing":   core.MoneyFromCents(120000),
		},
	}
	if err := repo.SetBudget(ctx, first); err != nil {
		t.Fatalf("set: %v", err)
	}

	replacement := core.Budget{
		Month:  "2024-03",
		Limits: map[string]core.Money{"🛒 Groceries": core.MoneyFromCents(50000)},
	}
	if err := repo.SetBudget(ctx, replacement); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := repo.GetBudget(ctx, "2024-03")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Limits) != 1 {
		t.Fatalf("limits = %+v, want only groceries", got.Limits)
	}
	if got.Limits["🛒 Groceries"].String() != "500.00" {
		t.Fatalf("limit = %s", got.Limits["🛒 Groceries"])
	}

	empty, err := repo.GetBudget(ctx, "2024-04")
	if err != nil {
		t.Fatalf("get empty month: %v", err)
	}
	if len(empty.Limits) != 0 || empty.Month != "2024-04" {
		t.Fatalf("empty month = %+v", empty)
	}

	if err := repo.DeleteBudget(ctx, "2024-03"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = repo.GetBudget(ctx, "2024-03")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if len(got.Limits) != 0 {
		t.Fatalf("limits survived delete: %+v", got.Limits)
	}
}

func TestGoalContribution(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateGoal(ctx, core.Goal{
		Name:      "Emergency Fund",
		Target:    core.MoneyFromCents(100000),
		Current:   core.MoneyFromCents(10000),
		Deadline:  core.NewDate(2024, 12, 31),
		Priority:  core.PriorityHigh,
		CreatedAt: core.NewDate(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := repo.ContributeToGoal(ctx, id, core.MoneyFromCents(25000))
	if err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if updated.Current.String() != "350.00" {
		t.Fatalf("current = %s, want 350.00", updated.Current)
	}

	// Overshoot past the target is allowed.
	updated, err = repo.ContributeToGoal(ctx, id, core.MoneyFromCents(70000))
	if err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if updated.Current.String() != "1050.00" {
		t.Fatalf("current = %s, want 1050.00", updated.Current)
	}

	if _, err := repo.ContributeToGoal(ctx, 999, core.MoneyFromCents(100)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing goal = %v, want ErrNotFound", err)
	}

	goals, err := repo.ListGoals(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(goals) != 1 || goals[0].Priority != core.PriorityHigh {
		t.Fatalf("goals = %+v", goals)
	}
	if !goals[0].CreatedAt.Equal(core.NewDate(2024, 1, 1)) {
		t.Fatalf("created_at = %s, want 2024-01-01", goals[0].CreatedAt)
	}
}

func TestGoalWithoutCreationDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateGoal(ctx, core.Goal{
		Name:     "Someday Fund",
		Target:   core.MoneyFromCents(50000),
		Deadline: core.NewDate(2025, 6, 30),
		Priority: core.PriorityLow,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetGoal(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CreatedAt.IsZero() {
		t.Fatalf("created_at = %s, want unset", got.CreatedAt)
	}
}

func TestCategoryManagement(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	set, err := repo.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(set.Expense) != len(core.DefaultExpenseCategories) {
		t.Fatalf("seeded %d expense categories, want %d",
			len(set.Expense), len(core.DefaultExpenseCategories))
	}
	if len(set.Income) != len(core.DefaultIncomeCategories) {
		t.Fatalf("seeded %d income categories, want %d",
			len(set.Income), len(core.DefaultIncomeCategories))
	}
	if !set.Contains(core.Expense, "🛒 Groceries") {
		t.Fatal("default expense category missing")
	}

	if err := repo.AddCategory(ctx, core.Expense, "🎮 Gaming"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := repo.AddCategory(ctx, core.Expense, "🎮 Gaming"); !errors.Is(err, core.ErrDuplicateCategory) {
		t.Fatalf("duplicate add = %v", err)
	}
	if err := repo.AddCategory(ctx, core.Expense, "  "); !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("blank add = %v", err)
	}

	if err := repo.RemoveCategory(ctx, core.Expense, "🛒 Groceries"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := repo.RemoveCategory(ctx, core.Expense, "🛒 Groceries"); !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("double remove = %v", err)
	}

	if err := repo.ResetCategories(ctx, core.Expense); err != nil {
		t.Fatalf("reset: %v", err)
	}
	set, err = repo.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if !set.Contains(core.Expense, "🛒 Groceries") {
		t.Fatal("reset did not restore defaults")
	}
	if set.Contains(core.Expense, "🎮 Gaming") {
		t.Fatal("reset kept custom category")
	}
}
