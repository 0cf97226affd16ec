package report

import (
	"strings"
	"testing"

	"tally/internal/core"
)

func TestSpendingTrend(t *testing.T) {
	expense := func(y int, m int, cents int64) core.Transaction {
		return tx(0, core.NewDate(y, m, 10), core.Expense, "🛒 Groceries", cents)
	}

	t.Run("too little data", func(t *testing.T) {
		txs := []core.Transaction{expense(2024, 1, 10000), expense(2024, 2, 10000)}
		if got := SpendingTrend(txs); got != TrendUnknown {
			t.Fatalf("trend = %s, want unknown", got)
		}
	})

	t.Run("rising", func(t *testing.T) {
		txs := []core.Transaction{
			expense(2024, 1, 10000), expense(2024, 2, 10000), expense(2024, 3, 10000),
			expense(2024, 4, 20000), expense(2024, 5, 20000), expense(2024, 6, 20000),
		}
		if got := SpendingTrend(txs); got != TrendUp {
			t.Fatalf("trend = %s, want up", got)
		}
	})

	t.Run("falling", func(t *testing.T) {
		txs := []core.Transaction{
			expense(2024, 1, 20000), expense(2024, 2, 20000), expense(2024, 3, 20000),
			expense(2024, 4, 10000), expense(2024, 5, 10000), expense(2024, 6, 10000),
		}
		if got := SpendingTrend(txs); got != TrendDown {
			t.Fatalf("trend = %s, want down", got)
		}
	})

	t.Run("steady", func(t *testing.T) {
		txs := []core.Transaction{
			expense(2024, 1, 10000), expense(2024, 2, 10000), expense(2024, 3, 10000),
			expense(2024, 4, 10000), expense(2024, 5, 10000), expense(2024, 6, 10000),
		}
		if got := SpendingTrend(txs); got != TrendFlat {
			t.Fatalf("trend = %s, want flat", got)
		}
	})

	t.Run("only last six months count", func(t *testing.T) {
		txs := []core.Transaction{
			expense(2023, 1, 900000), // far past, must be ignored
			expense(2024, 1, 10000), expense(2024, 2, 10000), expense(2024, 3, 10000),
			expense(2024, 4, 10000), expense(2024, 5, 10000), expense(2024, 6, 10000),
		}
		if got := SpendingTrend(txs); got != TrendFlat {
			t.Fatalf("trend = %s, want flat", got)
		}
	})
}

func TestBuildInsights(t *testing.T) {
	today := core.NewDate(2024, 6, 15)
	txs := []core.Transaction{
		// last month
		tx(1, core.NewDate(2024, 5, 10), core.Expense, "🛒 Groceries", 100000),
		// this month
		tx(2, core.NewDate(2024, 6, 5), core.Income, "💼 Salary", 200000),
		tx(3, core.NewDate(2024, 6, 8), core.Expense, "🛒 Groceries", 90000),
		tx(4, core.NewDate(2024, 6, 9), core.Expense, "🚗 Transport", 60000),
	}

	insights := BuildInsights(txs, core.Budget{}, nil, today)

	// 1500 this month against 1000 last month.
	if insights.ExpenseChangePct != 50 {
		t.Fatalf("expense change = %v, want 50", insights.ExpenseChangePct)
	}
	if insights.TopExpenseCategory != "🛒 Groceries" {
		t.Fatalf("top category = %s", insights.TopExpenseCategory)
	}
	if insights.TopExpenseAmount.String() != "900.00" {
		t.Fatalf("top amount = %s", insights.TopExpenseAmount)
	}
	if insights.SavingsRate != 25 {
		t.Fatalf("savings rate = %v, want 25", insights.SavingsRate)
	}
	if insights.Trend != TrendUnknown {
		t.Fatalf("trend = %s, want unknown", insights.Trend)
	}
}

func TestBuildInsightsNoPriorMonth(t *testing.T) {
	today := core.NewDate(2024, 6, 15)
	txs := []core.Transaction{
		tx(1, core.NewDate(2024, 6, 8), core.Expense, "🛒 Groceries", 90000),
	}
	insights := BuildInsights(txs, core.Budget{}, nil, today)
	if insights.ExpenseChangePct != 0 {
		t.Fatalf("change with no prior month = %v, want 0", insights.ExpenseChangePct)
	}
}

func TestRecommendations(t *testing.T) {
	today := core.NewDate(2024, 6, 15)
	txs := []core.Transaction{
		tx(1, core.NewDate(2024, 6, 5), core.Income, "💼 Salary", 100000),
		tx(2, core.NewDate(2024, 6, 8), core.Expense, "🛒 Groceries", 95000),
	}
	budget := core.Budget{
		Month:  "2024-06",
		Limits: map[string]core.Money{"🛒 Groceries": core.MoneyFromCents(50000)},
	}
	goals := []core.Goal{{
		Name:     "Trip",
		Target:   core.MoneyFromCents(100000),
		Current:  core.MoneyFromCents(10000),
		Deadline: today.AddDays(20),
		Priority: core.PriorityHigh,
	}}

	insights := BuildInsights(txs, budget, goals, today)
	if len(insights.Recommendations) != 3 {
		t.Fatalf("got %d recommendations: %v", len(insights.Recommendations), insights.Recommendations)
	}

	joined := strings.Join(insights.Recommendations, "\n")
	for _, want := range []string{"over budget", "🛒 Groceries", "approaching their deadline", "Trip", "20% savings rate"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("recommendations missing %q: %v", want, insights.Recommendations)
		}
	}
}

func TestRecommendationsQuietWhenHealthy(t *testing.T) {
	today := core.NewDate(2024, 6, 15)
	txs := []core.Transaction{
		tx(1, core.NewDate(2024, 6, 5), core.Income, "💼 Salary", 100000),
		tx(2, core.NewDate(2024, 6, 8), core.Expense, "🛒 Groceries", 50000),
	}
	insights := BuildInsights(txs, core.Budget{}, nil, today)
	if len(insights.Recommendations) != 0 {
		t.Fatalf("unexpected recommendations: %v", insights.Recommendations)
	}
}
