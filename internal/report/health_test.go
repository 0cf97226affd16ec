package report

import (
	"testing"

	"tally/internal/core"
)

func TestScorePerfect(t *testing.T) {
	day := core.NewDate(2024, 5, 10)
	input := HealthInput{
		PeriodTransactions: []core.Transaction{
			tx(1, day, core.Income, "💼 Salary", 100000),
			tx(2, day, core.Expense, "🛒 Groceries", 50000),
		},
		Budget: core.Budget{
			Month:  "2024-05",
			Limits: map[string]core.Money{"🛒 Groceries": core.MoneyFromCents(60000)},
		},
		Goals: []core.Goal{{
			Name:     "done",
			Target:   core.MoneyFromCents(100000),
			Current:  core.MoneyFromCents(100000),
			Deadline: core.NewDate(2024, 12, 31),
			Priority: core.PriorityHigh,
		}},
	}

	score := Score(input)
	if score.CashFlow != 30 || score.SavingsRate != 25 || score.BudgetAdherence != 25 || score.GoalProgress != 20 {
		t.Fatalf("components = %+v", score)
	}
	if score.Total != 100 {
		t.Fatalf("total = %d, want 100", score.Total)
	}
}

func TestScoreComponents(t *testing.T) {
	day := core.NewDate(2024, 5, 10)

	t.Run("cash flow near break even", func(t *testing.T) {
		score := Score(HealthInput{PeriodTransactions: []core.Transaction{
			tx(1, day, core.Income, "💼 Salary", 9500),
			tx(2, day, core.Expense, "🛒 Groceries", 10000),
		}})
		if score.CashFlow != 15 {
			t.Fatalf("cash flow = %d, want 15", score.CashFlow)
		}
		if score.SavingsRate != 0 {
			t.Fatalf("negative net must not score savings, got %d", score.SavingsRate)
		}
	})

	t.Run("cash flow deficit", func(t *testing.T) {
		score := Score(HealthInput{PeriodTransactions: []core.Transaction{
			tx(1, day, core.Income, "💼 Salary", 5000),
			tx(2, day, core.Expense, "🛒 Groceries", 10000),
		}})
		if score.CashFlow != 0 {
			t.Fatalf("cash flow = %d, want 0", score.CashFlow)
		}
	})

	t.Run("savings scales linearly", func(t *testing.T) {
		// 10% savings rate scores floor(0.10 * 125) = 12.
		score := Score(HealthInput{PeriodTransactions: []core.Transaction{
			tx(1, day, core.Income, "💼 Salary", 100000),
			tx(2, day, core.Expense, "🛒 Groceries", 90000),
		}})
		if score.SavingsRate != 12 {
			t.Fatalf("savings = %d, want 12", score.SavingsRate)
		}
	})

	t.Run("partial budget adherence", func(t *testing.T) {
		score := Score(HealthInput{
			PeriodTransactions: []core.Transaction{
				tx(1, day, core.Expense, "🛒 Groceries", 70000),
				tx(2, day, core.Expense, "🚗 Transport", 5000),
			},
			Budget: core.Budget{
				Month: "2024-05",
				Limits: map[string]core.Money{
					"🛒 Groceries": core.MoneyFromCents(60000), // blown
					"🚗 Transport": core.MoneyFromCents(10000), // within
				},
			},
		})
		// 10 base + floor(15 * 1/2) = 17.
		if score.BudgetAdherence != 17 {
			t.Fatalf("adherence = %d, want 17", score.BudgetAdherence)
		}
	})

	t.Run("no budget no goals", func(t *testing.T) {
		score := Score(HealthInput{PeriodTransactions: []core.Transaction{
			tx(1, day, core.Income, "💼 Salary", 100000),
		}})
		if score.BudgetAdherence != 0 || score.GoalProgress != 0 {
			t.Fatalf("components = %+v", score)
		}
	})

	t.Run("goal progress averages", func(t *testing.T) {
		score := Score(HealthInput{Goals: []core.Goal{
			{Target: core.MoneyFromCents(10000), Current: core.MoneyFromCents(10000), Deadline: day, Priority: core.PriorityLow},
			{Target: core.MoneyFromCents(10000), Current: core.MoneyFromCents(5000), Deadline: day, Priority: core.PriorityLow},
		}})
		// avg(1.0, 0.5) = 0.75 -> floor(20 * 0.75) = 15.
		if score.GoalProgress != 15 {
			t.Fatalf("goal progress = %d, want 15", score.GoalProgress)
		}
	})
}
