package report

import (
	"math"

	"tally/internal/core"
)

// HealthScore is the composite 0-100 financial health metric for one
// evaluation period, with its four component scores. Each component is
// floored independently; fractional remainders are not redistributed.
type HealthScore struct {
	CashFlow        int `json:"cash_flow"`        // 0-30
	SavingsRate     int `json:"savings_rate"`     // 0-25
	BudgetAdherence int `json:"budget_adherence"` // 0-25
	GoalProgress    int `json:"goal_progress"`    // 0-20
	Total           int `json:"total"`
}

// HealthInput bundles the period's ledger slice, its budget (zero-value
// when none is set) and all goals.
type HealthInput struct {
	PeriodTransactions []core.Transaction
	Budget             core.Budget
	Goals              []core.Goal
}

// Score computes the weighted composite. Cash flow pays 30 when income
// beats expenses and 15 when it covers at least 90% of them. Savings
// rate scales linearly to full marks at 20%. Budget adherence pays 10
// for having any budget plus up to 15 for categories kept within their
// limits. Goal progress pays up to 20 on the average clamped progress.
func Score(input HealthInput) HealthScore {
	var score HealthScore
	summary := Summarize(input.PeriodTransactions)

	income := summary.TotalIncome
	expense := summary.TotalExpense

	switch {
	case income.Cmp(expense) > 0:
		score.CashFlow = 30
	case income.Cmp(expense.MulFloat(0.9)) > 0:
		score.CashFlow = 15
	}

	if income.IsPositive() {
		rate := summary.Net().Ratio(income)
		points := int(math.Floor(rate * 125))
		if points > 25 {
			points = 25
		}
		if points < 0 {
			points = 0
		}
		score.SavingsRate = points
	}

	variance := BudgetVariance(input.Budget, input.PeriodTransactions)
	if budgeted := len(variance.Rows); budgeted > 0 {
		within := 0
		for _, row := range variance.Rows {
			if row.Actual.Cmp(row.Budget) <= 0 {
				within++
			}
		}
		score.BudgetAdherence = 10 + int(math.Floor(15*float64(within)/float64(budgeted)))
	}

	if len(input.Goals) > 0 {
		total := 0.0
		for _, g := range input.Goals {
			total += goalProgress(g)
		}
		avg := total / float64(len(input.Goals))
		score.GoalProgress = int(math.Floor(20 * avg))
	}

	score.Total = score.CashFlow + score.SavingsRate + score.BudgetAdherence + score.GoalProgress
	return score
}
