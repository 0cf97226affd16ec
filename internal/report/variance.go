package report

import (
	"sort"

	"tally/internal/core"
)

// VarianceRow compares one category's budget with its actual spend for
// the budget's month. Remaining may be negative, signaling overspend.
type VarianceRow struct {
	Category    string     `json:"category"`
	Budget      core.Money `json:"budget"`
	Actual      core.Money `json:"actual"`
	Remaining   core.Money `json:"remaining"`
	PercentUsed float64    `json:"percent_used"`
	OverBudget  bool       `json:"over_budget"`
}

// VarianceReport is a month's budget-versus-actual comparison. Totals
// are the sums of the per-row columns, not recomputed independently.
type VarianceReport struct {
	Month          string        `json:"month"`
	Rows           []VarianceRow `json:"rows"`
	TotalBudget    core.Money    `json:"total_budget"`
	TotalActual    core.Money    `json:"total_actual"`
	TotalRemaining core.Money    `json:"total_remaining"`
}

// BudgetVariance compares a month's budget against the ledger. Only
// categories with a positive budget produce rows; a category with no
// matching transactions counts as zero actual. Actuals are the expense
// transactions dated within the budget's month.
func BudgetVariance(budget core.Budget, txs []core.Transaction) VarianceReport {
	report := VarianceReport{
		Month:          budget.Month,
		TotalBudget:    core.Zero(),
		TotalActual:    core.Zero(),
		TotalRemaining: core.Zero(),
	}

	actuals := make(map[string]core.Money)
	for _, tx := range txs {
		if tx.Kind != core.Expense || tx.Date.MonthKey() != budget.Month {
			continue
		}
		if existing, ok := actuals[tx.Category]; ok {
			actuals[tx.Category] = existing.Add(tx.Amount)
		} else {
			actuals[tx.Category] = tx.Amount
		}
	}

	for category, limit := range budget.Limits {
		if !limit.IsPositive() {
			continue
		}
		actual, ok := actuals[category]
		if !ok {
			actual = core.Zero()
		}
		remaining := limit.Sub(actual)
		report.Rows = append(report.Rows, VarianceRow{
			Category:    category,
			Budget:      limit,
			Actual:      actual,
			Remaining:   remaining,
			PercentUsed: actual.Ratio(limit) * 100,
			OverBudget:  remaining.IsNegative(),
		})
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].Category < report.Rows[j].Category
	})

	for _, row := range report.Rows {
		report.TotalBudget = report.TotalBudget.Add(row.Budget)
		report.TotalActual = report.TotalActual.Add(row.Actual)
		report.TotalRemaining = report.TotalRemaining.Add(row.Remaining)
	}
	return report
}
