package report

import (
	"fmt"
	"strings"

	"tally/internal/core"
)

// Trend classifies recent spending direction.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendFlat    Trend = "flat"
	TrendUnknown Trend = "unknown" // fewer than three months of data
)

// Insights is the derived commentary for the month containing today:
// month-over-month movement, the dominant expense category, the current
// savings rate, the multi-month trend and plain-text recommendations.
type Insights struct {
	ExpenseChangePct   float64    `json:"expense_change_pct"`
	TopExpenseCategory string     `json:"top_expense_category,omitempty"`
	TopExpenseAmount   core.Money `json:"top_expense_amount"`
	SavingsRate        float64    `json:"savings_rate"`
	Trend              Trend      `json:"trend"`
	Recommendations    []string   `json:"recommendations,omitempty"`
}

// SpendingTrend compares the recent three-month average expense against
// the older three within the last six months of data. Movement beyond
// ±10% classifies as up or down.
func SpendingTrend(txs []core.Transaction) Trend {
	series := MonthlySeries(FilterByKind(txs, core.Expense))
	if len(series) > 6 {
		series = series[len(series)-6:]
	}
	if len(series) < 3 {
		return TrendUnknown
	}

	mean := func(points []MonthlyPoint) float64 {
		total := core.Zero()
		for _, p := range points {
			total = total.Add(p.Expense)
		}
		return total.DivInt(int64(len(points))).Float64()
	}

	older := mean(series[:3])
	recent := mean(series[len(series)-3:])
	switch {
	case recent > older*1.1:
		return TrendUp
	case recent < older*0.9:
		return TrendDown
	default:
		return TrendFlat
	}
}

// BuildInsights derives the current month's insights from the full
// ledger, the month's budget (zero-value when none) and all goals.
func BuildInsights(txs []core.Transaction, budget core.Budget, goals []core.Goal, today core.Date) Insights {
	current := FilterByPreset(txs, PresetThisMonth, today)
	previous := FilterByPreset(txs, PresetLastMonth, today)

	currentSummary := Summarize(current)
	previousSummary := Summarize(previous)

	insights := Insights{
		SavingsRate:      currentSummary.SavingsRate(),
		Trend:            SpendingTrend(txs),
		TopExpenseAmount: core.Zero(),
	}

	// Month-over-month change, guarded when last month had no expenses.
	change := currentSummary.TotalExpense.Sub(previousSummary.TotalExpense)
	insights.ExpenseChangePct = change.Ratio(previousSummary.TotalExpense) * 100

	if stats := GroupByCategory(FilterByKind(current, core.Expense)); len(stats) > 0 {
		insights.TopExpenseCategory = stats[0].Category
		insights.TopExpenseAmount = stats[0].Sum
	}

	insights.Recommendations = recommendations(current, currentSummary, budget, goals, today)
	return insights
}

func recommendations(current []core.Transaction, summary Summary, budget core.Budget, goals []core.Goal, today core.Date) []string {
	var recs []string

	variance := BudgetVariance(budget, current)
	var over []string
	for _, row := range variance.Rows {
		if row.OverBudget {
			over = append(over, row.Category)
		}
	}
	if len(over) > 0 {
		focus := over
		if len(focus) > 3 {
			focus = focus[:3]
		}
		recs = append(recs, fmt.Sprintf(
			"You're over budget in %d categories this month. Focus on: %s",
			len(over), strings.Join(focus, ", ")))
	}

	var urgent []string
	for _, g := range goals {
		projection := ProjectGoal(g, today)
		if projection.Status == GoalOnTrack && projection.DaysRemaining < 60 && projection.Remaining.IsPositive() {
			urgent = append(urgent, g.Name)
		}
	}
	if len(urgent) > 0 {
		focus := urgent
		if len(focus) > 2 {
			focus = focus[:2]
		}
		recs = append(recs, fmt.Sprintf(
			"You have %d goals approaching their deadline. Focus on: %s",
			len(urgent), strings.Join(focus, ", ")))
	}

	if summary.TotalIncome.IsPositive() {
		recommended := summary.TotalIncome.MulFloat(0.2)
		if summary.Net().Cmp(recommended) < 0 {
			diff := recommended.Sub(summary.Net())
			recs = append(recs, fmt.Sprintf(
				"Try to save an additional %s this month to reach the recommended 20%% savings rate",
				diff.String()))
		}
	}

	return recs
}
