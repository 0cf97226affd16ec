package report

import (
	"sort"
	"time"

	"tally/internal/core"
)

// Summary holds the income/expense totals of a transaction set.
type Summary struct {
	TotalIncome  core.Money `json:"total_income"`
	TotalExpense core.Money `json:"total_expense"`
}

// Summarize sums amounts per kind. Empty input yields zero totals.
func Summarize(txs []core.Transaction) Summary {
	s := Summary{TotalIncome: core.Zero(), TotalExpense: core.Zero()}
	for _, tx := range txs {
		switch tx.Kind {
		case core.Income:
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
		case core.Expense:
			s.TotalExpense = s.TotalExpense.Add(tx.Amount)
		}
	}
	return s
}

// Net returns income minus expenses; it may be negative.
func (s Summary) Net() core.Money {
	return s.TotalIncome.Sub(s.TotalExpense)
}

// SavingsRate returns the net as a percentage of income, or 0 when
// income is zero. The zero case is a deliberate clamp, not an error.
func (s Summary) SavingsRate() float64 {
	return s.Net().Ratio(s.TotalIncome) * 100
}

// CategoryStat is one category's aggregate over a transaction set.
// Count is at least 1: categories with no transactions are absent.
type CategoryStat struct {
	Category string     `json:"category"`
	Sum      core.Money `json:"sum"`
	Mean     core.Money `json:"mean"`
	Count    int        `json:"count"`
}

// GroupByCategory aggregates sum, mean and count per category, ordered
// by descending sum with category name breaking ties.
func GroupByCategory(txs []core.Transaction) []CategoryStat {
	sums := make(map[string]core.Money)
	counts := make(map[string]int)
	for _, tx := range txs {
		if existing, ok := sums[tx.Category]; ok {
			sums[tx.Category] = existing.Add(tx.Amount)
		} else {
			sums[tx.Category] = tx.Amount
		}
		counts[tx.Category]++
	}

	stats := make([]CategoryStat, 0, len(sums))
	for category, sum := range sums {
		n := counts[category]
		stats = append(stats, CategoryStat{
			Category: category,
			Sum:      sum,
			Mean:     sum.DivInt(int64(n)),
			Count:    n,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if c := stats[i].Sum.Cmp(stats[j].Sum); c != 0 {
			return c > 0
		}
		return stats[i].Category < stats[j].Category
	})
	return stats
}

// Granularity selects the time bucket for BucketByPeriod.
type Granularity string

const (
	ByDay   Granularity = "day"
	ByWeek  Granularity = "week" // ISO week
	ByMonth Granularity = "month"
)

// PeriodBucket is one time bucket's income/expense totals. Period is
// "YYYY-MM-DD" for days, "YYYY-Www" for ISO weeks, "YYYY-MM" for
// months; all three sort chronologically as strings.
type PeriodBucket struct {
	Period  string     `json:"period"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
}

// Net returns the bucket's income minus expense.
func (b PeriodBucket) Net() core.Money {
	return b.Income.Sub(b.Expense)
}

func periodKey(d core.Date, g Granularity) string {
	switch g {
	case ByWeek:
		return d.WeekKey()
	case ByMonth:
		return d.MonthKey()
	default:
		return d.String()
	}
}

// BucketByPeriod groups transactions by their date floored to the
// granularity boundary and sums per kind, producing a chronological
// series for trend and variance work.
func BucketByPeriod(txs []core.Transaction, g Granularity) []PeriodBucket {
	byKey := make(map[string]*PeriodBucket)
	for _, tx := range txs {
		key := periodKey(tx.Date, g)
		bucket, ok := byKey[key]
		if !ok {
			bucket = &PeriodBucket{Period: key, Income: core.Zero(), Expense: core.Zero()}
			byKey[key] = bucket
		}
		switch tx.Kind {
		case core.Income:
			bucket.Income = bucket.Income.Add(tx.Amount)
		case core.Expense:
			bucket.Expense = bucket.Expense.Add(tx.Amount)
		}
	}

	out := make([]PeriodBucket, 0, len(byKey))
	for _, bucket := range byKey {
		out = append(out, *bucket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// WeekdayTotal is the total amount across all transactions falling on
// one day of the week, collapsed across months and years.
type WeekdayTotal struct {
	Weekday string     `json:"weekday"`
	Total   core.Money `json:"total"`
}

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// ByDayOfWeek sums amounts per day of week, Monday through Sunday.
// Every weekday appears, zero-valued when nothing fell on it.
func ByDayOfWeek(txs []core.Transaction) []WeekdayTotal {
	totals := make(map[time.Weekday]core.Money, 7)
	for _, tx := range txs {
		wd := tx.Date.Weekday()
		if existing, ok := totals[wd]; ok {
			totals[wd] = existing.Add(tx.Amount)
		} else {
			totals[wd] = tx.Amount
		}
	}

	out := make([]WeekdayTotal, 0, 7)
	for _, wd := range weekdayOrder {
		total, ok := totals[wd]
		if !ok {
			total = core.Zero()
		}
		out = append(out, WeekdayTotal{Weekday: wd.String(), Total: total})
	}
	return out
}

// DayOfMonthTotal is the total across all transactions falling on one
// day of the month, collapsed across months and years.
type DayOfMonthTotal struct {
	Day   int        `json:"day"`
	Total core.Money `json:"total"`
}

// ByDayOfMonth sums amounts per day of month, ascending. Only days
// carrying transactions appear.
func ByDayOfMonth(txs []core.Transaction) []DayOfMonthTotal {
	totals := make(map[int]core.Money)
	for _, tx := range txs {
		day := tx.Date.Day()
		if existing, ok := totals[day]; ok {
			totals[day] = existing.Add(tx.Amount)
		} else {
			totals[day] = tx.Amount
		}
	}

	out := make([]DayOfMonthTotal, 0, len(totals))
	for day, total := range totals {
		out = append(out, DayOfMonthTotal{Day: day, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// AverageDailySpend divides total expenses over the days of a range,
// flooring the divisor at one day.
func AverageDailySpend(txs []core.Transaction, rng Range) core.Money {
	days := rng.Days()
	if days < 1 {
		days = 1
	}
	return Summarize(txs).TotalExpense.DivInt(int64(days))
}

// MonthlyPoint is one calendar month's summary in a series.
type MonthlyPoint struct {
	Month       string     `json:"month"`
	Income      core.Money `json:"income"`
	Expense     core.Money `json:"expense"`
	Net         core.Money `json:"net"`
	SavingsRate float64    `json:"savings_rate"`
}

// MonthlySeries produces the per-month income/expense/net/savings-rate
// series over the whole input, chronological.
func MonthlySeries(txs []core.Transaction) []MonthlyPoint {
	buckets := BucketByPeriod(txs, ByMonth)
	out := make([]MonthlyPoint, len(buckets))
	for i, bucket := range buckets {
		s := Summary{TotalIncome: bucket.Income, TotalExpense: bucket.Expense}
		out[i] = MonthlyPoint{
			Month:       bucket.Period,
			Income:      bucket.Income,
			Expense:     bucket.Expense,
			Net:         s.Net(),
			SavingsRate: s.SavingsRate(),
		}
	}
	return out
}

// CashFlowPoint is one ISO week's flow plus the running net across the
// series so far.
type CashFlowPoint struct {
	Week       string     `json:"week"`
	Income     core.Money `json:"income"`
	Expense    core.Money `json:"expense"`
	Net        core.Money `json:"net"`
	Cumulative core.Money `json:"cumulative"`
}

// WeeklyCashFlow produces the weekly income/expense/net series with a
// cumulative net column, chronological.
func WeeklyCashFlow(txs []core.Transaction) []CashFlowPoint {
	buckets := BucketByPeriod(txs, ByWeek)
	out := make([]CashFlowPoint, len(buckets))
	running := core.Zero()
	for i, bucket := range buckets {
		net := bucket.Net()
		running = running.Add(net)
		out[i] = CashFlowPoint{
			Week:       bucket.Period,
			Income:     bucket.Income,
			Expense:    bucket.Expense,
			Net:        net,
			Cumulative: running,
		}
	}
	return out
}
