// Package report computes every derived view of the ledger: filtered
// transaction lists, summaries, category and period aggregations,
// budget variance, goal projections, the financial health score and
// insights. Everything here is a pure function over a snapshot of the
// ledger plus a caller-supplied "today"; nothing reads the clock or
// performs I/O.
package report

import (
	"sort"

	"tally/internal/core"
)

// Preset names a relative date range resolved against a supplied today.
type Preset string

const (
	PresetThisMonth  Preset = "this_month"
	PresetLastMonth  Preset = "last_month"
	PresetTrailing90 Preset = "trailing_90"
	PresetYearToDate Preset = "year_to_date"
	PresetAllTime    Preset = "all_time"
)

// Range is an inclusive calendar-date interval.
type Range struct {
	Start core.Date
	End   core.Date
}

// Days returns the number of calendar days the range spans, inclusive.
func (r Range) Days() int {
	return r.End.DaysSince(r.Start) + 1
}

// PresetRange resolves a preset against today. The second return is
// false for all-time, which has no bounds.
func PresetRange(p Preset, today core.Date) (Range, bool) {
	switch p {
	case PresetThisMonth:
		return Range{Start: today.MonthStart(), End: today.MonthEnd()}, true
	case PresetLastMonth:
		end := today.MonthStart().AddDays(-1)
		return Range{Start: end.MonthStart(), End: end}, true
	case PresetTrailing90:
		return Range{Start: today.AddDays(-90), End: today}, true
	case PresetYearToDate:
		return Range{Start: core.NewDate(today.Year(), 1, 1), End: today}, true
	default:
		return Range{}, false
	}
}

// FilterByRange returns the transactions dated within [start, end],
// inclusive on both bounds. Input order is preserved and the input is
// never mutated.
func FilterByRange(txs []core.Transaction, start, end core.Date) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// FilterByPreset resolves a preset against today and filters by it.
// All-time returns a copy of the input.
func FilterByPreset(txs []core.Transaction, p Preset, today core.Date) []core.Transaction {
	rng, bounded := PresetRange(p, today)
	if !bounded {
		return append([]core.Transaction(nil), txs...)
	}
	return FilterByRange(txs, rng.Start, rng.End)
}

// FilterByKind returns the transactions of one kind, order preserved.
func FilterByKind(txs []core.Transaction, kind core.Kind) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Kind == kind {
			out = append(out, tx)
		}
	}
	return out
}

// FilterByCategory returns the transactions whose category matches
// exactly, order preserved.
func FilterByCategory(txs []core.Transaction, category string) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Category == category {
			out = append(out, tx)
		}
	}
	return out
}

// SortByDateDesc returns a new slice sorted newest first. The sort is
// stable, so same-day transactions keep their ledger order.
func SortByDateDesc(txs []core.Transaction) []core.Transaction {
	out := append([]core.Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
