// Package services provides business logic and orchestration on top of
// the core domain: the recurrence scheduler and the ledger service that
// applies its output.
//
// This file implements the strategy pattern for recurring-rule dueness.
// Each frequency has its own checker that encapsulates the predicate for
// deciding whether a rule should fire again.

package services

import (
	"fmt"

	"tally/internal/core"
)

// DuenessChecker is the strategy interface for deciding whether a rule
// that has fired before is due again. The never-fired case is handled by
// the scheduler against the rule's start date, not here.
type DuenessChecker interface {
	// IsDue reports whether a rule last materialized on lastProcessed
	// should fire on today. lastProcessed is never zero.
	IsDue(lastProcessed, today core.Date) bool
}

// DailyChecker fires once per calendar day.
type DailyChecker struct{}

func (DailyChecker) IsDue(lastProcessed, today core.Date) bool {
	return today.DaysSince(lastProcessed) >= 1
}

// WeeklyChecker fires when at least seven days have elapsed.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(lastProcessed, today core.Date) bool {
	return today.DaysSince(lastProcessed) >= 7
}

// BiweeklyChecker fires when at least fourteen days have elapsed.
type BiweeklyChecker struct{}

func (BiweeklyChecker) IsDue(lastProcessed, today core.Date) bool {
	return today.DaysSince(lastProcessed) >= 14
}

// MonthlyChecker fires at most once per distinct calendar month,
// independent of the day of month: a rule last processed on the 31st is
// due again as early as the 1st of the next month.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(lastProcessed, today core.Date) bool {
	return !today.SameMonth(lastProcessed)
}

// YearlyChecker fires at most once per distinct calendar year.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(lastProcessed, today core.Date) bool {
	return today.Year() != lastProcessed.Year()
}

// duenessStrategies maps frequencies to their checkers.
var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Daily:    DailyChecker{},
	core.Weekly:   WeeklyChecker{},
	core.Biweekly: BiweeklyChecker{},
	core.Monthly:  MonthlyChecker{},
	core.Yearly:   YearlyChecker{},
}

// GetDuenessChecker returns the checker for a frequency, or an error for
// an unknown one.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return checker, nil
}
