package services

import (
	"tally/internal/core"
)

// RecurringMarker is appended to the description of every materialized
// transaction so its provenance survives in the ledger.
const RecurringMarker = " (Recurring)"

// RuleDiagnostic reports a rule that was excluded from a scheduling
// batch. Diagnostics are values, not errors: a malformed rule never
// aborts the batch.
type RuleDiagnostic struct {
	RuleID int64
	Reason string
}

// ScheduleResult is the outcome of one scheduling batch. Updated always
// contains every input rule, with cursors advanced where a rule fired,
// so the caller can persist the set wholesale.
type ScheduleResult struct {
	Materialized []core.Transaction
	Updated      []core.RecurringRule
	Skipped      []RuleDiagnostic
}

// ProcessDue evaluates every rule against today and materializes one
// transaction per due rule. It is a pure function over the snapshot it
// is given: the caller owns committing the result atomically.
//
// A rule that has never fired is due once today reaches its start date.
// After that its frequency checker decides. A rule idle across several
// periods catches up with a single occurrence, not one per missed
// period. Because a firing sets LastProcessed to today, running the
// batch twice on the same day is a no-op the second time.
func ProcessDue(rules []core.RecurringRule, today core.Date) ScheduleResult {
	result := ScheduleResult{
		Updated: make([]core.RecurringRule, 0, len(rules)),
	}

	for _, rule := range rules {
		if !rule.Active {
			result.Updated = append(result.Updated, rule)
			continue
		}

		if rule.StartDate.IsZero() {
			result.Updated = append(result.Updated, rule)
			result.Skipped = append(result.Skipped, RuleDiagnostic{
				RuleID: rule.ID,
				Reason: "missing start date",
			})
			continue
		}

		checker, err := GetDuenessChecker(rule.Frequency)
		if err != nil {
			result.Updated = append(result.Updated, rule)
			result.Skipped = append(result.Skipped, RuleDiagnostic{
				RuleID: rule.ID,
				Reason: err.Error(),
			})
			continue
		}

		due := false
		if rule.LastProcessed.IsZero() {
			due = !today.Before(rule.StartDate)
		} else {
			due = checker.IsDue(rule.LastProcessed, today)
		}

		if due {
			result.Materialized = append(result.Materialized, materialize(rule, today))
			rule.LastProcessed = today
		}
		result.Updated = append(result.Updated, rule)
	}

	return result
}

// materialize creates the concrete transaction for a due rule, dated
// today with fields copied from the template.
func materialize(rule core.RecurringRule, today core.Date) core.Transaction {
	return core.Transaction{
		Date:        today,
		Kind:        rule.Kind,
		Category:    rule.Category,
		Amount:      rule.Amount,
		Description: rule.Description + RecurringMarker,
		Tags:        core.NormalizeTags(rule.Tags),
		Recurring:   true,
	}
}
