package services

import (
	"strings"
	"testing"

	"tally/internal/core"
)

func monthlyRule(id int64) core.RecurringRule {
	return core.RecurringRule{
		ID:          id,
		Kind:        core.Expense,
		Category:    "🏠 Housing",
		Amount:      core.MoneyFromCents(120000),
		Description: "Rent",
		Frequency:   core.Monthly,
		StartDate:   core.NewDate(2024, 1, 31),
		Active:      true,
	}
}

func TestProcessDue_NotDueBeforeStartDate(t *testing.T) {
	rule := monthlyRule(1)
	rule.StartDate = core.NewDate(2024, 3, 1)

	result := ProcessDue([]core.RecurringRule{rule}, core.NewDate(2024, 2, 28))
	if len(result.Materialized) != 0 {
		t.Fatalf("materialized %d, want 0", len(result.Materialized))
	}
	if !result.Updated[0].LastProcessed.IsZero() {
		t.Fatal("cursor advanced before start date")
	}
}

func TestProcessDue_FirstFiringOnStartDate(t *testing.T) {
	rule := monthlyRule(1)
	today := core.NewDate(2024, 1, 31)

	result := ProcessDue([]core.RecurringRule{rule}, today)
	if len(result.Materialized) != 1 {
		t.Fatalf("materialized %d, want 1", len(result.Materialized))
	}

	tx := result.Materialized[0]
	if !tx.Date.Equal(today) {
		t.Errorf("transaction date = %s, want %s", tx.Date, today)
	}
	if !tx.Recurring {
		t.Error("recurring flag not set")
	}
	if !strings.HasSuffix(tx.Description, RecurringMarker) {
		t.Errorf("description %q missing recurring marker", tx.Description)
	}
	if tx.Amount.Cmp(rule.Amount) != 0 || tx.Category != rule.Category || tx.Kind != rule.Kind {
		t.Error("materialized fields do not match template")
	}
	if !result.Updated[0].LastProcessed.Equal(today) {
		t.Errorf("cursor = %s, want %s", result.Updated[0].LastProcessed, today)
	}
}

func TestProcessDue_SameDayRerunIsIdempotent(t *testing.T) {
	today := core.NewDate(2024, 2, 1)
	rules := []core.RecurringRule{monthlyRule(1)}

	first := ProcessDue(rules, today)
	if len(first.Materialized) != 1 {
		t.Fatalf("first run materialized %d, want 1", len(first.Materialized))
	}

	second := ProcessDue(first.Updated, today)
	if len(second.Materialized) != 0 {
		t.Fatalf("second run materialized %d, want 0", len(second.Materialized))
	}
}

func TestProcessDue_MonthlyCalendarMonthSemantics(t *testing.T) {
	// A rule started on the 31st fires on Feb 1 (new month), stays quiet
	// mid-February, and fires again on Mar 1.
	rules := []core.RecurringRule{monthlyRule(1)}

	run := ProcessDue(rules, core.NewDate(2024, 2, 1))
	if len(run.Materialized) != 1 {
		t.Fatalf("Feb 1 run materialized %d, want 1", len(run.Materialized))
	}
	if !run.Updated[0].LastProcessed.Equal(core.NewDate(2024, 2, 1)) {
		t.Fatalf("cursor = %s, want 2024-02-01", run.Updated[0].LastProcessed)
	}

	run = ProcessDue(run.Updated, core.NewDate(2024, 2, 15))
	if len(run.Materialized) != 0 {
		t.Fatalf("Feb 15 run materialized %d, want 0", len(run.Materialized))
	}

	run = ProcessDue(run.Updated, core.NewDate(2024, 3, 1))
	if len(run.Materialized) != 1 {
		t.Fatalf("Mar 1 run materialized %d, want 1", len(run.Materialized))
	}
}

func TestProcessDue_SingleCatchUpAfterIdlePeriods(t *testing.T) {
	rule := monthlyRule(1)
	rule.LastProcessed = core.NewDate(2024, 1, 31)

	// Five months idle; only one occurrence materializes.
	result := ProcessDue([]core.RecurringRule{rule}, core.NewDate(2024, 6, 15))
	if len(result.Materialized) != 1 {
		t.Fatalf("materialized %d, want 1", len(result.Materialized))
	}
}

func TestProcessDue_InactiveRulesUntouched(t *testing.T) {
	rule := monthlyRule(1)
	rule.Active = false

	result := ProcessDue([]core.RecurringRule{rule}, core.NewDate(2024, 6, 15))
	if len(result.Materialized) != 0 {
		t.Fatal("inactive rule materialized a transaction")
	}
	if !result.Updated[0].LastProcessed.IsZero() {
		t.Fatal("inactive rule cursor advanced")
	}
	if len(result.Skipped) != 0 {
		t.Fatal("inactive rule reported as skipped")
	}
}

func TestProcessDue_MalformedRuleSkippedNotFatal(t *testing.T) {
	malformed := monthlyRule(7)
	malformed.StartDate = core.Date{}
	healthy := monthlyRule(8)

	result := ProcessDue([]core.RecurringRule{malformed, healthy}, core.NewDate(2024, 2, 1))
	if len(result.Skipped) != 1 || result.Skipped[0].RuleID != 7 {
		t.Fatalf("skipped = %+v, want rule 7", result.Skipped)
	}
	if len(result.Materialized) != 1 {
		t.Fatalf("healthy rule did not fire: materialized %d", len(result.Materialized))
	}
	if len(result.Updated) != 2 {
		t.Fatalf("updated %d rules, want 2", len(result.Updated))
	}
}

func TestProcessDue_UnknownFrequencyReported(t *testing.T) {
	rule := monthlyRule(3)
	rule.Frequency = "fortnightly"

	result := ProcessDue([]core.RecurringRule{rule}, core.NewDate(2024, 2, 1))
	if len(result.Skipped) != 1 {
		t.Fatalf("skipped = %+v, want 1 diagnostic", result.Skipped)
	}
	if len(result.Materialized) != 0 {
		t.Fatal("rule with unknown frequency fired")
	}
}
