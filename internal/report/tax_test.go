package report

import (
	"testing"

	"tally/internal/core"
)

func TestTaxYearSummary(t *testing.T) {
	txs := []core.Transaction{
		tx(1, core.NewDate(2024, 1, 15), core.Income, "💼 Salary", 500000),
		tx(2, core.NewDate(2024, 7, 1), core.Income, "💻 Freelance", 120000),
		tx(3, core.NewDate(2024, 3, 3), core.Expense, "🏥 Healthcare", 20000),
		tx(4, core.NewDate(2024, 9, 9), core.Expense, "🎓 Education", 30000),
		tx(5, core.NewDate(2024, 4, 4), core.Expense, "🔧 Maintenance", 10000),
		tx(6, core.NewDate(2024, 5, 5), core.Expense, "🎁 Gifts & Donations", 15000),
		tx(7, core.NewDate(2024, 6, 6), core.Expense, "🏠 Rent", 100000),
		tx(8, core.NewDate(2023, 12, 31), core.Income, "💼 Salary", 999999), // prior year
	}

	summary := TaxYearSummary(txs, 2024)
	if summary.Year != 2024 {
		t.Fatalf("year = %d", summary.Year)
	}
	if summary.TotalIncome.String() != "6200.00" {
		t.Fatalf("total income = %s, want 6200.00", summary.TotalIncome)
	}
	if summary.PotentialDeductions.String() != "600.00" {
		t.Fatalf("deductions = %s, want 600.00", summary.PotentialDeductions)
	}
	if summary.CharitableDonations.String() != "150.00" {
		t.Fatalf("donations = %s, want 150.00", summary.CharitableDonations)
	}

	if len(summary.IncomeBySource) != 2 {
		t.Fatalf("got %d income sources, want 2", len(summary.IncomeBySource))
	}
	if summary.IncomeBySource[0].Category != "💼 Salary" {
		t.Fatalf("top source = %s", summary.IncomeBySource[0].Category)
	}
}

func TestTaxYearSummaryEmptyYear(t *testing.T) {
	summary := TaxYearSummary(nil, 2024)
	if !summary.TotalIncome.IsZero() || !summary.PotentialDeductions.IsZero() || !summary.CharitableDonations.IsZero() {
		t.Fatalf("summary = %+v, want all zero", summary)
	}
	if len(summary.IncomeBySource) != 0 {
		t.Fatalf("sources = %+v", summary.IncomeBySource)
	}
}
