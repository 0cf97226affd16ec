package report

import (
	"tally/internal/core"
)

// DeductibleCategories are the expense categories counted as potential
// deductions in the tax summary. Informational only.
var DeductibleCategories = []string{
	"🏥 Healthcare", "🎓 Education", "🔧 Maintenance",
}

// DonationCategory is the expense category counted as charitable giving.
const DonationCategory = "🎁 Gifts & Donations"

// TaxSummary is the per-year rollup used for tax preparation: total
// income, deduction candidates, donations and income by source.
type TaxSummary struct {
	Year                int            `json:"year"`
	TotalIncome         core.Money     `json:"total_income"`
	PotentialDeductions core.Money     `json:"potential_deductions"`
	CharitableDonations core.Money     `json:"charitable_donations"`
	IncomeBySource      []CategoryStat `json:"income_by_source"`
}

// TaxYearSummary rolls up one calendar year of the ledger.
func TaxYearSummary(txs []core.Transaction, year int) TaxSummary {
	deductible := make(map[string]struct{}, len(DeductibleCategories))
	for _, c := range DeductibleCategories {
		deductible[c] = struct{}{}
	}

	summary := TaxSummary{
		Year:                year,
		TotalIncome:         core.Zero(),
		PotentialDeductions: core.Zero(),
		CharitableDonations: core.Zero(),
	}

	var yearIncome []core.Transaction
	for _, tx := range txs {
		if tx.Date.Year() != year {
			continue
		}
		switch tx.Kind {
		case core.Income:
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
			yearIncome = append(yearIncome, tx)
		case core.Expense:
			if _, ok := deductible[tx.Category]; ok {
				summary.PotentialDeductions = summary.PotentialDeductions.Add(tx.Amount)
			}
			if tx.Category == DonationCategory {
				summary.CharitableDonations = summary.CharitableDonations.Add(tx.Amount)
			}
		}
	}

	summary.IncomeBySource = GroupByCategory(yearIncome)
	return summary
}
