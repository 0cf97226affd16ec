package core

import (
	"sort"
	"strings"
)

// Default category lists. Labels carry their emoji prefix; uniqueness is
// case-sensitive on the full label.
var (
	DefaultExpenseCategories = []string{
		"🏠 Housing", "🚗 Transportation", "🍔 Food & Dining", "🛒 Groceries",
		"⚡ Utilities", "📱 Phone & Internet", "🏥 Healthcare", "💊 Insurance",
		"🎓 Education", "🎬 Entertainment", "👕 Clothing", "💇 Personal Care",
		"🎁 Gifts & Donations", "💳 Debt Payments", "📦 Shopping",
		"🐕 Pets", "🔧 Maintenance", "🚙 Auto & Gas", "💡 Other Expenses",
	}

	DefaultIncomeCategories = []string{
		"💼 Salary", "💵 Freelance", "📈 Investments", "🎁 Gifts Received",
		"💰 Bonus", "🏢 Business Income", "🏦 Interest", "💸 Refunds", "📊 Other Income",
	}
)

// CategorySet holds the two disjoint category lists. Categories are
// referenced by transactions, rules and budgets by value; deleting one
// here does not cascade, it just orphans the references.
type CategorySet struct {
	Expense []string `json:"expense"`
	Income  []string `json:"income"`
}

// DefaultCategorySet returns fresh copies of the default lists.
func DefaultCategorySet() CategorySet {
	return CategorySet{
		Expense: append([]string(nil), DefaultExpenseCategories...),
		Income:  append([]string(nil), DefaultIncomeCategories...),
	}
}

// For returns the list matching a transaction kind.
func (s CategorySet) For(kind Kind) []string {
	if kind == Income {
		return s.Income
	}
	return s.Expense
}

// Contains reports whether a category label still exists for the given
// kind. Callers use the false case to surface orphaned references.
func (s CategorySet) Contains(kind Kind, name string) bool {
	for _, c := range s.For(kind) {
		if c == name {
			return true
		}
	}
	return false
}

// Add appends a new category, keeping the list sorted. Empty labels and
// case-sensitive duplicates are rejected.
func (s *CategorySet) Add(kind Kind, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyCategory
	}
	if s.Contains(kind, name) {
		return ErrDuplicateCategory
	}
	if kind == Income {
		s.Income = append(s.Income, name)
		sort.Strings(s.Income)
	} else {
		s.Expense = append(s.Expense, name)
		sort.Strings(s.Expense)
	}
	return nil
}

// Remove deletes a category label. Existing transactions, rules and
// budgets that reference it are left untouched.
func (s *CategorySet) Remove(kind Kind, name string) error {
	list := s.For(kind)
	for i, c := range list {
		if c == name {
			out := append(append([]string(nil), list[:i]...), list[i+1:]...)
			if kind == Income {
				s.Income = out
			} else {
				s.Expense = out
			}
			return nil
		}
	}
	return ErrUnknownCategory
}

// Reset replaces one list with its default.
func (s *CategorySet) Reset(kind Kind) {
	if kind == Income {
		s.Income = append([]string(nil), DefaultIncomeCategories...)
	} else {
		s.Expense = append([]string(nil), DefaultExpenseCategories...)
	}
}
