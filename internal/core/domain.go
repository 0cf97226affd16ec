package core

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Kind distinguishes money coming in from money going out.
type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// IsValid reports whether the kind is one of the two known values.
func (k Kind) IsValid() bool {
	return k == Income || k == Expense
}

// Frequency is the cadence of a recurring rule.
type Frequency string

const (
	Daily    Frequency = "daily"
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
	Yearly   Frequency = "yearly"
)

func (f Frequency) IsValid() bool {
	switch f {
	case Daily, Weekly, Biweekly, Monthly, Yearly:
		return true
	}
	return false
}

// Priority ranks goals for display ordering.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank returns the sort weight of a priority, most urgent first.
// Unknown priorities sort with medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 2
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

var (
	ErrMissingDate       = errors.New("date is required")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidKind       = errors.New("invalid transaction kind")
	ErrInvalidFrequency  = errors.New("invalid frequency")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrEmptyCategory     = errors.New("empty category")
	ErrUnknownCategory   = errors.New("category does not exist")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrEmptyName         = errors.New("empty name")
	ErrInvalidTarget     = errors.New("goal target must be positive")
)

// Transaction is one ledger entry. Transactions are immutable once
// created; corrections are delete-and-reenter.
type Transaction struct {
	ID          int64    `json:"id"`
	Date        Date     `json:"date"`
	Kind        Kind     `json:"kind"`
	Category    string   `json:"category"`
	Amount      Money    `json:"amount"`
	Description string   `json:"description,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Recurring   bool     `json:"recurring"`
}

// Validate checks a transaction at the entry point. Downstream analytics
// assume already-validated input and do not re-check.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Kind.IsValid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// NormalizeTags trims, deduplicates and sorts a tag list. Order of the
// input is irrelevant and duplicates collapse.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// RecurringRule is a mutable template that materializes transactions on
// a cadence. LastProcessed is zero until the rule fires for the first
// time; once set it only moves forward and never precedes StartDate.
type RecurringRule struct {
	ID            int64     `json:"id"`
	Kind          Kind      `json:"kind"`
	Category      string    `json:"category"`
	Amount        Money     `json:"amount"`
	Description   string    `json:"description,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	Frequency     Frequency `json:"frequency"`
	StartDate     Date      `json:"start_date"`
	LastProcessed Date      `json:"last_processed,omitempty"`
	Active        bool      `json:"active"`
}

func (r RecurringRule) Validate() error {
	if !r.Kind.IsValid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !r.Frequency.IsValid() {
		return ErrInvalidFrequency
	}
	if err := r.StartDate.Validate(); err != nil {
		return err
	}
	return nil
}

// Budget is one month's spending plan: category name to budgeted amount.
// A category absent from Limits is equivalent to a zero budget.
type Budget struct {
	Month  string           `json:"month"` // YYYY-MM
	Limits map[string]Money `json:"limits"`
}

func (b Budget) Validate() error {
	if _, err := time.Parse("2006-01", b.Month); err != nil {
		return errors.New("budget month must be YYYY-MM")
	}
	for category, limit := range b.Limits {
		if strings.TrimSpace(category) == "" {
			return ErrEmptyCategory
		}
		if limit.IsNegative() {
			return ErrInvalidAmount
		}
	}
	return nil
}

// Goal is a savings target. Current only grows, through explicit
// contributions.
type Goal struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Target    Money     `json:"target"`
	Current   Money     `json:"current"`
	Deadline  Date      `json:"deadline"`
	Priority  Priority  `json:"priority"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt Date      `json:"created_at"`
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if !g.Target.IsPositive() {
		return ErrInvalidTarget
	}
	if g.Current.IsNegative() {
		return ErrInvalidAmount
	}
	if err := g.Deadline.Validate(); err != nil {
		return err
	}
	if !g.Priority.IsValid() {
		return ErrInvalidPriority
	}
	return nil
}

// SortGoals orders goals most urgent priority first, preserving input
// order within a priority band.
func SortGoals(goals []Goal) []Goal {
	out := make([]Goal, len(goals))
	copy(out, goals)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out
}
