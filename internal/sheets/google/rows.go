package google

import (
	"strconv"
	"strings"

	"tally/internal/core"
)

// transactionRow flattens a transaction into the sheet's column layout:
// date, kind, category, amount, description, notes, tags.
func transactionRow(tx core.Transaction) []any {
	return []any{
		tx.Date.String(),
		string(tx.Kind),
		tx.Category,
		tx.Amount.Float64(),
		tx.Description,
		tx.Notes,
		strings.Join(tx.Tags, ", "),
	}
}

// rowMatches reports whether a raw sheet row refers to the given
// transaction. Date, description and amount together identify a row;
// amounts compare in cents to sidestep float formatting differences.
func rowMatches(row []any, tx core.Transaction) bool {
	if len(row) < 5 {
		return false
	}
	if strings.TrimSpace(cellString(row[0])) != tx.Date.String() {
		return false
	}
	if strings.TrimSpace(cellString(row[4])) != tx.Description {
		return false
	}
	cents, ok := parseCellCents(cellString(row[3]))
	return ok && cents == tx.Amount.Cents()
}

func cellString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

func parseCellCents(s string) (int64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	m, err := core.ParseMoney(s)
	if err != nil {
		return 0, false
	}
	return m.Cents(), true
}
