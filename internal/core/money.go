// Package core holds the domain model shared by every other package:
// calendar dates, fixed-point money, the ledger record types and their
// entry-point validation.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a currency amount with two-fraction-digit precision. Amounts
// are normalized with banker's rounding so that summing parts always
// reproduces the whole.
type Money struct {
	Amount decimal.Decimal
}

// NewMoney creates a Money from a decimal, rounding half-even to cents.
func NewMoney(d decimal.Decimal) Money {
	return Money{Amount: d.RoundBank(2)}
}

// MoneyFromCents creates a Money from an integer number of cents, the
// representation used by storage.
func MoneyFromCents(cents int64) Money {
	return Money{Amount: decimal.New(cents, -2)}
}

// Zero returns the zero amount.
func Zero() Money {
	return Money{Amount: decimal.Zero}
}

// ParseMoney parses a decimal string into a Money. Both dot and comma
// decimal separators are accepted; anything past the second fraction
// digit is rounded half-even.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return NewMoney(d), nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Amount: m.Amount.Add(other.Amount)}
}

// Sub returns m - other. The result may be negative.
func (m Money) Sub(other Money) Money {
	return Money{Amount: m.Amount.Sub(other.Amount)}
}

// DivInt returns m / n rounded half-even to cents. n must be non-zero.
func (m Money) DivInt(n int64) Money {
	return NewMoney(m.Amount.Div(decimal.NewFromInt(n)))
}

// MulFloat returns m * f rounded half-even to cents.
func (m Money) MulFloat(f float64) Money {
	return NewMoney(m.Amount.Mul(decimal.NewFromFloat(f)))
}

// Cents returns the amount as an integer number of cents.
func (m Money) Cents() int64 {
	return m.Amount.RoundBank(2).Shift(2).IntPart()
}

// Ratio returns m / other as a float64, or 0 when other is zero. The
// zero guard is the division-clamp behavior the analytics contracts
// require, not an error path.
func (m Money) Ratio(other Money) float64 {
	if other.Amount.IsZero() {
		return 0
	}
	f, _ := m.Amount.Div(other.Amount).Float64()
	return f
}

func (m Money) IsZero() bool     { return m.Amount.IsZero() }
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

// Cmp compares two amounts: -1 if m < other, 0 if equal, +1 if m > other.
func (m Money) Cmp(other Money) int {
	return m.Amount.Cmp(other.Amount)
}

// Float64 returns the amount as a float64 for display purposes only.
func (m Money) Float64() float64 {
	f, _ := m.Amount.Float64()
	return f
}

func (m Money) String() string {
	return m.Amount.StringFixed(2)
}

// MarshalJSON encodes the amount as a fixed two-decimal JSON string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts a JSON string or bare number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*m = Zero()
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrInvalidAmount
	}
	*m = NewMoney(d)
	return nil
}
