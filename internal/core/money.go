// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents. Parsing and rendering go through
// shopspring/decimal so that "33.335" and "33,335" both land on 3334 cents.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half away from zero on the third decimal place. Only positive amounts are
// accepted.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil
//	ParseDecimalToCents("12.344") -> 1234, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Round(2).Shift(2)
	if !cents.IsInteger() || cents.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// MoneyFromDecimal rounds d to cents. Negative values are kept; callers
// validate sign where it matters.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// MoneyFromFloat rounds a float amount to cents.
func MoneyFromFloat(f float64) Money {
	return MoneyFromDecimal(decimal.NewFromFloat(f))
}

// Decimal returns the amount as a two-place decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount as "1234.56".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// FormatBRL renders the amount the way the app shows it to users: "R$ 1.234,56".
func (m Money) FormatBRL() string {
	neg := m.Cents < 0
	cents := m.Cents
	if neg {
		cents = -cents
	}
	s := decimal.New(cents, -2).StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	out := "R$ " + grouped.String() + "," + frac
	if neg {
		return "-" + out
	}
	return out
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*m = Money{}
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return ErrInvalidAmount
	}
	*m = MoneyFromDecimal(d)
	return nil
}
