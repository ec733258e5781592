// Package installment splits a purchase into dated monthly parts whose
// amounts add up to the purchase total exactly.
package installment

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"flux/internal/core"
)

// MaxCount bounds the number of parts a single purchase may be split into.
const MaxCount = 360

// Part is one dated slice of a split purchase.
type Part struct {
	Number int
	Amount core.Money
	Date   core.Date
}

// Split divides total into count parts dated one month apart starting at
// start. Every part gets the amount rounded down to the cent and the last one
// also receives the remainder.
func Split(total core.Money, count int, start core.Date) ([]Part, error) {
	if err := total.Validate(); err != nil {
		return nil, err
	}
	if count < 1 || count > MaxCount {
		return nil, &core.ValidationError{
			Field:   "installments",
			Message: fmt.Sprintf("installment count must be between 1 and %d", MaxCount),
		}
	}
	if err := start.Validate(); err != nil {
		return nil, err
	}

	base := total.Cents / int64(count)
	remainder := total.Cents - base*int64(count)

	parts := make([]Part, count)
	for i := range parts {
		amount := base
		if i == count-1 {
			amount += remainder
		}
		parts[i] = Part{
			Number: i + 1,
			Amount: core.Money{Cents: amount},
			Date:   start.AddMonths(i),
		}
	}
	return parts, nil
}

// Expand turns parts into sibling transactions of tmpl sharing parentID.
// Only the first sibling keeps the template status; the rest are planned.
func Expand(tmpl core.Transaction, parts []Part, parentID string) []core.Transaction {
	total := len(parts)
	out := make([]core.Transaction, 0, total)
	for i, p := range parts {
		tx := tmpl
		tx.ID = ""
		tx.Amount = p.Amount
		tx.Date = p.Date
		tx.Description = withSuffix(tmpl.Description, fmt.Sprintf(" (%d/%d)", p.Number, total))
		tx.Schedule = core.Installment{Current: p.Number, Total: total, ParentID: parentID}
		if i > 0 {
			tx.Status = core.Planned
		}
		out = append(out, tx)
	}
	return out
}

// withSuffix appends suffix to desc, cutting desc short so the result stays
// within core.MaxDescriptionLen characters.
func withSuffix(desc, suffix string) string {
	room := core.MaxDescriptionLen - utf8.RuneCountInString(suffix)
	if utf8.RuneCountInString(desc) > room {
		desc = strings.TrimRightFunc(string([]rune(desc)[:room]), unicode.IsSpace)
	}
	return desc + suffix
}

// Plan splits tmpl.Amount starting at tmpl.Date and expands the result.
func Plan(tmpl core.Transaction, count int, parentID string) ([]core.Transaction, error) {
	if parentID == "" {
		return nil, &core.ValidationError{Field: "installments", Message: "missing parent id"}
	}
	parts, err := Split(tmpl.Amount, count, tmpl.Date)
	if err != nil {
		return nil, err
	}
	return Expand(tmpl, parts, parentID), nil
}

// Sum adds up the amounts of parts.
func Sum(parts []Part) core.Money {
	var total core.Money
	for _, p := range parts {
		total = total.Add(p.Amount)
	}
	return total
}
