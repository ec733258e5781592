package finance

import "flux/internal/core"

// CardStatement is the open ("fatura") period of a credit card.
type CardStatement struct {
	Card        core.CreditCard
	PeriodStart core.Date
	Total       core.Money
	Available   core.Money
}

// PeriodStart returns the first day of the open statement period of a card
// closing on closingDay, as seen on today. In months shorter than closingDay
// the card closes on the last day of the month.
func PeriodStart(closingDay int, today core.Date) core.Date {
	y, m := today.Year(), int(today.Time.Month())
	if c := closingIn(y, m, closingDay); today.Day() > c {
		return core.NewDate(y, m, c+1)
	}
	return core.NewDate(y, m-1, closingIn(y, m-1, closingDay)+1)
}

func closingIn(year, month, closingDay int) int {
	return min(closingDay, core.NewDate(year, month+1, 0).Day())
}

// Statement sums the credit expenses charged to card since the open period
// started.
func Statement(card core.CreditCard, all []core.Transaction, today core.Date) CardStatement {
	start := PeriodStart(card.ClosingDay, today)
	var total core.Money
	for _, t := range all {
		if t.CardID != card.ID || t.Type != core.Expense || t.PaymentMethod != core.Credit {
			continue
		}
		if t.Date.Before(start.Time) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return CardStatement{
		Card:        card,
		PeriodStart: start,
		Total:       total,
		Available:   card.Limit.Sub(total),
	}
}

// Statements computes the open statement of every card, in card order.
func Statements(cards []core.CreditCard, all []core.Transaction, today core.Date) []CardStatement {
	out := make([]CardStatement, 0, len(cards))
	for _, c := range cards {
		out = append(out, Statement(c, all, today))
	}
	return out
}
