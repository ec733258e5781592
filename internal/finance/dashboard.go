package finance

import "flux/internal/core"

const recentLimit = 5

// Dashboard is every derived figure shown for a selected month.
type Dashboard struct {
	Month          core.Month
	Totals         core.MonthTotals
	ClosingBalance core.Money
	NextOpening    core.Money
	Annual         []MonthPoint
	ByCategory     []core.CategoryAmount
	Recent         []core.Transaction
	Statements     []CardStatement
	Goals          []GoalProgress
}

// GoalProgress pairs a goal with its completion percentage.
type GoalProgress struct {
	Goal    core.Goal
	Percent float64
}

// Build computes the dashboard of month m as seen on today.
func Build(all []core.Transaction, cards []core.CreditCard, goals []core.Goal, m core.Month, today core.Date) Dashboard {
	monthly := MonthlyTransactions(all, m)
	recent := monthly
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	progress := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		progress = append(progress, GoalProgress{Goal: g, Percent: g.Progress()})
	}

	return Dashboard{
		Month:          m,
		Totals:         Totals(all, m),
		ClosingBalance: ClosingBalance(all, m),
		NextOpening:    NextMonthOpening(all, m),
		Annual:         AnnualProjection(all, m.Year),
		ByCategory:     CategoryBreakdown(all, m),
		Recent:         recent,
		Statements:     Statements(cards, all, today),
		Goals:          progress,
	}
}
