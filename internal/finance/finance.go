// Package finance derives monthly and annual views from a transaction list.
// Every function is pure: it never mutates its inputs.
package finance

import (
	"sort"
	"time"

	"flux/internal/core"
)

// MonthlyTransactions returns the transactions dated within m, newest first.
// Transactions sharing a date keep their relative order.
func MonthlyTransactions(all []core.Transaction, m core.Month) []core.Transaction {
	out := make([]core.Transaction, 0, len(all))
	for _, t := range all {
		if m.Contains(t.Date) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// Totals sums the completed transactions of m by type.
func Totals(all []core.Transaction, m core.Month) core.MonthTotals {
	totals := core.MonthTotals{Month: m}
	for _, t := range all {
		if t.Status != core.Completed || !m.Contains(t.Date) {
			continue
		}
		switch t.Type {
		case core.Income:
			totals.Income = totals.Income.Add(t.Amount)
		case core.Expense:
			totals.Expense = totals.Expense.Add(t.Amount)
		}
	}
	totals.Result = totals.Income.Sub(totals.Expense)
	return totals
}

// ClosingBalance is the running balance of every completed transaction dated
// on or before the last day of m.
func ClosingBalance(all []core.Transaction, m core.Month) core.Money {
	last := m.LastDay()
	var cents int64
	for _, t := range all {
		if t.Status != core.Completed || t.Date.After(last.Time) {
			continue
		}
		cents += t.Signed()
	}
	return core.Money{Cents: cents}
}

// NextMonthOpening estimates the opening balance of the month after m: the
// closing balance of m plus the planned income minus the planned expense
// dated in the following calendar month.
func NextMonthOpening(all []core.Transaction, m core.Month) core.Money {
	next := m.Next()
	cents := ClosingBalance(all, m).Cents
	for _, t := range all {
		if t.Status != core.Planned || !next.Contains(t.Date) {
			continue
		}
		cents += t.Signed()
	}
	return core.Money{Cents: cents}
}

// MonthPoint is one bar of the annual chart.
type MonthPoint struct {
	Month   core.Month
	Income  core.Money
	Expense core.Money
}

// AnnualProjection returns the completed income and expense of each month of
// year, January first.
func AnnualProjection(all []core.Transaction, year int) []MonthPoint {
	points := make([]MonthPoint, 12)
	for i := range points {
		points[i].Month = core.Month{Year: year, Month: time.Month(i + 1)}
	}
	for _, t := range all {
		if t.Status != core.Completed || t.Date.Year() != year {
			continue
		}
		p := &points[int(t.Date.Time.Month())-1]
		switch t.Type {
		case core.Income:
			p.Income = p.Income.Add(t.Amount)
		case core.Expense:
			p.Expense = p.Expense.Add(t.Amount)
		}
	}
	return points
}

// CategoryBreakdown groups the completed expenses of m by category name,
// largest first. Equal totals are ordered by name.
func CategoryBreakdown(all []core.Transaction, m core.Month) []core.CategoryAmount {
	sums := make(map[string]int64)
	for _, t := range all {
		if t.Type != core.Expense || t.Status != core.Completed || !m.Contains(t.Date) {
			continue
		}
		sums[t.Category] += t.Amount.Cents
	}
	out := make([]core.CategoryAmount, 0, len(sums))
	for name, cents := range sums {
		out = append(out, core.CategoryAmount{Name: name, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Overview bundles the month figures used by summaries and the CLI.
func Overview(all []core.Transaction, m core.Month) core.MonthOverview {
	return core.MonthOverview{
		Month:          m,
		Totals:         Totals(all, m),
		ClosingBalance: ClosingBalance(all, m),
		NextOpening:    NextMonthOpening(all, m),
		ByCategory:     CategoryBreakdown(all, m),
	}
}
