package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthTotals is the realized position of one month.
type MonthTotals struct {
	Month   Month
	Income  Money
	Expense Money
	Result  Money
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Month          Month
	Totals         MonthTotals
	ClosingBalance Money
	NextOpening    Money
	ByCategory     []CategoryAmount
}
