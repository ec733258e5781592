package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flux/internal/core"
)

func tx(id string, typ core.TransactionType, cents int64, date core.Date, status core.TransactionStatus) core.Transaction {
	return core.Transaction{
		ID:            id,
		Type:          typ,
		Amount:        core.Money{Cents: cents},
		Date:          date,
		Description:   id,
		Payer:         "Ana",
		Category:      "Alimentação",
		Status:        status,
		PaymentMethod: core.PIX,
	}
}

func month(t *testing.T, year, m int) core.Month {
	t.Helper()
	out, err := core.NewMonth(year, m)
	require.NoError(t, err)
	return out
}

func ids(txs []core.Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.ID)
	}
	return out
}

func TestMonthlyTransactions(t *testing.T) {
	all := []core.Transaction{
		tx("feb-end", core.Expense, 100, core.NewDate(2024, 2, 29), core.Completed),
		tx("mar-05a", core.Expense, 100, core.NewDate(2024, 3, 5), core.Completed),
		tx("mar-31", core.Income, 100, core.NewDate(2024, 3, 31), core.Planned),
		tx("mar-01", core.Expense, 100, core.NewDate(2024, 3, 1), core.Completed),
		tx("mar-05b", core.Income, 100, core.NewDate(2024, 3, 5), core.Completed),
		tx("apr-01", core.Expense, 100, core.NewDate(2024, 4, 1), core.Completed),
		tx("mar-last-year", core.Expense, 100, core.NewDate(2023, 3, 15), core.Completed),
	}

	got := MonthlyTransactions(all, month(t, 2024, 3))
	assert.Equal(t, []string{"mar-31", "mar-05a", "mar-05b", "mar-01"}, ids(got))
	assert.Equal(t, "feb-end", all[0].ID, "input must not be reordered")

	assert.Empty(t, MonthlyTransactions(all, month(t, 2024, 5)))
}

func TestTotalsCountOnlyCompleted(t *testing.T) {
	m := month(t, 2024, 3)
	all := []core.Transaction{
		tx("salary", core.Income, 500000, core.NewDate(2024, 3, 5), core.Completed),
		tx("bonus", core.Income, 100000, core.NewDate(2024, 3, 20), core.Planned),
		tx("rent", core.Expense, 150000, core.NewDate(2024, 3, 10), core.Completed),
		tx("food", core.Expense, 45050, core.NewDate(2024, 3, 11), core.Completed),
		tx("other-month", core.Expense, 99900, core.NewDate(2024, 4, 1), core.Completed),
	}
	totals := Totals(all, m)
	assert.Equal(t, int64(500000), totals.Income.Cents)
	assert.Equal(t, int64(195050), totals.Expense.Cents)
	assert.Equal(t, int64(304950), totals.Result.Cents)
}

func TestClosingBalanceAccumulates(t *testing.T) {
	all := []core.Transaction{
		tx("old", core.Income, 100000, core.NewDate(2023, 11, 3), core.Completed),
		tx("jan-in", core.Income, 80000, core.NewDate(2024, 1, 5), core.Completed),
		tx("jan-out", core.Expense, 30000, core.NewDate(2024, 1, 20), core.Completed),
		tx("jan-planned", core.Expense, 99999, core.NewDate(2024, 1, 25), core.Planned),
		tx("feb-in", core.Income, 10000, core.NewDate(2024, 2, 1), core.Completed),
		tx("feb-out", core.Expense, 30000, core.NewDate(2024, 2, 29), core.Completed),
		tx("mar-out", core.Expense, 5000, core.NewDate(2024, 3, 1), core.Completed),
	}

	dec := ClosingBalance(all, month(t, 2023, 12))
	jan := ClosingBalance(all, month(t, 2024, 1))
	feb := ClosingBalance(all, month(t, 2024, 2))
	assert.Equal(t, int64(100000), dec.Cents)
	assert.Equal(t, dec.Cents+50000, jan.Cents)
	assert.Equal(t, jan.Cents-20000, feb.Cents)

	for _, m := range []core.Month{month(t, 2024, 1), month(t, 2024, 2), month(t, 2024, 3)} {
		prev := ClosingBalance(all, m.Prev())
		assert.Equal(t, prev.Cents+Totals(all, m).Result.Cents, ClosingBalance(all, m).Cents, "month %s", m)
	}
}

func TestNextMonthOpening(t *testing.T) {
	all := []core.Transaction{
		tx("done", core.Income, 100000, core.NewDate(2024, 12, 5), core.Completed),
		tx("jan-salary", core.Income, 50000, core.NewDate(2025, 1, 5), core.Planned),
		tx("jan-rent", core.Expense, 20000, core.NewDate(2025, 1, 10), core.Planned),
		tx("jan-done", core.Expense, 7000, core.NewDate(2025, 1, 2), core.Completed),
		tx("feb-rent", core.Expense, 20000, core.NewDate(2025, 2, 10), core.Planned),
	}
	got := NextMonthOpening(all, month(t, 2024, 12))
	assert.Equal(t, int64(130000), got.Cents, "december must roll into january of the next year")
}

func TestAnnualProjection(t *testing.T) {
	all := []core.Transaction{
		tx("a", core.Income, 1000, core.NewDate(2024, 1, 5), core.Completed),
		tx("b", core.Expense, 300, core.NewDate(2024, 1, 6), core.Completed),
		tx("c", core.Expense, 700, core.NewDate(2024, 12, 31), core.Completed),
		tx("d", core.Expense, 900, core.NewDate(2024, 6, 1), core.Planned),
		tx("e", core.Income, 900, core.NewDate(2023, 6, 1), core.Completed),
	}
	points := AnnualProjection(all, 2024)
	require.Len(t, points, 12)
	assert.Equal(t, "2024-01", points[0].Month.String())
	assert.Equal(t, int64(1000), points[0].Income.Cents)
	assert.Equal(t, int64(300), points[0].Expense.Cents)
	assert.Equal(t, int64(0), points[5].Expense.Cents)
	assert.Equal(t, int64(700), points[11].Expense.Cents)
}

func TestCategoryBreakdown(t *testing.T) {
	m := month(t, 2024, 3)
	mk := func(cat string, cents int64, status core.TransactionStatus) core.Transaction {
		out := tx(cat, core.Expense, cents, core.NewDate(2024, 3, 10), status)
		out.Category = cat
		return out
	}
	all := []core.Transaction{
		mk("Lazer", 2000, core.Completed),
		mk("Moradia", 150000, core.Completed),
		mk("Alimentação", 3000, core.Completed),
		mk("Lazer", 1000, core.Completed),
		mk("Transporte", 99999, core.Planned),
		tx("salary", core.Income, 500000, core.NewDate(2024, 3, 5), core.Completed),
	}
	got := CategoryBreakdown(all, m)
	require.Len(t, got, 3)
	assert.Equal(t, "Moradia", got[0].Name)
	assert.Equal(t, "Alimentação", got[1].Name)
	assert.Equal(t, "Lazer", got[2].Name)
	assert.Equal(t, int64(3000), got[2].Amount.Cents)
}

func TestPeriodStart(t *testing.T) {
	cases := []struct {
		name       string
		closingDay int
		today      core.Date
		want       string
	}{
		{"after closing", 10, core.NewDate(2024, 3, 15), "2024-03-11"},
		{"on closing day", 10, core.NewDate(2024, 3, 10), "2024-02-11"},
		{"before closing", 10, core.NewDate(2024, 3, 2), "2024-02-11"},
		{"january rolls back a year", 25, core.NewDate(2024, 1, 3), "2023-12-26"},
		{"closing on 31 after short february", 31, core.NewDate(2024, 3, 15), "2024-03-01"},
		{"closing on 31 on the last day", 31, core.NewDate(2024, 3, 31), "2024-03-01"},
		{"closing on 31 in april", 31, core.NewDate(2024, 4, 30), "2024-04-01"},
		{"closing on 30 past february end", 30, core.NewDate(2023, 3, 1), "2023-03-01"},
		{"closing on 30 at february end", 30, core.NewDate(2023, 2, 28), "2023-01-31"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PeriodStart(tc.closingDay, tc.today).String())
		})
	}
}

func TestStatementClosingDayBoundary(t *testing.T) {
	card := core.CreditCard{ID: "card-1", BankName: "Nubank", Limit: core.Money{Cents: 100000}, ClosingDay: 10, DueDay: 17}
	charge := func(id string, d core.Date) core.Transaction {
		out := tx(id, core.Expense, 1000, d, core.Planned)
		out.PaymentMethod = core.Credit
		out.CardID = "card-1"
		return out
	}
	onClosing := charge("closing", core.NewDate(2024, 3, 10))
	all := []core.Transaction{onClosing, charge("later", core.NewDate(2024, 3, 12))}

	// today is on or before the closing day: the period began last month
	open := Statement(card, all, core.NewDate(2024, 3, 10))
	assert.Equal(t, int64(2000), open.Total.Cents)
	assert.Equal(t, int64(98000), open.Available.Cents)

	// past the closing day the charge belongs to the closed period
	closed := Statement(card, all, core.NewDate(2024, 3, 11))
	assert.Equal(t, int64(1000), closed.Total.Cents)
	assert.Equal(t, "2024-03-11", closed.PeriodStart.String())
}

func TestStatementFilters(t *testing.T) {
	card := core.CreditCard{ID: "card-1", Limit: core.Money{Cents: 5000}, ClosingDay: 1}
	today := core.NewDate(2024, 3, 20)

	credit := tx("credit", core.Expense, 1000, core.NewDate(2024, 3, 5), core.Completed)
	credit.PaymentMethod = core.Credit
	credit.CardID = "card-1"

	otherCard := credit
	otherCard.ID = "other-card"
	otherCard.CardID = "card-2"

	income := credit
	income.ID = "refund"
	income.Type = core.Income

	debit := tx("debit", core.Expense, 1000, core.NewDate(2024, 3, 5), core.Completed)
	debit.PaymentMethod = core.Debit
	debit.CardID = "card-1"

	st := Statement(card, []core.Transaction{credit, otherCard, income, debit}, today)
	assert.Equal(t, int64(1000), st.Total.Cents)
	assert.Equal(t, int64(4000), st.Available.Cents)
}

func TestBuildDashboard(t *testing.T) {
	m := month(t, 2024, 3)
	var all []core.Transaction
	for day := 1; day <= 7; day++ {
		all = append(all, tx(core.NewDate(2024, 3, day).String(), core.Expense, 100, core.NewDate(2024, 3, day), core.Completed))
	}
	goals := []core.Goal{{Name: "Viagem", TargetAmount: core.Money{Cents: 1000}, CurrentAmount: core.Money{Cents: 500}}}

	d := Build(all, nil, goals, m, core.NewDate(2024, 3, 15))
	require.Len(t, d.Recent, 5)
	assert.Equal(t, "2024-03-07", d.Recent[0].ID)
	assert.Equal(t, int64(700), d.Totals.Expense.Cents)
	assert.Equal(t, int64(-700), d.ClosingBalance.Cents)
	assert.Len(t, d.Annual, 12)
	require.Len(t, d.Goals, 1)
	assert.Equal(t, float64(50), d.Goals[0].Percent)
	assert.Empty(t, d.Statements)
}
