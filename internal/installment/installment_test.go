package installment

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flux/internal/core"
)

func TestSplitHundredInThree(t *testing.T) {
	parts, err := Split(core.Money{Cents: 10000}, 3, core.NewDate(2024, 3, 10))
	require.NoError(t, err)
	require.Len(t, parts, 3)

	assert.Equal(t, int64(3333), parts[0].Amount.Cents)
	assert.Equal(t, int64(3333), parts[1].Amount.Cents)
	assert.Equal(t, int64(3334), parts[2].Amount.Cents)

	assert.Equal(t, "2024-03-10", parts[0].Date.String())
	assert.Equal(t, "2024-04-10", parts[1].Date.String())
	assert.Equal(t, "2024-05-10", parts[2].Date.String())
}

func TestSplitSumInvariant(t *testing.T) {
	totals := []int64{1, 2, 7, 99, 100, 101, 999, 10000, 12345, 99999, 1000001, 123456789}
	start := core.NewDate(2024, 1, 31)
	for _, total := range totals {
		for count := 1; count <= 60; count++ {
			parts, err := Split(core.Money{Cents: total}, count, start)
			require.NoError(t, err)
			require.Len(t, parts, count)
			assert.Equal(t, total, Sum(parts).Cents, "total=%d count=%d", total, count)
			for i := 0; i < count-1; i++ {
				assert.Equal(t, parts[0].Amount, parts[i].Amount)
			}
		}
	}
}

func TestSplitDateRollover(t *testing.T) {
	parts, err := Split(core.Money{Cents: 300}, 3, core.NewDate(2023, 12, 31))
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", parts[0].Date.String())
	assert.Equal(t, "2024-01-31", parts[1].Date.String())
	assert.Equal(t, "2024-03-02", parts[2].Date.String())
}

func TestSplitRejectsInvalidInput(t *testing.T) {
	start := core.NewDate(2024, 1, 1)
	cases := []struct {
		name  string
		total int64
		count int
		date  core.Date
	}{
		{"zero total", 0, 2, start},
		{"negative total", -100, 2, start},
		{"zero count", 100, 0, start},
		{"count above max", 100, MaxCount + 1, start},
		{"zero date", 100, 2, core.Date{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Split(core.Money{Cents: tc.total}, tc.count, tc.date)
			require.Error(t, err)
			assert.True(t, core.IsValidation(err))
		})
	}
}

func TestPlanExpandsSiblings(t *testing.T) {
	tmpl := core.Transaction{
		Type:          core.Expense,
		Amount:        core.Money{Cents: 10000},
		Date:          core.NewDate(2024, 3, 10),
		Description:   "TV",
		Payer:         "Ana",
		Category:      "Lazer",
		Status:        core.Completed,
		PaymentMethod: core.Credit,
		CardID:        "card-1",
	}
	txs, err := Plan(tmpl, 3, "parent-1")
	require.NoError(t, err)
	require.Len(t, txs, 3)

	var sum int64
	for i, tx := range txs {
		inst, ok := tx.InstallmentGroup()
		require.True(t, ok)
		assert.Equal(t, i+1, inst.Current)
		assert.Equal(t, 3, inst.Total)
		assert.Equal(t, "parent-1", inst.ParentID)
		assert.Equal(t, "card-1", tx.CardID)
		assert.Equal(t, "TV", tx.BaseDescription())
		require.NoError(t, tx.Validate())
		sum += tx.Amount.Cents
	}
	assert.Equal(t, int64(10000), sum)

	assert.Equal(t, "TV (1/3)", txs[0].Description)
	assert.Equal(t, "TV (3/3)", txs[2].Description)
	assert.Equal(t, core.Completed, txs[0].Status)
	assert.Equal(t, core.Planned, txs[1].Status)
	assert.Equal(t, core.Planned, txs[2].Status)
}

func TestPlanKeepsLongDescriptionsValid(t *testing.T) {
	tmpl := core.Transaction{
		Type:          core.Expense,
		Amount:        core.Money{Cents: 30000},
		Date:          core.NewDate(2024, 3, 10),
		Description:   strings.Repeat("ç", core.MaxDescriptionLen-2),
		Payer:         "Ana",
		Category:      "Lazer",
		Status:        core.Completed,
		PaymentMethod: core.Credit,
		CardID:        "card-1",
	}
	require.NoError(t, tmpl.Validate())

	txs, err := Plan(tmpl, 12, "parent-1")
	require.NoError(t, err)
	for _, tx := range txs {
		require.NoError(t, tx.Validate())
		assert.LessOrEqual(t, utf8.RuneCountInString(tx.Description), core.MaxDescriptionLen)
		assert.True(t, strings.HasPrefix(tmpl.Description, tx.BaseDescription()))
	}
	assert.True(t, strings.HasSuffix(txs[11].Description, " (12/12)"))

	tmpl.Description = "Sofá"
	txs, err = Plan(tmpl, 2, "parent-1")
	require.NoError(t, err)
	assert.Equal(t, "Sofá (2/2)", txs[1].Description)
}

func TestPlanRequiresParent(t *testing.T) {
	_, err := Plan(core.Transaction{Amount: core.Money{Cents: 100}, Date: core.NewDate(2024, 1, 1)}, 2, "")
	require.Error(t, err)
}
