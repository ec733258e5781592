// Package storagetest holds the behavior every ledger repository must share.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flux/internal/core"
	"flux/internal/ledger"
)

// Repository is a ledger repository that can also fetch a single transaction.
type Repository interface {
	ledger.Repository
	Transaction(ctx context.Context, userID, id string) (core.Transaction, error)
}

const user = "user-1"

func tx(id, desc string, day int) core.Transaction {
	return core.Transaction{
		ID:            id,
		UserID:        user,
		Type:          core.Expense,
		Amount:        core.Money{Cents: 1000},
		Date:          core.NewDate(2024, 5, day),
		Description:   desc,
		Payer:         "Ana",
		Category:      "Moradia",
		Status:        core.Planned,
		Recurrence:    core.NoRecurrence,
		PaymentMethod: core.PIX,
		Schedule:      core.Standalone{},
	}
}

// Run exercises newRepo against the repository contract. newRepo must
// return an empty repository on every call.
func Run(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Run("transactions round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		saved, err := repo.InsertTransaction(ctx, tx("t1", "Aluguel", 10))
		require.NoError(t, err)
		assert.False(t, saved.CreatedAt.IsZero())

		got, err := repo.Transaction(ctx, user, "t1")
		require.NoError(t, err)
		assert.Equal(t, "Aluguel", got.Description)
		assert.Equal(t, core.NewDate(2024, 5, 10), got.Date)
		assert.Equal(t, core.Standalone{}, got.Schedule)
		assert.WithinDuration(t, saved.CreatedAt, got.CreatedAt, time.Millisecond)

		other, err := repo.ListTransactions(ctx, "someone-else")
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("batch keeps order and installment fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var batch []core.Transaction
		for i := 1; i <= 3; i++ {
			row := tx("p-"+string(rune('0'+i)), "TV", i)
			row.PaymentMethod = core.Credit
			row.CardID = "card-1"
			row.Schedule = core.Installment{Current: i, Total: 3, ParentID: "parent-1"}
			batch = append(batch, row)
		}
		_, err := repo.InsertTransactions(ctx, batch)
		require.NoError(t, err)

		rows, err := repo.ListTransactions(ctx, user)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		for i, row := range rows {
			inst, ok := row.InstallmentGroup()
			require.True(t, ok)
			assert.Equal(t, i+1, inst.Current)
			assert.Equal(t, 3, inst.Total)
			assert.Equal(t, "parent-1", inst.ParentID)
			assert.Equal(t, "card-1", row.CardID)
		}

		require.NoError(t, repo.DeleteTransactionsByParent(ctx, user, "parent-1"))
		rows, err = repo.ListTransactions(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("update keeps created at and rejects unknown ids", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		saved, err := repo.InsertTransaction(ctx, tx("t1", "Luz", 5))
		require.NoError(t, err)

		changed := saved
		changed.Description = "Conta de luz"
		changed.Status = core.Completed
		updated, err := repo.UpdateTransaction(ctx, changed)
		require.NoError(t, err)
		assert.Equal(t, "Conta de luz", updated.Description)
		assert.Equal(t, core.Completed, updated.Status)
		assert.WithinDuration(t, saved.CreatedAt, updated.CreatedAt, time.Millisecond)

		_, err = repo.UpdateTransaction(ctx, tx("missing", "x", 1))
		assert.True(t, core.IsNotFound(err))
	})

	t.Run("delete of unknown id is not an error", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		assert.NoError(t, repo.DeleteTransaction(ctx, user, "missing"))
		assert.NoError(t, repo.DeleteCard(ctx, user, "missing"))
		assert.NoError(t, repo.DeleteGoal(ctx, user, "missing"))
		assert.NoError(t, repo.DeleteCategory(ctx, user, "missing"))
	})

	t.Run("cards", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		card := core.CreditCard{ID: "c1", UserID: user, BankName: "Nubank", HolderName: "Ana",
			Limit: core.Money{Cents: 500000}, ClosingDay: 5, DueDay: 12}
		_, err := repo.InsertCard(ctx, card)
		require.NoError(t, err)

		card.Limit = core.Money{Cents: 800000}
		updated, err := repo.UpdateCard(ctx, card)
		require.NoError(t, err)
		assert.Equal(t, int64(800000), updated.Limit.Cents)

		cards, err := repo.ListCards(ctx, user)
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "Nubank", cards[0].BankName)

		require.NoError(t, repo.DeleteCard(ctx, user, "c1"))
		cards, err = repo.ListCards(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, cards)
	})

	t.Run("goals", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		goal := core.Goal{ID: "g1", UserID: user, Name: "Viagem",
			TargetAmount: core.Money{Cents: 1000000}, InitialAmount: core.Money{Cents: 10000},
			CurrentAmount: core.Money{Cents: 10000},
			StartDate:     core.NewDate(2024, 1, 1), EndDate: core.NewDate(2024, 12, 31)}
		_, err := repo.InsertGoal(ctx, goal)
		require.NoError(t, err)

		goal.CurrentAmount = core.Money{Cents: 250000}
		updated, err := repo.UpdateGoal(ctx, goal)
		require.NoError(t, err)
		assert.Equal(t, int64(250000), updated.CurrentAmount.Cents)
		assert.Equal(t, core.NewDate(2024, 12, 31), updated.EndDate)

		_, err = repo.UpdateGoal(ctx, core.Goal{ID: "missing", UserID: user})
		assert.True(t, core.IsNotFound(err))
	})

	t.Run("categories", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.InsertCategory(ctx, core.Category{ID: "k1", UserID: user, Name: "Lazer", Type: core.Expense})
		require.NoError(t, err)
		_, err = repo.UpdateCategory(ctx, core.Category{ID: "k1", UserID: user, Name: "Diversão", Type: core.Expense})
		require.NoError(t, err)

		cats, err := repo.ListCategories(ctx, user)
		require.NoError(t, err)
		require.Len(t, cats, 1)
		assert.Equal(t, "Diversão", cats[0].Name)
	})

	t.Run("profile upsert", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.GetProfile(ctx, user)
		assert.True(t, core.IsNotFound(err))

		p := core.DefaultProfile(user, "Ana")
		_, err = repo.SaveProfile(ctx, p)
		require.NoError(t, err)

		p.Mode = core.Couple
		p.PartnerName = "Bia"
		_, err = repo.SaveProfile(ctx, p)
		require.NoError(t, err)

		got, err := repo.GetProfile(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})
}
