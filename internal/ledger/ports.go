package ledger

import (
	"context"

	"flux/internal/core"
)

// Ports for the remote persistence collaborator. Every call is keyed by the
// owning user id. Inserts and updates echo the persisted record, including
// server-assigned fields. Updating an unknown id returns *core.NotFoundError.
type (
	TransactionRepository interface {
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		// InsertTransactions persists a batch atomically: all rows or none.
		InsertTransactions(ctx context.Context, ts []core.Transaction) ([]core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, userID, id string) error
		// DeleteTransactionsByParent deletes every row whose parent id equals parentID.
		DeleteTransactionsByParent(ctx context.Context, userID, parentID string) error
	}

	CardRepository interface {
		ListCards(ctx context.Context, userID string) ([]core.CreditCard, error)
		InsertCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error)
		UpdateCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error)
		DeleteCard(ctx context.Context, userID, id string) error
	}

	GoalRepository interface {
		ListGoals(ctx context.Context, userID string) ([]core.Goal, error)
		InsertGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		DeleteGoal(ctx context.Context, userID, id string) error
	}

	CategoryRepository interface {
		ListCategories(ctx context.Context, userID string) ([]core.Category, error)
		InsertCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
		DeleteCategory(ctx context.Context, userID, id string) error
	}

	ProfileRepository interface {
		// GetProfile returns *core.NotFoundError when the user has none yet.
		GetProfile(ctx context.Context, userID string) (core.Profile, error)
		SaveProfile(ctx context.Context, p core.Profile) (core.Profile, error)
	}

	// Repository is everything a Store needs from persistence.
	Repository interface {
		TransactionRepository
		CardRepository
		GoalRepository
		CategoryRepository
		ProfileRepository
	}
)
