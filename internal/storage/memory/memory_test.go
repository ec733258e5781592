package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"flux/internal/core"
	"flux/internal/storage/memory"
	"flux/internal/storage/storagetest"
)

func TestRepositoryContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storagetest.Repository {
		return memory.New()
	})
}

func TestFailWith(t *testing.T) {
	repo := memory.New()
	boom := errors.New("remote down")
	repo.FailWith(boom)

	_, err := repo.InsertCategory(context.Background(), core.Category{ID: "k1", UserID: "u", Name: "Lazer", Type: core.Expense})
	assert.ErrorIs(t, err, boom)

	repo.FailWith(nil)
	_, err = repo.InsertCategory(context.Background(), core.Category{ID: "k1", UserID: "u", Name: "Lazer", Type: core.Expense})
	assert.NoError(t, err)
}
