package backend

import (
	"context"

	"flux/internal/core"
	"flux/internal/ledger"
)

// Repository is what every data backend provides: the ledger persistence
// port plus the single-row lookup the sync worker needs.
type Repository interface {
	ledger.Repository
	Transaction(ctx context.Context, userID, id string) (core.Transaction, error)
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the repository and optional cleanup function
type BackendResult struct {
	Repository Repository
	Cleanup    CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
