package ledger

import (
	"time"

	"github.com/google/uuid"

	"flux/internal/cache"
	"flux/internal/log"
)

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLogger sets the store logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithViewCache memoizes derived views in c. Entries are keyed by revision,
// so a cache can be shared by every store of a registry.
func WithViewCache(c *cache.LRUCache[ViewKey, any]) Option {
	return func(s *Store) { s.views = c }
}

// WithUserName sets the name used for a profile created on first open.
func WithUserName(name string) Option {
	return func(s *Store) { s.defaultName = name }
}

func defaultID() string { return uuid.NewString() }
