package ledger

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Registry opens one Store per user on first use and keeps it.
type Registry struct {
	repo  Repository
	opts  []Option
	group singleflight.Group

	mu     sync.RWMutex
	stores map[string]*Store
	onOpen []func(*Store)
}

// NewRegistry creates a registry whose stores share repo and opts.
func NewRegistry(repo Repository, opts ...Option) *Registry {
	return &Registry{
		repo:   repo,
		opts:   opts,
		stores: make(map[string]*Store),
	}
}

// OnOpen registers a hook run once for every store the registry opens.
func (r *Registry) OnOpen(fn func(*Store)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onOpen = append(r.onOpen, fn)
}

// Get returns the store of userID, opening it if needed. Concurrent callers
// for the same user share one Open.
func (r *Registry) Get(ctx context.Context, userID string) (*Store, error) {
	r.mu.RLock()
	s, ok := r.stores[userID]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	v, err, _ := r.group.Do(userID, func() (any, error) {
		r.mu.RLock()
		s, ok := r.stores[userID]
		r.mu.RUnlock()
		if ok {
			return s, nil
		}

		// The load is shared by every waiting caller and outlives any one of them.
		s, err := Open(context.WithoutCancel(ctx), userID, r.repo, r.opts...)
		if err != nil {
			return nil, err
		}

		r.mu.RLock()
		hooks := slices.Clone(r.onOpen)
		r.mu.RUnlock()
		for _, fn := range hooks {
			fn(s)
		}

		r.mu.Lock()
		r.stores[userID] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

// Each calls fn for every open store.
func (r *Registry) Each(fn func(*Store)) {
	r.mu.RLock()
	stores := make([]*Store, 0, len(r.stores))
	for _, s := range r.stores {
		stores = append(stores, s)
	}
	r.mu.RUnlock()

	for _, s := range stores {
		fn(s)
	}
}

// Evict forgets the store of userID; the next Get reloads it.
func (r *Registry) Evict(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, userID)
}

// Len returns the number of open stores.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}
