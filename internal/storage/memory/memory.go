// Package memory is an in-process ledger repository. It backs the memory
// data backend and the tests of everything above persistence.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"flux/internal/core"
)

type Repository struct {
	mu       sync.Mutex
	now      func() time.Time
	fail     error
	txs      map[string][]core.Transaction
	cards    map[string][]core.CreditCard
	goals    map[string][]core.Goal
	cats     map[string][]core.Category
	profiles map[string]core.Profile
}

func New() *Repository {
	return &Repository{
		now:      time.Now,
		txs:      make(map[string][]core.Transaction),
		cards:    make(map[string][]core.CreditCard),
		goals:    make(map[string][]core.Goal),
		cats:     make(map[string][]core.Category),
		profiles: make(map[string]core.Profile),
	}
}

// FailWith makes every write return err until called again with nil.
func (r *Repository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

func (r *Repository) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return r.now().UTC()
	}
	return t
}

func notFound(entity, id string) error {
	return &core.NotFoundError{Entity: entity, ID: id}
}

func (r *Repository) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.txs[userID]), nil
}

func (r *Repository) InsertTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return core.Transaction{}, r.fail
	}
	t.CreatedAt = r.stamp(t.CreatedAt)
	r.txs[t.UserID] = append(r.txs[t.UserID], t)
	return t, nil
}

func (r *Repository) InsertTransactions(_ context.Context, ts []core.Transaction) ([]core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	out := make([]core.Transaction, len(ts))
	for i, t := range ts {
		t.CreatedAt = r.stamp(t.CreatedAt)
		out[i] = t
	}
	for _, t := range out {
		r.txs[t.UserID] = append(r.txs[t.UserID], t)
	}
	return out, nil
}

func (r *Repository) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return core.Transaction{}, r.fail
	}
	rows := r.txs[t.UserID]
	i := slices.IndexFunc(rows, func(x core.Transaction) bool { return x.ID == t.ID })
	if i < 0 {
		return core.Transaction{}, notFound("transaction", t.ID)
	}
	t.CreatedAt = rows[i].CreatedAt
	rows[i] = t
	return t, nil
}

func (r *Repository) DeleteTransaction(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.txs[userID] = slices.DeleteFunc(r.txs[userID], func(x core.Transaction) bool { return x.ID == id })
	return nil
}

func (r *Repository) DeleteTransactionsByParent(_ context.Context, userID, parentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.txs[userID] = slices.DeleteFunc(r.txs[userID], func(x core.Transaction) bool {
		inst, ok := x.InstallmentGroup()
		return ok && inst.ParentID == parentID
	})
	return nil
}

// Transaction returns a stored transaction by id, for worker lookups.
func (r *Repository) Transaction(_ context.Context, userID, id string) (core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txs[userID] {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, notFound("transaction", id)
}

func (r *Repository) ListCards(_ context.Context, userID string) ([]core.CreditCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.cards[userID]), nil
}

func (r *Repository) InsertCard(_ context.Context, c core.CreditCard) (core.CreditCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return core.CreditCard{}, r.fail
	}
	c.CreatedAt = r.stamp(c.CreatedAt)
	r.cards[c.UserID] = append(r.cards[c.UserID], c)
	return c, nil
}

func (r *Repository) UpdateCard(_ context.Context, c core.CreditCard) (core.CreditCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return core.CreditCard{}, r.fail
	}
	rows := r.cards[c.UserID]
	i := slices.IndexFunc(rows, func(x core.CreditCard) bool { return x.ID == c.ID })
	if i < 0 {
		return core.CreditCard{}, notFound("card", c.ID)
	}
	c.CreatedAt = rows[i].CreatedAt
	rows[i] = c
	return c, nil
}

func (r *Repository) DeleteCard(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.cards[userID] = slices.DeleteFunc(r.cards[userID], func(x core.CreditCard) bool { return x.ID == id })
	return nil
}

func (r *Repository) ListGoals(_ context.Context, userID string) ([]core.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.goals[userID]), nil
}

func (r *Repository) InsertGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return core.Goal{}, r.fail
	}
	g.CreatedAt = r.stamp(g.CreatedAt)
	r.goals[g.UserID] = append(r.goals[g.UserID], g)
	return g, nil
}

func (r *Repository) UpdateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return core.Goal{}, r.fail
	}
	rows := r.goals[g.UserID]
	i := slices.IndexFunc(rows, func(x core.Goal) bool { return x.ID == g.ID })
	if i < 0 {
		return core.Goal{}, notFound("goal", g.ID)
	}
	g.CreatedAt = rows[i].CreatedAt
	rows[i] = g
	return g, nil
}

func (r *Repository) DeleteGoal(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.goals[userID] = slices.DeleteFunc(r.goals[userID], func(x core.Goal) bool { return x.ID == id })
	return nil
}

func (r *Repository) ListCategories(_ context.Context, userID string) ([]core.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.cats[userID]), nil
}

func (r *Repository) InsertCategory(_ context.Context, c core.Category) (core.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return core.Category{}, r.fail
	}
	c.CreatedAt = r.stamp(c.CreatedAt)
	r.cats[c.UserID] = append(r.cats[c.UserID], c)
	return c, nil
}

func (r *Repository) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return core.Category{}, r.fail
	}
	rows := r.cats[c.UserID]
	i := slices.IndexFunc(rows, func(x core.Category) bool { return x.ID == c.ID })
	if i < 0 {
		return core.Category{}, notFound("category", c.ID)
	}
	c.CreatedAt = rows[i].CreatedAt
	rows[i] = c
	return c, nil
}

func (r *Repository) DeleteCategory(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.cats[userID] = slices.DeleteFunc(r.cats[userID], func(x core.Category) bool { return x.ID == id })
	return nil
}

func (r *Repository) GetProfile(_ context.Context, userID string) (core.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return core.Profile{}, notFound("profile", userID)
	}
	return p, nil
}

func (r *Repository) SaveProfile(_ context.Context, p core.Profile) (core.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return core.Profile{}, r.fail
	}
	r.profiles[p.ID] = p
	return p, nil
}

func (r *Repository) Close() error { return nil }
