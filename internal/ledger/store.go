// Package ledger holds the per-user ledger store: the in-memory copy of a
// user's transactions, cards, goals, categories and profile, the mutations
// that keep it consistent with the remote repository, and the derived views
// computed from it.
//
// A mutation validates first, then awaits the repository, and only touches
// in-memory state once the repository succeeded. Repository errors are
// returned to the caller unmodified.
package ledger

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"flux/internal/cache"
	"flux/internal/core"
	"flux/internal/log"
	"flux/internal/services"
)

// Store is the ledger of one user.
type Store struct {
	userID      string
	repo        Repository
	now         func() time.Time
	newID       func() string
	logger      *log.Logger
	views       *cache.LRUCache[ViewKey, any]
	defaultName string

	mu            sync.RWMutex
	selected      core.Month
	revision      uint64
	transactions  []core.Transaction
	cards         []core.CreditCard
	goals         []core.Goal
	categories    []core.Category
	notifications []core.Notification
	profile       core.Profile

	subMu   sync.Mutex
	subs    []subscription
	nextSub int
}

type subscription struct {
	id int
	fn func(Event)
}

// Open loads every entity of userID from repo. A user without a profile gets
// the default one and a user without categories gets the default seed.
func Open(ctx context.Context, userID string, repo Repository, opts ...Option) (*Store, error) {
	if userID == "" {
		return nil, &core.ValidationError{Field: "user_id", Message: "user id is required"}
	}
	s := &Store{
		userID: userID,
		repo:   repo,
		now:    time.Now,
		newID:  defaultID,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentLedger).WithUser(userID)

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	s.selected = core.DateOf(s.now()).MonthOf()
	s.regenerate()

	s.logger.InfoContext(ctx, "Ledger loaded",
		"transactions", len(s.transactions),
		"cards", len(s.cards),
		"goals", len(s.goals),
		"categories", len(s.categories))
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	var err error
	if s.transactions, err = s.repo.ListTransactions(ctx, s.userID); err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	for i := range s.transactions {
		s.transactions[i].Normalize()
	}
	if s.cards, err = s.repo.ListCards(ctx, s.userID); err != nil {
		return fmt.Errorf("load cards: %w", err)
	}
	if s.goals, err = s.repo.ListGoals(ctx, s.userID); err != nil {
		return fmt.Errorf("load goals: %w", err)
	}
	if s.categories, err = s.repo.ListCategories(ctx, s.userID); err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	if len(s.categories) == 0 {
		if err := s.seedCategories(ctx); err != nil {
			return err
		}
	}

	s.profile, err = s.repo.GetProfile(ctx, s.userID)
	switch {
	case core.IsNotFound(err):
		p := core.DefaultProfile(s.userID, s.defaultName)
		if s.profile, err = s.repo.SaveProfile(ctx, p); err != nil {
			return fmt.Errorf("create default profile: %w", err)
		}
	case err != nil:
		return fmt.Errorf("load profile: %w", err)
	}
	return nil
}

func (s *Store) seedCategories(ctx context.Context) error {
	for _, c := range core.DefaultCategories() {
		c.ID = s.newID()
		c.UserID = s.userID
		saved, err := s.repo.InsertCategory(ctx, c)
		if err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
		s.categories = append(s.categories, saved)
	}
	s.logger.InfoContext(ctx, "Default categories seeded", log.FieldCount, len(s.categories))
	return nil
}

// UserID returns the owner of the ledger.
func (s *Store) UserID() string { return s.userID }

// Revision increases on every change to persisted data.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// SelectedMonth returns the month in view.
func (s *Store) SelectedMonth() core.Month {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Select changes the month in view. No data is touched; due and overdue
// notifications are regenerated.
func (s *Store) Select(m core.Month) error {
	if _, err := core.NewMonth(m.Year, int(m.Month)); err != nil {
		return err
	}
	s.mu.Lock()
	s.selected = m
	s.regenerate()
	ev := s.event(Updated, MonthEntity, m.String())
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// SelectDate selects the month d falls in. The day is ignored.
func (s *Store) SelectDate(d core.Date) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return s.Select(d.MonthOf())
}

// Transactions returns every transaction in insertion order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.transactions)
}

// Transaction returns the transaction with id.
func (s *Store) Transaction(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOfTransaction(id); i >= 0 {
		return s.transactions[i], true
	}
	return core.Transaction{}, false
}

func (s *Store) Cards() []core.CreditCard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cards)
}

func (s *Store) Goals() []core.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.goals)
}

func (s *Store) Categories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

// Notifications returns every notification, newest first.
func (s *Store) Notifications() []core.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notifications)
}

func (s *Store) Profile() core.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Subscribe registers fn to be called after every change. The returned
// function removes the subscription. fn runs outside the store lock and may
// read from the store.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			s.subs = slices.DeleteFunc(s.subs, func(sub subscription) bool { return sub.id == id })
			s.subMu.Unlock()
		})
	}
}

// RefreshNotifications regenerates due and overdue notifications against the
// current time. Meant for a periodic ticker so alerts advance with the date.
func (s *Store) RefreshNotifications() {
	s.mu.Lock()
	s.regenerate()
	ev := s.event(Updated, NotificationEntity, "")
	s.mu.Unlock()
	s.emit(ev)
}

// MarkNotificationRead flips the read flag of a notification. The flag of a
// due or overdue notification is lost on the next regeneration.
func (s *Store) MarkNotificationRead(id string) error {
	s.mu.Lock()
	idx := slices.IndexFunc(s.notifications, func(n core.Notification) bool { return n.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return &core.NotFoundError{Entity: "notification", ID: id}
	}
	s.notifications[idx].Read = true
	ev := s.event(Updated, NotificationEntity, id)
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// regenerate replaces the due and overdue notifications. Caller holds mu.
func (s *Store) regenerate() {
	derived := services.DeriveDueNotifications(s.transactions, s.now())
	s.notifications = services.MergeNotifications(s.notifications, derived)
}

// commit records a successful mutation. Caller holds mu.
func (s *Store) commit(ctx context.Context, kind EventKind, entity Entity, id string, ids []string, message string) Event {
	s.revision++
	if message != "" {
		s.notifications = append(s.notifications, services.NewInfo(message, s.now()))
	}
	if entity == TransactionEntity {
		s.regenerate()
	} else {
		services.SortNotifications(s.notifications)
	}
	log.NewStructuredLogger(s.logger).LogMutation(ctx, string(kind), string(entity), id, max(len(ids), 1))

	ev := s.event(kind, entity, id)
	ev.IDs = ids
	return ev
}

func (s *Store) event(kind EventKind, entity Entity, id string) Event {
	return Event{
		UserID:   s.userID,
		Kind:     kind,
		Entity:   entity,
		ID:       id,
		Revision: s.revision,
		At:       s.now(),
	}
}

func (s *Store) emit(ev Event) {
	s.subMu.Lock()
	subs := slices.Clone(s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}
