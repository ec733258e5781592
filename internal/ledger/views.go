package ledger

import (
	"slices"

	"flux/internal/core"
	"flux/internal/finance"
)

// ViewKey identifies a memoized derived view. The revision changes on every
// mutation, so stale entries are never read back.
type ViewKey struct {
	UserID   string
	Revision uint64
	Month    core.Month
	Day      string
	View     string
}

const (
	viewMonthly    = "monthly"
	viewDashboard  = "dashboard"
	viewStatements = "statements"
)

// memo returns the cached value for key or computes and stores it. Caller
// holds at least the read lock.
func memo[T any](s *Store, key ViewKey, compute func() T) T {
	if s.views == nil {
		return compute()
	}
	if v, ok := s.views.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed
		}
	}
	v := compute()
	s.views.Set(key, v)
	return v
}

func (s *Store) viewKey(view string, day bool) ViewKey {
	k := ViewKey{UserID: s.userID, Revision: s.revision, Month: s.selected, View: view}
	if day {
		k.Day = core.DateOf(s.now()).String()
	}
	return k
}

// MonthlyTransactions returns the transactions of the selected month, newest
// first.
func (s *Store) MonthlyTransactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	monthly := memo(s, s.viewKey(viewMonthly, false), func() []core.Transaction {
		return finance.MonthlyTransactions(s.transactions, s.selected)
	})
	return slices.Clone(monthly)
}

// Dashboard returns every derived figure of the selected month. The result
// is shared with the view cache and must be treated as read-only.
func (s *Store) Dashboard() finance.Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memo(s, s.viewKey(viewDashboard, true), func() finance.Dashboard {
		today := core.DateOf(s.now())
		return finance.Build(s.transactions, s.cards, s.goals, s.selected, today)
	})
}

// CardStatements returns the open statement of every card as of today.
func (s *Store) CardStatements() []finance.CardStatement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	statements := memo(s, s.viewKey(viewStatements, true), func() []finance.CardStatement {
		return finance.Statements(s.cards, s.transactions, core.DateOf(s.now()))
	})
	return slices.Clone(statements)
}

// CardStatement returns the open statement of the card with id.
func (s *Store) CardStatement(id string) (finance.CardStatement, error) {
	for _, st := range s.CardStatements() {
		if st.Card.ID == id {
			return st, nil
		}
	}
	return finance.CardStatement{}, &core.NotFoundError{Entity: "card", ID: id}
}

// Overview summarizes month m, which need not be the selected one.
func (s *Store) Overview(m core.Month) core.MonthOverview {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return finance.Overview(s.transactions, m)
}
