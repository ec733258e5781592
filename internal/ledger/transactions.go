package ledger

import (
	"context"
	"slices"

	"flux/internal/core"
	"flux/internal/installment"
	"flux/internal/services"
)

func (s *Store) indexOfTransaction(id string) int {
	return slices.IndexFunc(s.transactions, func(t core.Transaction) bool { return t.ID == id })
}

// checkTransaction validates shape and references of t. Caller holds mu.
func (s *Store) checkTransaction(t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return t.CheckReferences(s.categories, s.cards, s.profile.Payers())
}

// checkSelectedMonth enforces that standalone edits land in the month in
// view. Caller holds mu.
func (s *Store) checkSelectedMonth(t core.Transaction) error {
	if !s.selected.Contains(t.Date) {
		return &core.DateMismatchError{Date: t.Date, Selected: s.selected}
	}
	return nil
}

// AddTransaction records a standalone transaction dated in the selected
// month and returns it as persisted.
func (s *Store) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Normalize()
	if _, ok := t.InstallmentGroup(); ok {
		return core.Transaction{}, &core.ValidationError{
			Field:   "installments",
			Message: "installment siblings are added as a batch",
		}
	}

	s.mu.Lock()
	if err := s.checkSelectedMonth(t); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	t.ID = s.newID()
	t.UserID = s.userID
	if err := s.checkTransaction(t); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}

	saved, err := s.repo.InsertTransaction(ctx, t)
	if err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	saved.Normalize()
	s.transactions = append(s.transactions, saved)
	ev := s.commit(ctx, Created, TransactionEntity, saved.ID, []string{saved.ID}, services.TransactionCreated(saved))
	s.mu.Unlock()

	s.emit(ev)
	return saved, nil
}

// AddInstallmentBatch records pre-computed installment siblings in one
// repository call. The siblings may span several months, so the selected
// month is not checked.
func (s *Store) AddInstallmentBatch(ctx context.Context, items []core.Transaction) ([]core.Transaction, error) {
	if len(items) == 0 {
		return nil, &core.ValidationError{Field: "installments", Message: "empty installment batch"}
	}

	batch := make([]core.Transaction, len(items))
	var parentID string
	for i, t := range items {
		t.Normalize()
		inst, ok := t.InstallmentGroup()
		if !ok {
			return nil, &core.ValidationError{Field: "installments", Message: "batch item is not an installment"}
		}
		if i == 0 {
			parentID = inst.ParentID
		} else if inst.ParentID != parentID {
			return nil, &core.ValidationError{Field: "installments", Message: "batch items must share one parent id"}
		}
		batch[i] = t
	}

	s.mu.Lock()
	for i := range batch {
		batch[i].ID = s.newID()
		batch[i].UserID = s.userID
		if err := s.checkTransaction(batch[i]); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}

	saved, err := s.repo.InsertTransactions(ctx, batch)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	ids := make([]string, 0, len(saved))
	for i := range saved {
		saved[i].Normalize()
		ids = append(ids, saved[i].ID)
	}
	s.transactions = append(s.transactions, saved...)
	ev := s.commit(ctx, Created, TransactionEntity, parentID, ids, services.InstallmentPlanCreated(saved))
	s.mu.Unlock()

	s.emit(ev)
	return slices.Clone(saved), nil
}

// AddInstallmentPlan splits tmpl.Amount into count monthly siblings starting
// at tmpl.Date. A count of one records a plain transaction instead.
func (s *Store) AddInstallmentPlan(ctx context.Context, tmpl core.Transaction, count int) ([]core.Transaction, error) {
	tmpl.Normalize()
	if count == 1 {
		t, err := s.AddTransaction(ctx, tmpl)
		if err != nil {
			return nil, err
		}
		return []core.Transaction{t}, nil
	}
	items, err := installment.Plan(tmpl, count, s.newID())
	if err != nil {
		return nil, err
	}
	return s.AddInstallmentBatch(ctx, items)
}

// UpdateTransaction replaces the transaction with id. The new date must fall
// in the selected month. A nil schedule keeps the stored one.
func (s *Store) UpdateTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	idx := s.indexOfTransaction(id)
	if idx < 0 {
		s.mu.Unlock()
		return core.Transaction{}, &core.NotFoundError{Entity: "transaction", ID: id}
	}
	current := s.transactions[idx]
	if t.Schedule == nil {
		t.Schedule = current.Schedule
	}
	t.Normalize()
	t.ID = id
	t.UserID = s.userID
	t.CreatedAt = current.CreatedAt

	if err := s.checkSelectedMonth(t); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	if err := s.checkTransaction(t); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}

	saved, err := s.repo.UpdateTransaction(ctx, t)
	if err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	saved.Normalize()
	s.transactions[idx] = saved
	ev := s.commit(ctx, Updated, TransactionEntity, id, []string{id}, services.TransactionUpdated(saved))
	s.mu.Unlock()

	s.emit(ev)
	return saved, nil
}

// DeleteTransaction removes the transaction with id. Deleting an installment
// sibling removes its whole group. An unknown id is a no-op.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOfTransaction(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	target := s.transactions[idx]

	var (
		removed func(core.Transaction) bool
		err     error
	)
	switch sched := target.Schedule.(type) {
	case core.Installment:
		err = s.repo.DeleteTransactionsByParent(ctx, s.userID, sched.ParentID)
		removed = func(t core.Transaction) bool {
			inst, ok := t.InstallmentGroup()
			return ok && inst.ParentID == sched.ParentID
		}
	case core.Standalone:
		err = s.repo.DeleteTransaction(ctx, s.userID, id)
		removed = func(t core.Transaction) bool { return t.ID == id }
	default:
		err = &core.ValidationError{Field: "installments", Message: "unknown schedule"}
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}

	var ids []string
	for _, t := range s.transactions {
		if removed(t) {
			ids = append(ids, t.ID)
		}
	}
	s.transactions = slices.DeleteFunc(s.transactions, removed)
	ev := s.commit(ctx, Deleted, TransactionEntity, id, ids, services.TransactionDeleted(target))
	s.mu.Unlock()

	s.emit(ev)
	return nil
}
