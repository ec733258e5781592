package ledger

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"flux/internal/core"
	"flux/internal/services"
)

// AddCard records a credit card.
func (s *Store) AddCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	c.BankName = strings.TrimSpace(c.BankName)
	c.HolderName = strings.TrimSpace(c.HolderName)
	if err := c.Validate(); err != nil {
		return core.CreditCard{}, err
	}

	s.mu.Lock()
	c.ID = s.newID()
	c.UserID = s.userID
	saved, err := s.repo.InsertCard(ctx, c)
	if err != nil {
		s.mu.Unlock()
		return core.CreditCard{}, err
	}
	s.cards = append(s.cards, saved)
	ev := s.commit(ctx, Created, CardEntity, saved.ID, []string{saved.ID}, services.CardAdded(saved))
	s.mu.Unlock()

	s.emit(ev)
	return saved, nil
}

// UpdateCard replaces the card with id.
func (s *Store) UpdateCard(ctx context.Context, id string, c core.CreditCard) (core.CreditCard, error) {
	c.BankName = strings.TrimSpace(c.BankName)
	c.HolderName = strings.TrimSpace(c.HolderName)
	if err := c.Validate(); err != nil {
		return core.CreditCard{}, err
	}

	s.mu.Lock()
	idx := slices.IndexFunc(s.cards, func(x core.CreditCard) bool { return x.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return core.CreditCard{}, &core.NotFoundError{Entity: "card", ID: id}
	}
	c.ID = id
	c.UserID = s.userID
	c.CreatedAt = s.cards[idx].CreatedAt
	saved, err := s.repo.UpdateCard(ctx, c)
	if err != nil {
		s.mu.Unlock()
		return core.CreditCard{}, err
	}
	s.cards[idx] = saved
	ev := s.commit(ctx, Updated, CardEntity, id, []string{id}, services.CardUpdated(saved))
	s.mu.Unlock()

	s.emit(ev)
	return saved, nil
}

// DeleteCard removes the card with id. An unknown id is a no-op.
func (s *Store) DeleteCard(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := slices.IndexFunc(s.cards, func(x core.CreditCard) bool { return x.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	target := s.cards[idx]
	if err := s.repo.DeleteCard(ctx, s.userID, id); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cards = slices.Delete(s.cards, idx, idx+1)
	ev := s.commit(ctx, Deleted, CardEntity, id, []string{id}, services.CardDeleted(target))
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// AddGoal records a goal. Progress starts at the initial amount.
func (s *Store) AddGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.Name = strings.TrimSpace(g.Name)
	g.CurrentAmount = g.InitialAmount
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}

	s.mu.Lock()
	g.ID = s.newID()
	g.UserID = s.userID
	saved, err := s.repo.InsertGoal(ctx, g)
	if err != nil {
		s.mu.Unlock()
		return core.Goal{}, err
	}
	s.goals = append(s.goals, saved)
	ev := s.commit(ctx, Created, GoalEntity, saved.ID, []string{saved.ID}, services.GoalCreated(saved))
	s.mu.Unlock()

	s.emit(ev)
	return saved, nil
}

// UpdateGoal replaces the goal with id, including its current amount.
func (s *Store) UpdateGoal(ctx context.Context, id string, g core.Goal) (core.Goal, error) {
	g.Name = strings.TrimSpace(g.Name)
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}

	s.mu.Lock()
	idx := slices.IndexFunc(s.goals, func(x core.Goal) bool { return x.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return core.Goal{}, &core.NotFoundError{Entity: "goal", ID: id}
	}
	g.ID = id
	g.UserID = s.userID
	g.CreatedAt = s.goals[idx].CreatedAt
	saved, err := s.repo.UpdateGoal(ctx, g)
	if err != nil {
		s.mu.Unlock()
		return core.Goal{}, err
	}
	s.goals[idx] = saved
	ev := s.commit(ctx, Updated, GoalEntity, id, []string{id}, services.GoalUpdated(saved))
	s.mu.Unlock()

	s.emit(ev)
	return saved, nil
}

// DeleteGoal removes the goal with id. An unknown id is a no-op.
func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := slices.IndexFunc(s.goals, func(x core.Goal) bool { return x.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	target := s.goals[idx]
	if err := s.repo.DeleteGoal(ctx, s.userID, id); err != nil {
		s.mu.Unlock()
		return err
	}
	s.goals = slices.Delete(s.goals, idx, idx+1)
	ev := s.commit(ctx, Deleted, GoalEntity, id, []string{id}, services.GoalDeleted(target))
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// checkCategoryName rejects a second category with the same name and type.
// Caller holds mu.
func (s *Store) checkCategoryName(c core.Category, skipID string) error {
	for _, x := range s.categories {
		if x.ID != skipID && x.Type == c.Type && strings.EqualFold(x.Name, c.Name) {
			return &core.ValidationError{
				Field:   "name",
				Message: fmt.Sprintf("%s category %q already exists", c.Type, c.Name),
			}
		}
	}
	return nil
}

// AddCategory records a category.
func (s *Store) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	s.mu.Lock()
	if err := s.checkCategoryName(c, ""); err != nil {
		s.mu.Unlock()
		return core.Category{}, err
	}
	c.ID = s.newID()
	c.UserID = s.userID
	saved, err := s.repo.InsertCategory(ctx, c)
	if err != nil {
		s.mu.Unlock()
		return core.Category{}, err
	}
	s.categories = append(s.categories, saved)
	ev := s.commit(ctx, Created, CategoryEntity, saved.ID, []string{saved.ID}, services.CategoryCreated(saved))
	s.mu.Unlock()

	s.emit(ev)
	return saved, nil
}

// UpdateCategory replaces the category with id. Transactions keep the name
// they were recorded with.
func (s *Store) UpdateCategory(ctx context.Context, id string, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	s.mu.Lock()
	idx := slices.IndexFunc(s.categories, func(x core.Category) bool { return x.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return core.Category{}, &core.NotFoundError{Entity: "category", ID: id}
	}
	if err := s.checkCategoryName(c, id); err != nil {
		s.mu.Unlock()
		return core.Category{}, err
	}
	c.ID = id
	c.UserID = s.userID
	c.CreatedAt = s.categories[idx].CreatedAt
	saved, err := s.repo.UpdateCategory(ctx, c)
	if err != nil {
		s.mu.Unlock()
		return core.Category{}, err
	}
	s.categories[idx] = saved
	ev := s.commit(ctx, Updated, CategoryEntity, id, []string{id}, services.CategoryUpdated(saved))
	s.mu.Unlock()

	s.emit(ev)
	return saved, nil
}

// DeleteCategory removes the category with id. An unknown id is a no-op.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := slices.IndexFunc(s.categories, func(x core.Category) bool { return x.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	target := s.categories[idx]
	if err := s.repo.DeleteCategory(ctx, s.userID, id); err != nil {
		s.mu.Unlock()
		return err
	}
	s.categories = slices.Delete(s.categories, idx, idx+1)
	ev := s.commit(ctx, Deleted, CategoryEntity, id, []string{id}, services.CategoryDeleted(target))
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// UpdateProfile saves the household settings.
func (s *Store) UpdateProfile(ctx context.Context, p core.Profile) (core.Profile, error) {
	p.ID = s.userID
	p.Normalize()
	if err := p.Validate(); err != nil {
		return core.Profile{}, err
	}

	s.mu.Lock()
	saved, err := s.repo.SaveProfile(ctx, p)
	if err != nil {
		s.mu.Unlock()
		return core.Profile{}, err
	}
	s.profile = saved
	ev := s.commit(ctx, Updated, ProfileEntity, s.userID, []string{s.userID}, services.SettingsSaved)
	s.mu.Unlock()

	s.emit(ev)
	return saved, nil
}
