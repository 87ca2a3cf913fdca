package services

import (
	"context"

	"github.com/google/uuid"

	"carteira/internal/core"
)

// Catalog manages categories and savings goals. Neither participates in
// the balance invariant; categories gate transaction classification and
// goals feed projection output.
type Catalog struct {
	store Store
}

func NewCatalog(store Store) *Catalog {
	return &Catalog{store: store}
}

type CategoryInput struct {
	OwnerID string
	Name    string
	Flow    core.TransactionType
	Color   string
}

func (s *Catalog) CreateCategory(ctx context.Context, in CategoryInput) (core.Category, error) {
	c := core.Category{
		ID:      uuid.NewString(),
		OwnerID: in.OwnerID,
		Name:    in.Name,
		Flow:    in.Flow,
		Color:   in.Color,
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *Catalog) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	return s.store.ListCategories(ctx, ownerID)
}

// DeleteCategory surfaces a conflict, not a cascade, when transactions
// still reference the category.
func (s *Catalog) DeleteCategory(ctx context.Context, ownerID, id string) error {
	return s.store.DeleteCategory(ctx, ownerID, id)
}

type GoalInput struct {
	OwnerID  string
	Name     string
	Target   core.Money
	Current  core.Money
	Deadline core.Date
}

func (s *Catalog) CreateGoal(ctx context.Context, in GoalInput) (core.Goal, error) {
	g := core.Goal{
		ID:       uuid.NewString(),
		OwnerID:  in.OwnerID,
		Name:     in.Name,
		Target:   in.Target,
		Current:  in.Current,
		Deadline: in.Deadline,
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.store.CreateGoal(ctx, g); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (s *Catalog) ListGoals(ctx context.Context, ownerID string) ([]core.Goal, error) {
	return s.store.ListGoals(ctx, ownerID)
}

func (s *Catalog) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.store.UpdateGoal(ctx, g); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (s *Catalog) DeleteGoal(ctx context.Context, ownerID, id string) error {
	return s.store.DeleteGoal(ctx, ownerID, id)
}
