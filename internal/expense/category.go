package expense

import (
	"context"
	"strings"

	"github.com/dukerupert/housy/internal/apperr"
	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/model"
	"github.com/dukerupert/housy/internal/store"
	"github.com/dukerupert/housy/internal/validate"
	"github.com/google/uuid"
)

const (
	defaultCategoryIcon  = "tag"
	defaultCategoryColor = "#6b7280"
)

func requireAdmin(actor auth.Actor) error {
	if err := requireMember(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apperr.Forbidden("only admins can manage categories")
	}
	return nil
}

func (s *Service) Categories(ctx context.Context, actor auth.Actor) ([]model.ExpenseCategory, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	cats, err := s.categories.List(ctx, actor.HouseholdID)
	if err != nil {
		return nil, s.persistence("list categories", err)
	}
	if cats == nil {
		cats = []model.ExpenseCategory{}
	}
	return cats, nil
}

type CategoryInput struct {
	Name  string `json:"name" validate:"required,max=50"`
	Icon  string `json:"icon" validate:"max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// nameTaken reports whether another category of the household already uses name.
func (s *Service) nameTaken(ctx context.Context, householdID uuid.UUID, name string, except uuid.UUID) error {
	existing, err := s.categories.GetByName(ctx, householdID, name)
	if err != nil {
		return s.persistence("get category by name", err)
	}
	if existing != nil && existing.ID != except {
		return apperr.Validation("a category with this name already exists")
	}
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, actor auth.Actor, in CategoryInput) (*model.ExpenseCategory, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := s.nameTaken(ctx, actor.HouseholdID, in.Name, uuid.Nil); err != nil {
		return nil, err
	}
	if in.Icon == "" {
		in.Icon = defaultCategoryIcon
	}
	if in.Color == "" {
		in.Color = defaultCategoryColor
	}
	c, err := s.categories.Create(ctx, actor.HouseholdID, in.Name, in.Icon, in.Color)
	if store.IsUniqueViolation(err) {
		return nil, apperr.Validation("a category with this name already exists")
	}
	if err != nil {
		return nil, s.persistence("create category", err)
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, actor auth.Actor, id uuid.UUID, in CategoryInput) (*model.ExpenseCategory, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	c, err := s.loadCategory(ctx, actor.HouseholdID, id)
	if err != nil {
		return nil, err
	}
	if err := s.nameTaken(ctx, actor.HouseholdID, in.Name, id); err != nil {
		return nil, err
	}
	c.Name = in.Name
	if in.Icon != "" {
		c.Icon = in.Icon
	}
	if in.Color != "" {
		c.Color = in.Color
	}
	updated, err := s.categories.Update(ctx, c)
	if store.IsUniqueViolation(err) {
		return nil, apperr.Validation("a category with this name already exists")
	}
	if err != nil {
		return nil, s.persistence("update category", err)
	}
	return updated, nil
}

// DeleteCategory removes a category. Its expenses stay, uncategorized.
func (s *Service) DeleteCategory(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.loadCategory(ctx, actor.HouseholdID, id); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, actor.HouseholdID, id); err != nil {
		return s.persistence("delete category", err)
	}
	return nil
}

func (s *Service) loadCategory(ctx context.Context, householdID, id uuid.UUID) (*model.ExpenseCategory, error) {
	c, err := s.categories.GetByID(ctx, householdID, id)
	if err != nil {
		return nil, s.persistence("get category", err)
	}
	if c == nil {
		return nil, apperr.NotFound("category not found")
	}
	return c, nil
}

// Suggestion is the category guessed for a description. Category is nil
// when the household has no category with the suggested name.
type Suggestion struct {
	Name     string                 `json:"name"`
	Category *model.ExpenseCategory `json:"category"`
}

func (s *Service) Suggest(ctx context.Context, actor auth.Actor, description string) (*Suggestion, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	name := SuggestCategory(description)
	c, err := s.categories.GetByName(ctx, actor.HouseholdID, name)
	if err != nil {
		return nil, s.persistence("get category by name", err)
	}
	return &Suggestion{Name: name, Category: c}, nil
}
