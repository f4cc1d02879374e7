package expense

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/housy/internal/apperr"
	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/model"
	"github.com/dukerupert/housy/internal/store"
	"github.com/dukerupert/housy/internal/validate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	dateLayout      = "2006-01-02"
)

type Service struct {
	expenses   *store.ExpenseStore
	categories *store.CategoryStore
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(es *store.ExpenseStore, cs *store.CategoryStore, logger *slog.Logger, loc *time.Location) *Service {
	return &Service{
		expenses:   es,
		categories: cs,
		logger:     logger,
		now:        func() time.Time { return time.Now().In(loc) },
	}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) persistence(op string, err error) error {
	s.logger.Error(op, "error", err)
	return apperr.Persistence(op, err)
}

func requireMember(actor auth.Actor) error {
	if !actor.Authenticated() {
		return apperr.Unauthenticated()
	}
	if !actor.HasHousehold() {
		return apperr.NotFound("you are not a member of any household")
	}
	return nil
}

// MonthRange returns the first and last calendar day of the month containing t.
func MonthRange(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first, first.AddDate(0, 1, -1)
}

func parseDay(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperr.Validation("date must be in YYYY-MM-DD format")
	}
	return d, nil
}

type ListInput struct {
	Start      *time.Time
	End        *time.Time
	CategoryID *uuid.UUID
	UserID     *uuid.UUID
	Limit      int
	Offset     int
}

type ListResult struct {
	Expenses []model.Expense `json:"expenses"`
	Total    int             `json:"total"`
}

// List pages through household expenses, newest first.
func (s *Service) List(ctx context.Context, actor auth.Actor, in ListInput) (*ListResult, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if in.Limit <= 0 {
		in.Limit = defaultPageSize
	}
	if in.Limit > maxPageSize {
		in.Limit = maxPageSize
	}
	if in.Offset < 0 {
		in.Offset = 0
	}
	expenses, total, err := s.expenses.List(ctx, actor.HouseholdID, model.ExpenseFilter{
		Start:      in.Start,
		End:        in.End,
		CategoryID: in.CategoryID,
		UserID:     in.UserID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, s.persistence("list expenses", err)
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	return &ListResult{Expenses: expenses, Total: total}, nil
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*model.Expense, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	return s.load(ctx, actor.HouseholdID, id)
}

func (s *Service) load(ctx context.Context, householdID, id uuid.UUID) (*model.Expense, error) {
	e, err := s.expenses.GetByID(ctx, householdID, id)
	if err != nil {
		return nil, s.persistence("get expense", err)
	}
	if e == nil {
		return nil, apperr.NotFound("expense not found")
	}
	return e, nil
}

func (s *Service) checkCategory(ctx context.Context, householdID uuid.UUID, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	c, err := s.categories.GetByID(ctx, householdID, *id)
	if err != nil {
		return s.persistence("get category", err)
	}
	if c == nil {
		return apperr.Validation("category not found")
	}
	return nil
}

type CreateInput struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=500"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Date        string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	IsShared    *bool           `json:"is_shared"`
}

// Create records an expense paid by the actor. Date defaults to today and
// expenses are shared unless stated otherwise.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*model.Expense, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, apperr.Validation("amount must be greater than zero")
	}
	if err := s.checkCategory(ctx, actor.HouseholdID, in.CategoryID); err != nil {
		return nil, err
	}

	date := s.now()
	if in.Date != "" {
		d, err := parseDay(in.Date)
		if err != nil {
			return nil, err
		}
		date = d
	}
	shared := true
	if in.IsShared != nil {
		shared = *in.IsShared
	}

	e, err := s.expenses.Create(ctx, &model.Expense{
		HouseholdID: actor.HouseholdID,
		UserID:      actor.UserID,
		CategoryID:  in.CategoryID,
		Amount:      in.Amount,
		Description: in.Description,
		Date:        date,
		IsShared:    shared,
	})
	if err != nil {
		return nil, s.persistence("create expense", err)
	}
	return e, nil
}

// UpdateInput is a partial update. ClearCategory removes the category.
type UpdateInput struct {
	Amount        *decimal.Decimal `json:"amount"`
	Description   *string          `json:"description" validate:"omitnil,max=500"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	ClearCategory bool             `json:"clear_category"`
	Date          *string          `json:"date" validate:"omitnil,datetime=2006-01-02"`
	IsShared      *bool            `json:"is_shared"`
}

// owned loads an expense the actor may change. Only its creator may.
func (s *Service) owned(ctx context.Context, actor auth.Actor, id uuid.UUID, action string) (*model.Expense, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	e, err := s.load(ctx, actor.HouseholdID, id)
	if err != nil {
		return nil, err
	}
	if e.UserID != actor.UserID {
		return nil, apperr.Forbidden("you can only %s your own expenses", action)
	}
	return e, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, in UpdateInput) (*model.Expense, error) {
	e, err := s.owned(ctx, actor, id, "edit")
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.Amount != nil {
		if !in.Amount.IsPositive() {
			return nil, apperr.Validation("amount must be greater than zero")
		}
		e.Amount = *in.Amount
	}
	if in.Description != nil {
		e.Description = strings.TrimSpace(*in.Description)
	}
	switch {
	case in.CategoryID != nil:
		if err := s.checkCategory(ctx, actor.HouseholdID, in.CategoryID); err != nil {
			return nil, err
		}
		e.CategoryID = in.CategoryID
	case in.ClearCategory:
		e.CategoryID = nil
	}
	if in.Date != nil {
		d, err := parseDay(*in.Date)
		if err != nil {
			return nil, err
		}
		e.Date = d
	}
	if in.IsShared != nil {
		e.IsShared = *in.IsShared
	}

	updated, err := s.expenses.Update(ctx, e)
	if err != nil {
		return nil, s.persistence("update expense", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, id, "delete"); err != nil {
		return err
	}
	if err := s.expenses.Delete(ctx, actor.HouseholdID, id); err != nil {
		return s.persistence("delete expense", err)
	}
	return nil
}

// Summary aggregates expenses dated within [start, end]. Missing bounds
// default to the current month.
func (s *Service) Summary(ctx context.Context, actor auth.Actor, start, end *time.Time) (*model.ExpenseSummary, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	first, last := MonthRange(s.now())
	if start != nil {
		first = *start
	}
	if end != nil {
		last = *end
	}
	expenses, err := s.between(ctx, actor.HouseholdID, first, last)
	if err != nil {
		return nil, err
	}
	sum := Summarize(expenses)
	return &sum, nil
}

// Month returns every expense of the month containing now, newest first.
func (s *Service) Month(ctx context.Context, householdID uuid.UUID, now time.Time) ([]model.Expense, error) {
	first, last := MonthRange(now)
	return s.between(ctx, householdID, first, last)
}

func (s *Service) between(ctx context.Context, householdID uuid.UUID, start, end time.Time) ([]model.Expense, error) {
	expenses, _, err := s.expenses.List(ctx, householdID, model.ExpenseFilter{Start: &start, End: &end})
	if err != nil {
		return nil, s.persistence("list expenses", err)
	}
	return expenses, nil
}
