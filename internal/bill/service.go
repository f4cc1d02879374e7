package bill

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

type Service struct {
	bills  *store.BillStore
	logger *slog.Logger
	now    func() time.Time
}

// NewService evaluates "today" in loc.
func NewService(bs *store.BillStore, logger *slog.Logger, loc *time.Location) *Service {
	return &Service{
		bills:  bs,
		logger: logger,
		now:    func() time.Time { return time.Now().In(loc) },
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

func requireAdmin(actor auth.Actor, action string) error {
	if err := requireMember(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apperr.Forbidden("only admins can %s bills", action)
	}
	return nil
}

func checkAmount(a *decimal.Decimal) error {
	if a != nil && a.IsNegative() {
		return apperr.Validation("amount cannot be negative")
	}
	return nil
}

// List returns every bill of the household with its current status.
func (s *Service) List(ctx context.Context, actor auth.Actor) ([]model.BillWithStatus, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	bills, err := s.bills.List(ctx, actor.HouseholdID, false)
	if err != nil {
		return nil, s.persistence("list bills", err)
	}
	return WithStatus(bills, s.now()), nil
}

// Upcoming returns active, unpaid bills inside their reminder window.
func (s *Service) Upcoming(ctx context.Context, actor auth.Actor) ([]model.BillWithStatus, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	bills, err := s.bills.List(ctx, actor.HouseholdID, true)
	if err != nil {
		return nil, s.persistence("list bills", err)
	}
	out := []model.BillWithStatus{}
	for _, b := range WithStatus(bills, s.now()) {
		if b.Status == model.BillStatusUpcoming {
			out = append(out, b)
		}
	}
	return out, nil
}

// Active returns the household's active bills in due-day order.
func (s *Service) Active(ctx context.Context, householdID uuid.UUID) ([]model.RecurringBill, error) {
	bills, err := s.bills.List(ctx, householdID, true)
	if err != nil {
		return nil, s.persistence("list bills", err)
	}
	return bills, nil
}

type CreateInput struct {
	Name               string              `json:"name" validate:"required,max=100"`
	Amount             *decimal.Decimal    `json:"amount"`
	DueDay             int                 `json:"due_day" validate:"required,min=1,max=31"`
	ReminderDaysBefore *int                `json:"reminder_days_before" validate:"omitnil,gte=0,lte=31"`
	Category           *model.BillCategory `json:"category" validate:"omitnil,enum"`
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*model.BillWithStatus, error) {
	if err := requireAdmin(actor, "create"); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := checkAmount(in.Amount); err != nil {
		return nil, err
	}

	b := &model.RecurringBill{
		HouseholdID:        actor.HouseholdID,
		Name:               in.Name,
		DueDay:             in.DueDay,
		ReminderDaysBefore: model.DefaultReminderDays,
		Category:           in.Category,
		IsActive:           true,
	}
	if in.Amount != nil {
		b.Amount = decimal.NewNullDecimal(*in.Amount)
	}
	if in.ReminderDaysBefore != nil {
		b.ReminderDaysBefore = *in.ReminderDaysBefore
	}
	created, err := s.bills.Create(ctx, b)
	if err != nil {
		return nil, s.persistence("create bill", err)
	}
	s.logger.Info("bill created", "bill_id", created.ID, "household_id", created.HouseholdID)
	return &model.BillWithStatus{RecurringBill: *created, Status: Status(*created, s.now())}, nil
}

// UpdateInput is a partial update. ClearAmount removes a stored amount.
type UpdateInput struct {
	Name               *string             `json:"name" validate:"omitnil,min=1,max=100"`
	Amount             *decimal.Decimal    `json:"amount"`
	ClearAmount        bool                `json:"clear_amount"`
	DueDay             *int                `json:"due_day" validate:"omitnil,min=1,max=31"`
	ReminderDaysBefore *int                `json:"reminder_days_before" validate:"omitnil,gte=0,lte=31"`
	Category           *model.BillCategory `json:"category" validate:"omitnil,enum"`
	IsActive           *bool               `json:"is_active"`
}

func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, in UpdateInput) (*model.BillWithStatus, error) {
	if err := requireAdmin(actor, "update"); err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := checkAmount(in.Amount); err != nil {
		return nil, err
	}
	b, err := s.load(ctx, actor.HouseholdID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		b.Name = *in.Name
	}
	switch {
	case in.Amount != nil:
		b.Amount = decimal.NewNullDecimal(*in.Amount)
	case in.ClearAmount:
		b.Amount = decimal.NullDecimal{}
	}
	if in.DueDay != nil {
		b.DueDay = *in.DueDay
	}
	if in.ReminderDaysBefore != nil {
		b.ReminderDaysBefore = *in.ReminderDaysBefore
	}
	if in.Category != nil {
		b.Category = in.Category
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}

	updated, err := s.bills.Update(ctx, b)
	if err != nil {
		return nil, s.persistence("update bill", err)
	}
	return &model.BillWithStatus{RecurringBill: *updated, Status: Status(*updated, s.now())}, nil
}

func (s *Service) load(ctx context.Context, householdID, id uuid.UUID) (*model.RecurringBill, error) {
	b, err := s.bills.GetByID(ctx, householdID, id)
	if err != nil {
		return nil, s.persistence("get bill", err)
	}
	if b == nil {
		return nil, apperr.NotFound("bill not found")
	}
	return b, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := requireAdmin(actor, "delete"); err != nil {
		return err
	}
	if _, err := s.load(ctx, actor.HouseholdID, id); err != nil {
		return err
	}
	if err := s.bills.Delete(ctx, actor.HouseholdID, id); err != nil {
		return s.persistence("delete bill", err)
	}
	return nil
}

// MarkPaid records a payment on paidOn, or today when nil. Any member may pay.
func (s *Service) MarkPaid(ctx context.Context, actor auth.Actor, id uuid.UUID, paidOn *time.Time) (*model.BillWithStatus, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, actor.HouseholdID, id); err != nil {
		return nil, err
	}
	now := s.now()
	day := now
	if paidOn != nil {
		day = *paidOn
	}
	b, err := s.bills.MarkPaid(ctx, actor.HouseholdID, id, day)
	if err != nil {
		return nil, s.persistence("mark bill paid", err)
	}
	s.logger.Info("bill paid", "bill_id", id, "user_id", actor.UserID)
	return &model.BillWithStatus{RecurringBill: *b, Status: Status(*b, now)}, nil
}
