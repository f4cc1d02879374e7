package waste

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/housy/internal/apperr"
	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/model"
	"github.com/dukerupert/housy/internal/store"
	"github.com/dukerupert/housy/internal/validate"
	"github.com/google/uuid"
)

type Service struct {
	schedules *store.WasteStore
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(ws *store.WasteStore, logger *slog.Logger, loc *time.Location) *Service {
	return &Service{
		schedules: ws,
		logger:    logger,
		now:       func() time.Time { return time.Now().In(loc) },
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

func requireAdmin(actor auth.Actor) error {
	if err := requireMember(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apperr.Forbidden("only admins can change waste schedules")
	}
	return nil
}

func (s *Service) List(ctx context.Context, actor auth.Actor) ([]model.WasteSchedule, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	out, err := s.schedules.List(ctx, actor.HouseholdID, false)
	if err != nil {
		return nil, s.persistence("list waste schedules", err)
	}
	return out, nil
}

// Next returns the upcoming collection day, or nil when none is active.
func (s *Service) Next(ctx context.Context, actor auth.Actor) (*model.NextCollection, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	return s.NextFor(ctx, actor.HouseholdID, s.now())
}

// NextFor evaluates the next collection for a household at now.
func (s *Service) NextFor(ctx context.Context, householdID uuid.UUID, now time.Time) (*model.NextCollection, error) {
	active, err := s.schedules.List(ctx, householdID, true)
	if err != nil {
		return nil, s.persistence("list waste schedules", err)
	}
	return NextCollection(active, now.Weekday()), nil
}

type CreateInput struct {
	WasteType    model.WasteType `json:"waste_type" validate:"required,enum"`
	DayOfWeek    int             `json:"day_of_week" validate:"gte=0,lte=6"`
	ReminderTime string          `json:"reminder_time" validate:"required,hhmm"`
	DeadlineTime *string         `json:"deadline_time" validate:"omitnil,hhmm"`
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*model.WasteSchedule, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if in.DeadlineTime != nil && *in.DeadlineTime == "" {
		in.DeadlineTime = nil
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	w, err := s.schedules.Create(ctx, &model.WasteSchedule{
		HouseholdID:  actor.HouseholdID,
		WasteType:    in.WasteType,
		DayOfWeek:    in.DayOfWeek,
		ReminderTime: in.ReminderTime,
		DeadlineTime: in.DeadlineTime,
		IsActive:     true,
	})
	if err != nil {
		return nil, s.persistence("create waste schedule", err)
	}
	return w, nil
}

// UpdateInput is a partial update. An empty deadline clears it.
type UpdateInput struct {
	WasteType    *model.WasteType `json:"waste_type" validate:"omitnil,enum"`
	DayOfWeek    *int             `json:"day_of_week" validate:"omitnil,gte=0,lte=6"`
	ReminderTime *string          `json:"reminder_time" validate:"omitnil,hhmm"`
	DeadlineTime *string          `json:"deadline_time" validate:"omitnil,hhmm"`
	IsActive     *bool            `json:"is_active"`
}

func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, in UpdateInput) (*model.WasteSchedule, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	clearDeadline := in.DeadlineTime != nil && *in.DeadlineTime == ""
	if clearDeadline {
		in.DeadlineTime = nil
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	w, err := s.load(ctx, actor.HouseholdID, id)
	if err != nil {
		return nil, err
	}

	if in.WasteType != nil {
		w.WasteType = *in.WasteType
	}
	if in.DayOfWeek != nil {
		w.DayOfWeek = *in.DayOfWeek
	}
	if in.ReminderTime != nil {
		w.ReminderTime = *in.ReminderTime
	}
	switch {
	case in.DeadlineTime != nil:
		w.DeadlineTime = in.DeadlineTime
	case clearDeadline:
		w.DeadlineTime = nil
	}
	if in.IsActive != nil {
		w.IsActive = *in.IsActive
	}

	updated, err := s.schedules.Update(ctx, w)
	if err != nil {
		return nil, s.persistence("update waste schedule", err)
	}
	return updated, nil
}

func (s *Service) load(ctx context.Context, householdID, id uuid.UUID) (*model.WasteSchedule, error) {
	w, err := s.schedules.GetByID(ctx, householdID, id)
	if err != nil {
		return nil, s.persistence("get waste schedule", err)
	}
	if w == nil {
		return nil, apperr.NotFound("waste schedule not found")
	}
	return w, nil
}

// Toggle flips is_active and returns the new state.
func (s *Service) Toggle(ctx context.Context, actor auth.Actor, id uuid.UUID) (*model.WasteSchedule, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	w, err := s.load(ctx, actor.HouseholdID, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.schedules.SetActive(ctx, actor.HouseholdID, id, !w.IsActive)
	if err != nil {
		return nil, s.persistence("toggle waste schedule", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.load(ctx, actor.HouseholdID, id); err != nil {
		return err
	}
	if err := s.schedules.Delete(ctx, actor.HouseholdID, id); err != nil {
		return s.persistence("delete waste schedule", err)
	}
	return nil
}
