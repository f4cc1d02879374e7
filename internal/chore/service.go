package chore

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dukerupert/housy/internal/apperr"
	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/model"
	"github.com/dukerupert/housy/internal/store"
	"github.com/dukerupert/housy/internal/validate"
	"github.com/google/uuid"
)

const defaultRecentLimit = 10

type Service struct {
	chores     *store.ChoreStore
	households *store.HouseholdStore
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(cs *store.ChoreStore, hs *store.HouseholdStore, logger *slog.Logger) *Service {
	return &Service{chores: cs, households: hs, logger: logger, now: time.Now}
}

// SetClock replaces the time source.
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
		return apperr.Forbidden("only admins can %s chores", action)
	}
	return nil
}

func (s *Service) List(ctx context.Context, actor auth.Actor) ([]model.Chore, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	chores, err := s.chores.List(ctx, actor.HouseholdID)
	if err != nil {
		return nil, s.persistence("list chores", err)
	}
	return chores, nil
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*model.Chore, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	return s.load(ctx, actor.HouseholdID, id)
}

func (s *Service) load(ctx context.Context, householdID, id uuid.UUID) (*model.Chore, error) {
	c, err := s.chores.GetByID(ctx, householdID, id)
	if err != nil {
		return nil, s.persistence("get chore", err)
	}
	if c == nil {
		return nil, apperr.NotFound("chore not found")
	}
	return c, nil
}

// checkRotation rejects rotations naming users outside the household and drops duplicates.
func (s *Service) checkRotation(ctx context.Context, householdID uuid.UUID, rotation []uuid.UUID) ([]uuid.UUID, error) {
	if len(rotation) == 0 {
		return []uuid.UUID{}, nil
	}
	members, err := s.households.ListMembers(ctx, householdID)
	if err != nil {
		return nil, s.persistence("list members", err)
	}
	known := make(map[uuid.UUID]bool, len(members))
	for _, m := range members {
		known[m.UserID] = true
	}
	seen := make(map[uuid.UUID]bool, len(rotation))
	out := make([]uuid.UUID, 0, len(rotation))
	for _, id := range rotation {
		if !known[id] {
			return nil, apperr.Validation("rotation includes a user who is not a household member")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

type CreateInput struct {
	Name          string          `json:"name" validate:"required,max=100"`
	Frequency     model.Frequency `json:"frequency" validate:"required,enum"`
	Points        int             `json:"points" validate:"gte=0,max=100"`
	RotationOrder []uuid.UUID     `json:"rotation_order"`
}

// Create adds a chore. The first rotation entry is assigned and the first
// due date is one period after creation.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*model.Chore, error) {
	if err := requireAdmin(actor, "create"); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.Points == 0 {
		in.Points = model.DefaultChorePoints
	}
	rotation, err := s.checkRotation(ctx, actor.HouseholdID, in.RotationOrder)
	if err != nil {
		return nil, err
	}

	now := s.now()
	due, err := NextDue(in.Frequency, now)
	if err != nil {
		return nil, err
	}
	c, err := s.chores.Create(ctx, &model.Chore{
		HouseholdID:     actor.HouseholdID,
		Name:            in.Name,
		Frequency:       in.Frequency,
		Points:          in.Points,
		RotationOrder:   rotation,
		CurrentAssignee: firstAssignee(rotation),
		NextDue:         &due,
		IsActive:        true,
		CreatedAt:       now,
	})
	if err != nil {
		return nil, s.persistence("create chore", err)
	}
	s.logger.Info("chore created", "chore_id", c.ID, "household_id", c.HouseholdID)
	return c, nil
}

// UpdateInput is a partial update; nil fields are left alone.
type UpdateInput struct {
	Name            *string          `json:"name" validate:"omitnil,min=1,max=100"`
	Frequency       *model.Frequency `json:"frequency" validate:"omitnil,enum"`
	Points          *int             `json:"points" validate:"omitnil,min=1,max=100"`
	RotationOrder   *[]uuid.UUID     `json:"rotation_order"`
	CurrentAssignee *uuid.UUID       `json:"current_assignee"`
	IsActive        *bool            `json:"is_active"`
}

// Update applies a patch. The assignee always stays inside the rotation:
// when the rotation changes and drops the current assignee, the first entry
// takes over.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, in UpdateInput) (*model.Chore, error) {
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
	c, err := s.load(ctx, actor.HouseholdID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Frequency != nil {
		c.Frequency = *in.Frequency
	}
	if in.Points != nil {
		c.Points = *in.Points
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.RotationOrder != nil {
		rotation, err := s.checkRotation(ctx, actor.HouseholdID, *in.RotationOrder)
		if err != nil {
			return nil, err
		}
		c.RotationOrder = rotation
		if c.CurrentAssignee == nil || !inRotation(rotation, *c.CurrentAssignee) {
			c.CurrentAssignee = firstAssignee(rotation)
		}
	}
	if in.CurrentAssignee != nil {
		if !inRotation(c.RotationOrder, *in.CurrentAssignee) {
			return nil, apperr.Validation("assignee must be part of the rotation")
		}
		assignee := *in.CurrentAssignee
		c.CurrentAssignee = &assignee
	}

	updated, err := s.chores.Update(ctx, c)
	if err != nil {
		return nil, s.persistence("update chore", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := requireAdmin(actor, "delete"); err != nil {
		return err
	}
	if _, err := s.load(ctx, actor.HouseholdID, id); err != nil {
		return err
	}
	if err := s.chores.Delete(ctx, actor.HouseholdID, id); err != nil {
		return s.persistence("delete chore", err)
	}
	return nil
}

// CompleteResult reports a completion back to the caller.
type CompleteResult struct {
	PointsEarned int          `json:"points_earned"`
	Chore        *model.Chore `json:"chore"`
}

// Complete records that the current assignee did the chore, hands it to the
// next person in the rotation and reschedules it. Only the assignee may
// complete; concurrent completions resolve to exactly one winner.
func (s *Service) Complete(ctx context.Context, actor auth.Actor, id uuid.UUID) (*CompleteResult, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, actor.HouseholdID, id)
	if err != nil {
		return nil, err
	}
	if c.CurrentAssignee == nil || *c.CurrentAssignee != actor.UserID {
		return nil, apperr.NotAssignee()
	}

	now := s.now()
	due, err := NextDue(c.Frequency, now)
	if err != nil {
		return nil, err
	}
	points := c.Points
	if points <= 0 {
		points = model.DefaultChorePoints
	}
	next := NextAssignee(c.RotationOrder, c.CurrentAssignee, actor.UserID)

	applied, err := s.chores.Complete(ctx, store.CompleteParams{
		HouseholdID:  actor.HouseholdID,
		ChoreID:      c.ID,
		Actor:        actor.UserID,
		NextAssignee: next,
		NextDue:      due,
		CompletedAt:  now,
		Points:       points,
	})
	if err != nil {
		return nil, s.persistence("complete chore", err)
	}
	if !applied {
		return nil, apperr.NotAssignee()
	}

	c.CurrentAssignee = next
	c.LastCompleted = &now
	c.NextDue = &due
	s.logger.Info("chore completed", "chore_id", c.ID, "user_id", actor.UserID, "points", points)
	return &CompleteResult{PointsEarned: points, Chore: c}, nil
}

// Period bounds a stats query. Nil ends are open.
type Period struct {
	Start *time.Time
	End   *time.Time
}

var (
	periodMin = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	periodMax = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

// Stats builds the points leaderboard for current members. Every member
// appears, even with zero points; completions by former members are dropped.
// Ties keep membership order.
func (s *Service) Stats(ctx context.Context, actor auth.Actor, p Period) ([]model.ChoreStats, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	members, err := s.households.ListMembers(ctx, actor.HouseholdID)
	if err != nil {
		return nil, s.persistence("list members", err)
	}
	start, end := periodMin, periodMax
	if p.Start != nil {
		start = *p.Start
	}
	if p.End != nil {
		end = *p.End
	}
	completions, err := s.chores.ListCompletions(ctx, actor.HouseholdID, start, end)
	if err != nil {
		return nil, s.persistence("list completions", err)
	}
	return Leaderboard(members, completions), nil
}

// Leaderboard folds completions into one row per member.
func Leaderboard(members []model.HouseholdMember, completions []model.ChoreCompletion) []model.ChoreStats {
	stats := make([]model.ChoreStats, len(members))
	index := make(map[uuid.UUID]int, len(members))
	for i, m := range members {
		stats[i] = model.ChoreStats{UserID: m.UserID, Name: m.DisplayName()}
		index[m.UserID] = i
	}
	for _, cc := range completions {
		i, ok := index[cc.UserID]
		if !ok {
			continue
		}
		stats[i].TotalPoints += cc.PointsEarned
		stats[i].CompletionCount++
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalPoints > stats[j].TotalPoints
	})
	return stats
}

func (s *Service) RecentCompletions(ctx context.Context, actor auth.Actor, limit int) ([]model.ChoreCompletion, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	out, err := s.chores.RecentCompletions(ctx, actor.HouseholdID, limit)
	if err != nil {
		return nil, s.persistence("recent completions", err)
	}
	return out, nil
}

// MonthPoints sums the actor's points for the calendar month containing now.
func (s *Service) MonthPoints(ctx context.Context, actor auth.Actor, now time.Time) (int, error) {
	if err := requireMember(actor); err != nil {
		return 0, err
	}
	start, end := MonthBounds(now)
	n, err := s.chores.PointsForUser(ctx, actor.HouseholdID, actor.UserID, start, end)
	if err != nil {
		return 0, s.persistence("sum points", err)
	}
	return n, nil
}
