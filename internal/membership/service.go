package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukerupert/housy/internal/apperr"
	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/model"
	"github.com/dukerupert/housy/internal/store"
	"github.com/dukerupert/housy/internal/validate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxCodeAttempts = 5

// Mailer delivers invite codes by email.
type Mailer interface {
	Configured() bool
	SendInviteCode(toEmail, code, householdName, inviterName string) error
}

// Service guards household membership. Every operation keeps at least one
// admin in any household that still has other members.
type Service struct {
	households *store.HouseholdStore
	users      *store.UserStore
	push       *store.PushStore
	mailer     Mailer
	logger     *slog.Logger
}

func NewService(hs *store.HouseholdStore, us *store.UserStore, ps *store.PushStore, mailer Mailer, logger *slog.Logger) *Service {
	return &Service{households: hs, users: us, push: ps, mailer: mailer, logger: logger}
}

// HouseholdView is the caller's household with its members.
type HouseholdView struct {
	Household *model.Household        `json:"household"`
	Role      model.Role              `json:"role"`
	Members   []model.HouseholdMember `json:"members"`
}

func (s *Service) persistence(op string, err error) error {
	s.logger.Error(op, "error", err)
	return apperr.Persistence(op, err)
}

// membership reloads the actor's membership so decisions never rely on a stale role.
func (s *Service) membership(ctx context.Context, actor auth.Actor) (*model.HouseholdMember, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthenticated()
	}
	m, err := s.households.GetMembershipForUser(ctx, actor.UserID)
	if err != nil {
		return nil, s.persistence("load membership", err)
	}
	if m == nil {
		return nil, apperr.NotFound("you are not a member of any household")
	}
	return m, nil
}

func (s *Service) adminMembership(ctx context.Context, actor auth.Actor, action string) (*model.HouseholdMember, error) {
	m, err := s.membership(ctx, actor)
	if err != nil {
		return nil, err
	}
	if m.Role != model.RoleAdmin {
		return nil, apperr.Forbidden("only admins can %s", action)
	}
	return m, nil
}

// checkSoleAdmin fails when m is the last admin of a household that still
// has other members. A lone member may always leave.
func (s *Service) checkSoleAdmin(ctx context.Context, m *model.HouseholdMember) error {
	if m.Role != model.RoleAdmin {
		return nil
	}
	admin := model.RoleAdmin
	admins, err := s.households.CountOthers(ctx, m.HouseholdID, m.UserID, &admin)
	if err != nil {
		return s.persistence("count admins", err)
	}
	if admins > 0 {
		return nil
	}
	others, err := s.households.CountOthers(ctx, m.HouseholdID, m.UserID, nil)
	if err != nil {
		return s.persistence("count members", err)
	}
	if others > 0 {
		return apperr.SoleAdmin()
	}
	return nil
}

func (s *Service) Current(ctx context.Context, actor auth.Actor) (*HouseholdView, error) {
	m, err := s.membership(ctx, actor)
	if err != nil {
		return nil, err
	}
	h, err := s.households.GetByID(ctx, m.HouseholdID)
	if err != nil {
		return nil, s.persistence("get household", err)
	}
	if h == nil {
		return nil, apperr.NotFound("household not found")
	}
	members, err := s.households.ListMembers(ctx, m.HouseholdID)
	if err != nil {
		return nil, s.persistence("list members", err)
	}
	return &HouseholdView{Household: h, Role: m.Role, Members: members}, nil
}

func (s *Service) Members(ctx context.Context, actor auth.Actor) ([]model.HouseholdMember, error) {
	m, err := s.membership(ctx, actor)
	if err != nil {
		return nil, err
	}
	members, err := s.households.ListMembers(ctx, m.HouseholdID)
	if err != nil {
		return nil, s.persistence("list members", err)
	}
	return members, nil
}

type CreateInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

// Create makes a new household with the actor as its admin.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*model.Household, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthenticated()
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	existing, err := s.households.GetMembershipForUser(ctx, actor.UserID)
	if err != nil {
		return nil, s.persistence("load membership", err)
	}
	if existing != nil {
		return nil, apperr.AlreadyMember("you already belong to a household")
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := NewInviteCode()
		if err != nil {
			return nil, s.persistence("generate invite code", err)
		}
		h, err := s.households.Create(ctx, in.Name, code, actor.UserID)
		if store.IsUniqueViolation(err) && strings.Contains(err.Error(), "invite_code") {
			continue
		}
		if err != nil {
			return nil, s.persistence("create household", err)
		}
		s.logger.Info("household created", "household_id", h.ID, "user_id", actor.UserID)
		return h, nil
	}
	return nil, s.persistence("create household", errors.New("no free invite code"))
}

// Join adds the actor to the household identified by code.
// A user belongs to at most one household; moving uses Switch.
func (s *Service) Join(ctx context.Context, actor auth.Actor, code string) (*model.Household, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthenticated()
	}
	target, err := s.resolveCode(ctx, code)
	if err != nil {
		return nil, err
	}

	existing, err := s.households.GetMembershipForUser(ctx, actor.UserID)
	if err != nil {
		return nil, s.persistence("load membership", err)
	}
	if existing != nil {
		if existing.HouseholdID == target.ID {
			return nil, apperr.AlreadyMember("you are already a member of this household")
		}
		return nil, apperr.AlreadyMember("you already belong to a household, switch instead")
	}

	if _, err := s.households.AddMember(ctx, target.ID, actor.UserID, model.RoleMember); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, apperr.AlreadyMember("you already belong to a household")
		}
		return nil, s.persistence("join household", err)
	}
	s.logger.Info("member joined", "household_id", target.ID, "user_id", actor.UserID)
	return target, nil
}

func (s *Service) resolveCode(ctx context.Context, code string) (*model.Household, error) {
	code = NormalizeCode(code)
	if !validCode(code) {
		return nil, apperr.NotFound("invalid invite code")
	}
	h, err := s.households.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, s.persistence("lookup invite code", err)
	}
	if h == nil {
		return nil, apperr.NotFound("invalid invite code")
	}
	return h, nil
}

// Leave removes the actor from their household.
func (s *Service) Leave(ctx context.Context, actor auth.Actor) error {
	m, err := s.membership(ctx, actor)
	if err != nil {
		return err
	}
	if err := s.checkSoleAdmin(ctx, m); err != nil {
		return err
	}
	if err := s.households.RemoveMember(ctx, m.HouseholdID, m.UserID); err != nil {
		return s.persistence("leave household", err)
	}
	s.dropDevices(ctx, m.UserID)
	s.logger.Info("member left", "household_id", m.HouseholdID, "user_id", m.UserID)
	return nil
}

// RemoveMember lets an admin remove someone else from the household.
func (s *Service) RemoveMember(ctx context.Context, actor auth.Actor, target uuid.UUID) error {
	m, err := s.adminMembership(ctx, actor, "remove members")
	if err != nil {
		return err
	}
	if target == actor.UserID {
		return apperr.Validation("use leave to remove yourself")
	}
	tm, err := s.households.GetMember(ctx, m.HouseholdID, target)
	if err != nil {
		return s.persistence("get member", err)
	}
	if tm == nil {
		return apperr.NotFound("member not found")
	}
	if err := s.checkSoleAdmin(ctx, tm); err != nil {
		return err
	}
	if err := s.households.RemoveMember(ctx, m.HouseholdID, target); err != nil {
		return s.persistence("remove member", err)
	}
	s.dropDevices(ctx, target)
	s.logger.Info("member removed", "household_id", m.HouseholdID, "user_id", target, "by", actor.UserID)
	return nil
}

// dropDevices forgets the push subscriptions of someone who no longer
// belongs to a household.
func (s *Service) dropDevices(ctx context.Context, userID uuid.UUID) {
	if err := s.push.DeleteByUser(ctx, userID); err != nil {
		s.logger.Warn("delete push subscriptions", "user_id", userID, "error", err)
	}
}

// Promote makes target an admin of the actor's household.
func (s *Service) Promote(ctx context.Context, actor auth.Actor, target uuid.UUID) (*model.HouseholdMember, error) {
	m, err := s.adminMembership(ctx, actor, "promote members")
	if err != nil {
		return nil, err
	}
	tm, err := s.households.GetMember(ctx, m.HouseholdID, target)
	if err != nil {
		return nil, s.persistence("get member", err)
	}
	if tm == nil {
		return nil, apperr.NotFound("member not found")
	}
	if tm.Role == model.RoleAdmin {
		return nil, apperr.AlreadyAdmin()
	}
	promoted, err := s.households.UpdateMemberRole(ctx, m.HouseholdID, target, model.RoleAdmin)
	if err != nil {
		return nil, s.persistence("promote member", err)
	}
	return promoted, nil
}

// Switch moves the actor into the household identified by code. Leaving the
// old household and joining the new one happen in one transaction.
func (s *Service) Switch(ctx context.Context, actor auth.Actor, code string) (*model.Household, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthenticated()
	}
	target, err := s.resolveCode(ctx, code)
	if err != nil {
		return nil, err
	}

	current, err := s.households.GetMembershipForUser(ctx, actor.UserID)
	if err != nil {
		return nil, s.persistence("load membership", err)
	}
	if current == nil {
		return s.Join(ctx, actor, code)
	}
	if current.HouseholdID == target.ID {
		return nil, apperr.AlreadyMember("you are already a member of this household")
	}
	if err := s.checkSoleAdmin(ctx, current); err != nil {
		return nil, err
	}

	if err := s.households.SwitchMembership(ctx, actor.UserID, current.HouseholdID, target.ID); err != nil {
		return nil, s.persistence("switch household", err)
	}
	if err := s.push.ReassignHousehold(ctx, actor.UserID, target.ID); err != nil {
		s.logger.Warn("reassign push subscriptions", "user_id", actor.UserID, "error", err)
	}
	s.logger.Info("member switched", "from", current.HouseholdID, "to", target.ID, "user_id", actor.UserID)
	return target, nil
}

// DeleteAccount removes the actor's user record and everything that cascades from it.
func (s *Service) DeleteAccount(ctx context.Context, actor auth.Actor) error {
	if !actor.Authenticated() {
		return apperr.Unauthenticated()
	}
	m, err := s.households.GetMembershipForUser(ctx, actor.UserID)
	if err != nil {
		return s.persistence("load membership", err)
	}
	if m != nil {
		if err := s.checkSoleAdmin(ctx, m); err != nil {
			return err
		}
	}
	if err := s.users.Delete(ctx, actor.UserID); err != nil {
		return s.persistence("delete account", err)
	}
	s.logger.Info("account deleted", "user_id", actor.UserID)
	return nil
}

// RegenerateInviteCode replaces the household's code, invalidating the old one.
func (s *Service) RegenerateInviteCode(ctx context.Context, actor auth.Actor) (string, error) {
	m, err := s.adminMembership(ctx, actor, "regenerate the invite code")
	if err != nil {
		return "", err
	}
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := NewInviteCode()
		if err != nil {
			return "", s.persistence("generate invite code", err)
		}
		err = s.households.UpdateInviteCode(ctx, m.HouseholdID, code)
		if store.IsUniqueViolation(err) {
			continue
		}
		if err != nil {
			return "", s.persistence("update invite code", err)
		}
		return code, nil
	}
	return "", s.persistence("update invite code", errors.New("no free invite code"))
}

// UpdateBudget sets the monthly budget; nil clears it.
func (s *Service) UpdateBudget(ctx context.Context, actor auth.Actor, budget *decimal.Decimal) (*model.Household, error) {
	m, err := s.adminMembership(ctx, actor, "change the budget")
	if err != nil {
		return nil, err
	}
	var nd decimal.NullDecimal
	if budget != nil {
		if budget.IsNegative() {
			return nil, apperr.Validation("budget cannot be negative")
		}
		nd = decimal.NewNullDecimal(*budget)
	}
	h, err := s.households.UpdateBudget(ctx, m.HouseholdID, nd)
	if err != nil {
		return nil, s.persistence("update budget", err)
	}
	return h, nil
}

type InviteInput struct {
	Email string `json:"email" validate:"required,email"`
}

// InviteByEmail mails the household's invite code to someone.
func (s *Service) InviteByEmail(ctx context.Context, actor auth.Actor, in InviteInput) error {
	m, err := s.adminMembership(ctx, actor, "send invitations")
	if err != nil {
		return err
	}
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in); err != nil {
		return err
	}
	if s.mailer == nil || !s.mailer.Configured() {
		return apperr.Validation("email delivery is not configured")
	}
	h, err := s.households.GetByID(ctx, m.HouseholdID)
	if err != nil {
		return s.persistence("get household", err)
	}
	if h == nil {
		return apperr.NotFound("household not found")
	}
	if err := s.mailer.SendInviteCode(in.Email, h.InviteCode, h.Name, m.DisplayName()); err != nil {
		return s.persistence("send invite email", fmt.Errorf("to %s: %w", in.Email, err))
	}
	return nil
}
