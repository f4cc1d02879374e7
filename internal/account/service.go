// Package account handles registration, login sessions and the caller's profile.
package account

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/housy/internal/apperr"
	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/model"
	"github.com/dukerupert/housy/internal/store"
	"github.com/dukerupert/housy/internal/validate"
	"github.com/google/uuid"
)

// dummyHash is compared against when the email is unknown so both paths cost a bcrypt round.
var dummyHash = sync.OnceValue(func() string {
	h, _ := auth.HashPassword("housy-dummy-password")
	return h
})

type Service struct {
	users    *store.UserStore
	sessions *store.SessionStore
	ttl      time.Duration
	logger   *slog.Logger
}

func NewService(us *store.UserStore, ss *store.SessionStore, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{users: us, sessions: ss, ttl: ttl, logger: logger}
}

func (s *Service) persistence(op string, err error) error {
	s.logger.Error(op, "error", err)
	return apperr.Persistence(op, err)
}

// Login is the result of a successful register or login.
type Login struct {
	User    *model.User
	Session *model.Session
}

type RegisterInput struct {
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required"`
	FullName *string `json:"full_name" validate:"omitnil,max=100"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Login, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	in.FullName = trimmed(in.FullName)

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, s.persistence("lookup user", err)
	}
	if existing != nil {
		return nil, apperr.Validation("an account with this email already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, s.persistence("hash password", err)
	}
	u, err := s.users.Create(ctx, in.Email, in.FullName, hash)
	if store.IsUniqueViolation(err) {
		return nil, apperr.Validation("an account with this email already exists")
	}
	if err != nil {
		return nil, s.persistence("create user", err)
	}
	s.logger.Info("user registered", "user_id", u.ID)
	return s.startSession(ctx, u)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*Login, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, s.persistence("lookup user", err)
	}
	if u == nil {
		auth.CheckPassword(dummyHash(), in.Password)
		return nil, apperr.InvalidCredentials()
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return nil, apperr.InvalidCredentials()
	}
	return s.startSession(ctx, u)
}

func (s *Service) startSession(ctx context.Context, u *model.User) (*Login, error) {
	token, err := auth.NewSessionToken()
	if err != nil {
		return nil, s.persistence("generate session token", err)
	}
	sess, err := s.sessions.Create(ctx, u.ID, token, s.ttl)
	if err != nil {
		return nil, s.persistence("create session", err)
	}
	return &Login{User: u, Session: sess}, nil
}

// Logout ends the caller's current session. It is a no-op without one.
func (s *Service) Logout(ctx context.Context, actor auth.Actor) error {
	if actor.SessionID == uuid.Nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, actor.SessionID); err != nil {
		return s.persistence("delete session", err)
	}
	return nil
}

func (s *Service) Profile(ctx context.Context, actor auth.Actor) (*model.User, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthenticated()
	}
	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, s.persistence("get user", err)
	}
	if u == nil {
		return nil, apperr.Unauthenticated()
	}
	return u, nil
}

type ProfileInput struct {
	FullName *string `json:"full_name" validate:"omitnil,max=100"`
}

// UpdateProfile sets the display name; an empty name clears it.
func (s *Service) UpdateProfile(ctx context.Context, actor auth.Actor, in ProfileInput) (*model.User, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthenticated()
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.users.UpdateFullName(ctx, actor.UserID, trimmed(in.FullName))
	if err != nil {
		return nil, s.persistence("update profile", err)
	}
	if u == nil {
		return nil, apperr.Unauthenticated()
	}
	return u, nil
}

type PasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// ChangePassword verifies the current password, stores the new hash and
// signs out every other session.
func (s *Service) ChangePassword(ctx context.Context, actor auth.Actor, in PasswordInput) error {
	u, err := s.Profile(ctx, actor)
	if err != nil {
		return err
	}
	if err := validate.Struct(in); err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, in.CurrentPassword) {
		return apperr.Validation("current password is incorrect")
	}
	if err := auth.ValidatePassword(in.NewPassword); err != nil {
		return apperr.Validation("%s", err.Error())
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return s.persistence("hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return s.persistence("update password", err)
	}
	if err := s.sessions.DeleteForUserExcept(ctx, u.ID, actor.SessionID); err != nil {
		return s.persistence("revoke sessions", err)
	}
	return nil
}

// PurgeExpiredSessions deletes sessions past their expiry.
func (s *Service) PurgeExpiredSessions(ctx context.Context) {
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.logger.Warn("purge expired sessions", "error", err)
		return
	}
	if n > 0 {
		s.logger.Debug("purged expired sessions", "count", n)
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
