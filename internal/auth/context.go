package auth

import (
	"context"

	"github.com/dukerupert/housy/internal/model"
	"github.com/google/uuid"
)

type contextKey struct{}

// Actor is the authenticated caller passed explicitly to every service call.
// HouseholdID is uuid.Nil when the user has not joined a household yet.
type Actor struct {
	UserID      uuid.UUID
	HouseholdID uuid.UUID
	Role        model.Role
	SessionID   uuid.UUID
}

func (a Actor) Authenticated() bool {
	return a.UserID != uuid.Nil
}

func (a Actor) HasHousehold() bool {
	return a.HouseholdID != uuid.Nil
}

func (a Actor) IsAdmin() bool {
	return a.HasHousehold() && a.Role == model.RoleAdmin
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(contextKey{}).(Actor)
	return a, ok
}

// ActorFrom returns the actor in ctx or the zero (unauthenticated) actor.
func ActorFrom(ctx context.Context) Actor {
	a, _ := FromContext(ctx)
	return a
}
