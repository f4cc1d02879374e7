package auth

import (
	"context"
	"testing"

	"github.com/dukerupert/housy/internal/model"
	"github.com/google/uuid"
)

func TestWithActorAndFromContext(t *testing.T) {
	a := Actor{
		UserID:      uuid.New(),
		HouseholdID: uuid.New(),
		Role:        model.RoleAdmin,
		SessionID:   uuid.New(),
	}

	ctx := WithActor(context.Background(), a)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected Actor in context")
	}
	if got != a {
		t.Errorf("Actor = %+v, want %+v", got, a)
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected false for missing Actor")
	}
	if ActorFrom(context.Background()).Authenticated() {
		t.Error("expected zero actor to be unauthenticated")
	}
}

func TestIsAdmin(t *testing.T) {
	hid := uuid.New()
	if !(Actor{UserID: uuid.New(), HouseholdID: hid, Role: model.RoleAdmin}).IsAdmin() {
		t.Error("expected IsAdmin = true for admin role")
	}
	if (Actor{UserID: uuid.New(), HouseholdID: hid, Role: model.RoleMember}).IsAdmin() {
		t.Error("expected IsAdmin = false for member role")
	}
	if (Actor{UserID: uuid.New(), Role: model.RoleAdmin}).IsAdmin() {
		t.Error("expected IsAdmin = false without a household")
	}
}

func TestHasHousehold(t *testing.T) {
	if (Actor{UserID: uuid.New()}).HasHousehold() {
		t.Error("expected no household")
	}
	if !(Actor{UserID: uuid.New(), HouseholdID: uuid.New()}).HasHousehold() {
		t.Error("expected household")
	}
}
