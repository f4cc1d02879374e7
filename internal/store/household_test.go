package store

import (
	"context"
	"testing"

	"github.com/dukerupert/housy/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestHouseholdCreateAddsAdminAndCategories(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)
	ctx := context.Background()
	u := createTestUser(t, db, "admin@example.com")

	h, err := hs.Create(ctx, "Casa Rossi", "ABC123", u.ID)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if h.InviteCode != "ABC123" || h.CreatedBy != u.ID {
		t.Errorf("household = %+v", h)
	}
	if h.MonthlyBudget.Valid {
		t.Error("expected no budget on a new household")
	}

	m, err := hs.GetMembershipForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get membership: %v", err)
	}
	if m == nil || m.HouseholdID != h.ID || m.Role != model.RoleAdmin {
		t.Fatalf("membership = %+v, want admin of %s", m, h.ID)
	}

	cats, err := NewCategoryStore(db).List(ctx, h.ID)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != len(DefaultExpenseCategories) {
		t.Errorf("categories = %d, want %d", len(cats), len(DefaultExpenseCategories))
	}
}

func TestHouseholdGetByInviteCode(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)
	ctx := context.Background()
	h := createTestHousehold(t, db, "ZZ9PLZ", createTestUser(t, db, "a@example.com"))

	got, err := hs.GetByInviteCode(ctx, "ZZ9PLZ")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if got == nil || got.ID != h.ID {
		t.Fatalf("got %+v, want %s", got, h.ID)
	}

	missing, err := hs.GetByInviteCode(ctx, "NOPE00")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown code")
	}
}

func TestHouseholdMembersAndCounts(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)
	ctx := context.Background()
	admin := createTestUser(t, db, "admin@example.com")
	member := createTestUser(t, db, "member@example.com")
	h := createTestHousehold(t, db, "AAAAAA", admin)

	if _, err := hs.AddMember(ctx, h.ID, member.ID, model.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}

	members, err := hs.ListMembers(ctx, h.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 || members[0].UserID != admin.ID {
		t.Fatalf("members = %+v, want admin first", members)
	}

	admins := model.RoleAdmin
	n, err := hs.CountOthers(ctx, h.ID, admin.ID, &admins)
	if err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if n != 0 {
		t.Errorf("other admins = %d, want 0", n)
	}
	n, _ = hs.CountOthers(ctx, h.ID, admin.ID, nil)
	if n != 1 {
		t.Errorf("other members = %d, want 1", n)
	}

	promoted, err := hs.UpdateMemberRole(ctx, h.ID, member.ID, model.RoleAdmin)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if promoted.Role != model.RoleAdmin {
		t.Errorf("role = %q, want admin", promoted.Role)
	}
}

func TestHouseholdOneMembershipPerUser(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)
	ctx := context.Background()
	a := createTestUser(t, db, "a@example.com")
	b := createTestUser(t, db, "b@example.com")
	createTestHousehold(t, db, "AAAAAA", a)
	h2 := createTestHousehold(t, db, "BBBBBB", b)

	if _, err := hs.AddMember(ctx, h2.ID, a.ID, model.RoleMember); !IsUniqueViolation(err) {
		t.Errorf("err = %v, want unique violation", err)
	}
}

func TestHouseholdSwitchMembership(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)
	ctx := context.Background()
	a := createTestUser(t, db, "a@example.com")
	b := createTestUser(t, db, "b@example.com")
	joiner := createTestUser(t, db, "c@example.com")
	h1 := createTestHousehold(t, db, "AAAAAA", a)
	h2 := createTestHousehold(t, db, "BBBBBB", b)
	hs.AddMember(ctx, h1.ID, joiner.ID, model.RoleMember)

	if err := hs.SwitchMembership(ctx, joiner.ID, h1.ID, h2.ID); err != nil {
		t.Fatalf("switch: %v", err)
	}
	m, _ := hs.GetMembershipForUser(ctx, joiner.ID)
	if m == nil || m.HouseholdID != h2.ID || m.Role != model.RoleMember {
		t.Fatalf("membership = %+v, want member of %s", m, h2.ID)
	}
}

func TestHouseholdSwitchMembershipRollsBack(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)
	ctx := context.Background()
	a := createTestUser(t, db, "a@example.com")
	joiner := createTestUser(t, db, "c@example.com")
	h1 := createTestHousehold(t, db, "AAAAAA", a)
	hs.AddMember(ctx, h1.ID, joiner.ID, model.RoleMember)

	// Unknown target household violates the foreign key, so the leave must roll back.
	if err := hs.SwitchMembership(ctx, joiner.ID, h1.ID, uuid.New()); err == nil {
		t.Fatal("expected error switching to a missing household")
	}
	m, _ := hs.GetMembershipForUser(ctx, joiner.ID)
	if m == nil || m.HouseholdID != h1.ID {
		t.Fatalf("membership = %+v, want unchanged", m)
	}
}

func TestHouseholdUpdateBudget(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)
	ctx := context.Background()
	h := createTestHousehold(t, db, "AAAAAA", createTestUser(t, db, "a@example.com"))

	updated, err := hs.UpdateBudget(ctx, h.ID, decimal.NewNullDecimal(decimal.RequireFromString("1250.50")))
	if err != nil {
		t.Fatalf("update budget: %v", err)
	}
	if !updated.MonthlyBudget.Valid || !updated.MonthlyBudget.Decimal.Equal(decimal.RequireFromString("1250.5")) {
		t.Errorf("budget = %v, want 1250.5", updated.MonthlyBudget)
	}

	if err := hs.UpdateInviteCode(ctx, h.ID, "NEW123"); err != nil {
		t.Fatalf("update code: %v", err)
	}
	got, _ := hs.GetByID(ctx, h.ID)
	if got.InviteCode != "NEW123" {
		t.Errorf("invite code = %q, want NEW123", got.InviteCode)
	}
}
