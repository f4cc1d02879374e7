package bill

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/housy/internal/apperr"
	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/database"
	"github.com/dukerupert/housy/internal/model"
	"github.com/dukerupert/housy/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func setup(t *testing.T) (*Service, auth.Actor, auth.Actor) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := store.NewUserStore(db)
	households := store.NewHouseholdStore(db)
	a, _ := users.Create(ctx, "admin@example.com", nil, "hash")
	b, _ := users.Create(ctx, "member@example.com", nil, "hash")
	h, err := households.Create(ctx, "Casa", "AAAAAA", a.ID)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if _, err := households.AddMember(ctx, h.ID, b.ID, model.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}

	svc := NewService(store.NewBillStore(db), slog.New(slog.NewTextHandler(io.Discard, nil)), time.UTC)
	svc.SetClock(func() time.Time { return time.Date(2026, 4, 8, 12, 0, 0, 0, time.UTC) })
	admin := auth.Actor{UserID: a.ID, HouseholdID: h.ID, Role: model.RoleAdmin}
	member := auth.Actor{UserID: b.ID, HouseholdID: h.ID, Role: model.RoleMember}
	return svc, admin, member
}

func TestCreateBill(t *testing.T) {
	svc, admin, member := setup(t)
	ctx := context.Background()
	amount := decimal.RequireFromString("89.90")
	cat := model.BillCategoryUtilities

	b, err := svc.Create(ctx, admin, CreateInput{Name: "Luce", Amount: &amount, DueDay: 10, Category: &cat})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ReminderDaysBefore != model.DefaultReminderDays {
		t.Errorf("reminder = %d, want default", b.ReminderDaysBefore)
	}
	if !b.Amount.Valid || !b.Amount.Decimal.Equal(amount) {
		t.Errorf("amount = %v", b.Amount)
	}
	if b.Status != model.BillStatusUpcoming {
		t.Errorf("status = %q, want upcoming", b.Status)
	}

	if _, err := svc.Create(ctx, member, CreateInput{Name: "x", DueDay: 1}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member create err = %v", err)
	}
	for _, in := range []CreateInput{
		{Name: "x", DueDay: 0},
		{Name: "x", DueDay: 32},
		{Name: "", DueDay: 3},
	} {
		if _, err := svc.Create(ctx, admin, in); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("create %+v err = %v, want validation", in, err)
		}
	}
	bad := model.BillCategory("taxes")
	if _, err := svc.Create(ctx, admin, CreateInput{Name: "x", DueDay: 3, Category: &bad}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad category err = %v", err)
	}
	neg := decimal.NewFromInt(-5)
	if _, err := svc.Create(ctx, admin, CreateInput{Name: "x", DueDay: 3, Amount: &neg}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("negative amount err = %v", err)
	}
}

func TestMarkPaidAndUpcoming(t *testing.T) {
	svc, admin, member := setup(t)
	ctx := context.Background()
	b, _ := svc.Create(ctx, admin, CreateInput{Name: "Internet", DueDay: 9})
	svc.Create(ctx, admin, CreateInput{Name: "Affitto", DueDay: 1})

	upcoming, err := svc.Upcoming(ctx, member)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].ID != b.ID {
		t.Fatalf("upcoming = %+v", upcoming)
	}

	paid, err := svc.MarkPaid(ctx, member, b.ID, nil)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.Status != model.BillStatusPaid || paid.LastPaidDate == nil || paid.LastPaidDate.Day() != 8 {
		t.Errorf("paid = %+v", paid)
	}
	upcoming, _ = svc.Upcoming(ctx, member)
	if len(upcoming) != 0 {
		t.Errorf("upcoming after payment = %d", len(upcoming))
	}

	all, _ := svc.List(ctx, member)
	statuses := map[string]model.BillStatus{}
	for _, b := range all {
		statuses[b.Name] = b.Status
	}
	if statuses["Affitto"] != model.BillStatusOverdue || statuses["Internet"] != model.BillStatusPaid {
		t.Errorf("statuses = %v", statuses)
	}

	if _, err := svc.MarkPaid(ctx, member, uuid.New(), nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing bill err = %v", err)
	}
}

func TestUpdateAndDeleteBill(t *testing.T) {
	svc, admin, member := setup(t)
	ctx := context.Background()
	amount := decimal.NewFromInt(30)
	b, _ := svc.Create(ctx, admin, CreateInput{Name: "Netflix", DueDay: 20, Amount: &amount})

	due := 15
	inactive := false
	got, err := svc.Update(ctx, admin, b.ID, UpdateInput{DueDay: &due, ClearAmount: true, IsActive: &inactive})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.DueDay != 15 || got.Amount.Valid || got.IsActive {
		t.Errorf("bill = %+v", got)
	}
	if _, err := svc.Update(ctx, member, b.ID, UpdateInput{DueDay: &due}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member update err = %v", err)
	}

	if err := svc.Delete(ctx, member, b.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member delete err = %v", err)
	}
	if err := svc.Delete(ctx, admin, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, admin, b.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}
