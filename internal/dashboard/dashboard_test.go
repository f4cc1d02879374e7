package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/housy/internal/apperr"
	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/bill"
	"github.com/dukerupert/housy/internal/chore"
	"github.com/dukerupert/housy/internal/database"
	"github.com/dukerupert/housy/internal/expense"
	"github.com/dukerupert/housy/internal/model"
	"github.com/dukerupert/housy/internal/store"
	"github.com/dukerupert/housy/internal/waste"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tuesday 10 March 2026.
var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestSummary(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := func() time.Time { return now }

	users := store.NewUserStore(db)
	households := store.NewHouseholdStore(db)
	u, _ := users.Create(ctx, "admin@example.com", nil, "hash")
	h, err := households.Create(ctx, "Casa", "AAAAAA", u.ID)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	budget := decimal.NewFromInt(800)
	households.UpdateBudget(ctx, h.ID, decimal.NewNullDecimal(budget))
	actor := auth.Actor{UserID: u.ID, HouseholdID: h.ID, Role: model.RoleAdmin}

	es := expense.NewService(store.NewExpenseStore(db), store.NewCategoryStore(db), logger, time.UTC)
	cs := chore.NewService(store.NewChoreStore(db), households, logger)
	bs := bill.NewService(store.NewBillStore(db), logger, time.UTC)
	ws := waste.NewService(store.NewWasteStore(db), logger, time.UTC)
	for _, c := range []interface{ SetClock(func() time.Time) }{es, cs, bs, ws} {
		c.SetClock(clock)
	}

	for i, d := range []string{"2026-03-01", "2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05"} {
		if _, err := es.Create(ctx, actor, expense.CreateInput{Amount: decimal.NewFromInt(int64(10 * (i + 1))), Date: d}); err != nil {
			t.Fatalf("create expense: %v", err)
		}
	}
	es.Create(ctx, actor, expense.CreateInput{Amount: decimal.NewFromInt(500), Date: "2026-02-27"})

	// Created a day earlier, so it is due today.
	cs.SetClock(func() time.Time { return now.Add(-24 * time.Hour) })
	c, err := cs.Create(ctx, actor, chore.CreateInput{Name: "Piatti", Frequency: model.FrequencyDaily, Points: 2, RotationOrder: []uuid.UUID{u.ID}})
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
	cs.SetClock(func() time.Time { return now.Add(-23 * time.Hour) })
	other, _ := cs.Create(ctx, actor, chore.CreateInput{Name: "Bagno", Frequency: model.FrequencyDaily, RotationOrder: []uuid.UUID{u.ID}})
	cs.SetClock(clock)
	if _, err := cs.Complete(ctx, actor, other.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	bs.Create(ctx, actor, bill.CreateInput{Name: "Luce", DueDay: 12})
	bs.Create(ctx, actor, bill.CreateInput{Name: "Affitto", DueDay: 5})
	ws.Create(ctx, actor, waste.CreateInput{WasteType: model.WastePaper, DayOfWeek: 5, ReminderTime: "20:00"})

	svc := NewService(households, es, cs, bs, ws, logger, time.UTC)
	svc.SetClock(clock)
	sum, err := svc.Summary(ctx, actor)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if sum.Expenses.ExpenseCount != 5 || !sum.Expenses.TotalMonth.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expenses = %+v", sum.Expenses)
	}
	if !sum.Expenses.AvgExpense.Equal(decimal.NewFromInt(30)) {
		t.Errorf("average = %s", sum.Expenses.AvgExpense)
	}
	if !sum.Expenses.Budget.Valid || !sum.Expenses.Budget.Decimal.Equal(budget) {
		t.Errorf("budget = %v", sum.Expenses.Budget)
	}
	if len(sum.Expenses.Recent) != 4 || sum.Expenses.Recent[0].Date.Day() != 5 {
		t.Errorf("recent = %+v", sum.Expenses.Recent)
	}

	if sum.Chores.TodayCount != 1 || sum.Chores.OverdueCount != 0 {
		t.Errorf("chores = %+v", sum.Chores)
	}
	if sum.Chores.MyPoints != 1 {
		t.Errorf("my points = %d, want 1", sum.Chores.MyPoints)
	}
	if sum.Chores.NextChore == nil || sum.Chores.NextChore.ID != c.ID {
		t.Errorf("next chore = %+v, want %s", sum.Chores.NextChore, c.ID)
	}

	if sum.Waste.NextCollection == nil || sum.Waste.NextCollection.DayLabel != "Venerdì" {
		t.Errorf("waste = %+v", sum.Waste.NextCollection)
	}

	if sum.Bills.UpcomingCount != 1 || sum.Bills.OverdueCount != 1 {
		t.Errorf("bills = %+v", sum.Bills)
	}
	if sum.Bills.NextBill == nil || sum.Bills.NextBill.Name != "Luce" {
		t.Errorf("next bill = %+v", sum.Bills.NextBill)
	}
}

func TestSummaryRequiresHousehold(t *testing.T) {
	svc := &Service{now: func() time.Time { return now }}
	if _, err := svc.Summary(context.Background(), auth.Actor{}); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("err = %v", err)
	}
	if _, err := svc.Summary(context.Background(), auth.Actor{UserID: uuid.New()}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}
