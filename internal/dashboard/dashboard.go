// Package dashboard assembles the household overview from the other services.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/housy/internal/apperr"
	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/bill"
	"github.com/dukerupert/housy/internal/chore"
	"github.com/dukerupert/housy/internal/expense"
	"github.com/dukerupert/housy/internal/model"
	"github.com/dukerupert/housy/internal/store"
	"github.com/dukerupert/housy/internal/waste"
	"golang.org/x/sync/errgroup"
)

const recentExpenses = 4

type Service struct {
	households *store.HouseholdStore
	expenses   *expense.Service
	chores     *chore.Service
	bills      *bill.Service
	waste      *waste.Service
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(hs *store.HouseholdStore, es *expense.Service, cs *chore.Service, bs *bill.Service, ws *waste.Service, logger *slog.Logger, loc *time.Location) *Service {
	return &Service{
		households: hs,
		expenses:   es,
		chores:     cs,
		bills:      bs,
		waste:      ws,
		logger:     logger,
		now:        func() time.Time { return time.Now().In(loc) },
	}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Summary reads each section concurrently. Any failing read fails the whole summary.
func (s *Service) Summary(ctx context.Context, actor auth.Actor) (*model.DashboardSummary, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthenticated()
	}
	if !actor.HasHousehold() {
		return nil, apperr.NotFound("you are not a member of any household")
	}
	now := s.now()
	var sum model.DashboardSummary

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sum.Expenses, err = s.expenseSection(ctx, actor, now)
		return err
	})
	g.Go(func() error {
		var err error
		sum.Chores, err = s.choreSection(ctx, actor, now)
		return err
	})
	g.Go(func() error {
		next, err := s.waste.NextFor(ctx, actor.HouseholdID, now)
		if err != nil {
			return err
		}
		sum.Waste = model.DashboardWaste{NextCollection: next}
		return nil
	})
	g.Go(func() error {
		active, err := s.bills.Active(ctx, actor.HouseholdID)
		if err != nil {
			return err
		}
		c := bill.Count(active, now)
		sum.Bills = model.DashboardBills{
			UpcomingCount: c.UpcomingCount,
			OverdueCount:  c.OverdueCount,
			NextBill:      c.NextBill,
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &sum, nil
}

func (s *Service) expenseSection(ctx context.Context, actor auth.Actor, now time.Time) (model.DashboardExpenses, error) {
	var out model.DashboardExpenses
	h, err := s.households.GetByID(ctx, actor.HouseholdID)
	if err != nil {
		s.logger.Error("get household", "error", err)
		return out, apperr.Persistence("get household", err)
	}
	if h == nil {
		return out, apperr.NotFound("household not found")
	}
	month, err := s.expenses.Month(ctx, actor.HouseholdID, now)
	if err != nil {
		return out, err
	}

	sum := expense.Summarize(month)
	out = model.DashboardExpenses{
		TotalMonth:   sum.Total,
		ExpenseCount: sum.Count,
		AvgExpense:   sum.Average,
		Budget:       h.MonthlyBudget,
		ByCategory:   sum.ByCategory,
		Recent:       month[:min(recentExpenses, len(month))],
	}
	if out.Recent == nil {
		out.Recent = []model.Expense{}
	}
	return out, nil
}

func (s *Service) choreSection(ctx context.Context, actor auth.Actor, now time.Time) (model.DashboardChores, error) {
	var out model.DashboardChores
	chores, err := s.chores.List(ctx, actor)
	if err != nil {
		return out, err
	}
	points, err := s.chores.MonthPoints(ctx, actor, now)
	if err != nil {
		return out, err
	}
	c := chore.DueCounts(chores, actor.UserID, now)
	return model.DashboardChores{
		TodayCount:   c.TodayCount,
		OverdueCount: c.OverdueCount,
		MyPoints:     points,
		NextChore:    c.NextChore,
	}, nil
}
