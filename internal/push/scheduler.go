package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/housy/internal/bill"
	"github.com/dukerupert/housy/internal/chore"
	"github.com/dukerupert/housy/internal/model"
	"github.com/dukerupert/housy/internal/store"
	"github.com/dukerupert/housy/internal/waste"
	"github.com/google/uuid"
)

const (
	// Morning reminders go out from this hour onward, once per day.
	reminderHour  = 8
	sentRetention = 60 * 24 * time.Hour
)

// Sender delivers a payload to one subscription.
type Sender interface {
	Send(sub *model.PushSubscription, payload Payload) error
}

// Scheduler periodically checks for reminders to send.
type Scheduler struct {
	mu       sync.RWMutex
	sender   Sender
	push     *store.PushStore
	bills    *store.BillStore
	waste    *store.WasteStore
	chores   *store.ChoreStore
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewScheduler creates a reminder scheduler that evaluates dates in loc.
func NewScheduler(sender Sender, ps *store.PushStore, bs *store.BillStore, ws *store.WasteStore, cs *store.ChoreStore, logger *slog.Logger, loc *time.Location) *Scheduler {
	return &Scheduler{
		sender:   sender,
		push:     ps,
		bills:    bs,
		waste:    ws,
		chores:   cs,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
		interval: 60 * time.Second,
	}
}

func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// SetInterval changes how often Start checks for due reminders.
// It must be called before Start.
func (s *Scheduler) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Tick runs one pass over every household with a registered device.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now().In(s.loc)

	householdIDs, err := s.push.ListHouseholdIDs(ctx)
	if err != nil {
		s.logger.Error("push scheduler: list households", "error", err)
		return
	}

	for _, hid := range householdIDs {
		s.checkBills(ctx, hid, now)
		s.checkWaste(ctx, hid, now)
		s.checkChores(ctx, hid, now)
	}

	if err := s.push.CleanupSent(ctx, now.Add(-sentRetention)); err != nil {
		s.logger.Warn("push scheduler: cleanup sent log", "error", err)
	}
}

func (s *Scheduler) checkBills(ctx context.Context, householdID uuid.UUID, now time.Time) {
	if now.Hour() < reminderHour {
		return
	}
	bills, err := s.bills.List(ctx, householdID, true)
	if err != nil {
		s.logger.Error("push scheduler: list bills", "household_id", householdID, "error", err)
		return
	}

	for _, b := range bills {
		if bill.Status(b, now) != model.BillStatusUpcoming {
			continue
		}
		refID := fmt.Sprintf("bill-%s-%s", b.ID, now.Format("2006-01"))
		body := fmt.Sprintf("%s scade il giorno %d", b.Name, b.DueDay)
		if b.Amount.Valid {
			body = fmt.Sprintf("%s (€%s) scade il giorno %d", b.Name, b.Amount.Decimal.StringFixed(2), b.DueDay)
		}
		s.notifyOnce(ctx, householdID, model.NotifTypeBillDue, refID, Payload{
			Title: "Bolletta in scadenza",
			Body:  body,
			URL:   "/bills",
			Tag:   "bill-" + b.ID.String(),
		}, nil)
	}
}

func (s *Scheduler) checkWaste(ctx context.Context, householdID uuid.UUID, now time.Time) {
	schedules, err := s.waste.List(ctx, householdID, true)
	if err != nil {
		s.logger.Error("push scheduler: list waste schedules", "household_id", householdID, "error", err)
		return
	}

	clock := now.Format("15:04")
	for _, w := range waste.DueTomorrow(schedules, now.Weekday()) {
		// HH:MM strings compare in time order.
		if clock < w.ReminderTime {
			continue
		}
		body := fmt.Sprintf("Domani si raccoglie: %s", w.WasteType.Label())
		if w.DeadlineTime != nil {
			body += fmt.Sprintf(" (esporre entro le %s)", *w.DeadlineTime)
		}
		s.notifyOnce(ctx, householdID, model.NotifTypeWasteDue, fmt.Sprintf("waste-%s-%s", w.ID, now.Format("2006-01-02")), Payload{
			Title: "Raccolta rifiuti",
			Body:  body,
			URL:   "/waste",
			Tag:   "waste-" + w.ID.String(),
		}, nil)
	}
}

func (s *Scheduler) checkChores(ctx context.Context, householdID uuid.UUID, now time.Time) {
	if now.Hour() < reminderHour {
		return
	}
	chores, err := s.chores.List(ctx, householdID)
	if err != nil {
		s.logger.Error("push scheduler: list chores", "household_id", householdID, "error", err)
		return
	}

	for _, ch := range chores {
		if ch.CurrentAssignee == nil || !chore.IsDueToday(ch, now) {
			continue
		}
		assignee := *ch.CurrentAssignee
		s.notifyOnce(ctx, householdID, model.NotifTypeChoreDue, fmt.Sprintf("chore-%s-%s", ch.ID, now.Format("2006-01-02")), Payload{
			Title: "Faccenda di oggi",
			Body:  fmt.Sprintf("Tocca a te: %s", ch.Name),
			URL:   "/chores",
			Tag:   "chore-" + ch.ID.String(),
		}, func(sub model.PushSubscription) bool { return sub.UserID == assignee })
	}
}

// notifyOnce sends payload unless refID was already recorded for this household.
func (s *Scheduler) notifyOnce(ctx context.Context, householdID uuid.UUID, notifType, refID string, payload Payload, include func(model.PushSubscription) bool) {
	sent, err := s.push.WasSent(ctx, householdID, notifType, refID)
	if err != nil {
		s.logger.Error("push scheduler: check sent", "error", err)
		return
	}
	if sent {
		return
	}

	s.broadcast(ctx, householdID, notifType, payload, include)

	if err := s.push.RecordSent(ctx, householdID, notifType, refID); err != nil {
		s.logger.Error("push scheduler: record sent", "error", err)
	}
}

// broadcast sends to every opted-in device in the household accepted by include.
func (s *Scheduler) broadcast(ctx context.Context, householdID uuid.UUID, notifType string, payload Payload, include func(model.PushSubscription) bool) {
	subs, err := s.push.ListByHousehold(ctx, householdID)
	if err != nil {
		s.logger.Error("push: list subscriptions", "household_id", householdID, "error", err)
		return
	}

	for _, sub := range subs {
		if include != nil && !include(sub) {
			continue
		}
		enabled, err := s.push.IsPreferenceEnabled(ctx, sub.UserID, householdID, notifType)
		if err != nil || !enabled {
			continue
		}

		if err := s.sender.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if err := s.push.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
					s.logger.Warn("push: drop expired subscription", "error", err)
				}
				continue
			}
			s.logger.Warn("push: send", "type", notifType, "user_id", sub.UserID, "error", err)
		}
	}
}

// NotifyChoreCompleted tells the rest of the household that a chore was done.
// Called from the chore handler, not from the scheduler loop.
func (s *Scheduler) NotifyChoreCompleted(ctx context.Context, householdID, actorID uuid.UUID, actorName, choreName string, points int) {
	s.broadcast(ctx, householdID, model.NotifTypeChoreDone, Payload{
		Title: "Faccenda completata",
		Body:  fmt.Sprintf("%s ha completato %s (+%d punti)", actorName, choreName, points),
		URL:   "/chores",
		Tag:   "chore-done",
	}, func(sub model.PushSubscription) bool { return sub.UserID != actorID })
}
