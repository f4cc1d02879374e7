package bill

import (
	"testing"
	"time"

	"github.com/dukerupert/housy/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestStatusExamples(t *testing.T) {
	b := model.RecurringBill{DueDay: 10, ReminderDaysBefore: 3, IsActive: true}
	tests := []struct {
		today int
		want  model.BillStatus
	}{
		{8, model.BillStatusUpcoming},
		{10, model.BillStatusUpcoming},
		{7, model.BillStatusUpcoming},
		{12, model.BillStatusOverdue},
		{5, model.BillStatusNormal},
	}
	for _, tt := range tests {
		if got := Status(b, day(2026, 4, tt.today)); got != tt.want {
			t.Errorf("day %d: status = %q, want %q", tt.today, got, tt.want)
		}
	}
}

func TestStatusPaidDominates(t *testing.T) {
	paid := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	b := model.RecurringBill{DueDay: 1, ReminderDaysBefore: 3, LastPaidDate: &paid}
	now := day(2026, 4, 20)
	if got := Status(b, now); got != model.BillStatusPaid {
		t.Errorf("status = %q, want paid", got)
	}
	if Status(b, now) != Status(b, now) {
		t.Error("status is not stable for the same inputs")
	}

	lastYear := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	b.LastPaidDate = &lastYear
	if got := Status(b, now); got != model.BillStatusOverdue {
		t.Errorf("same month last year: status = %q, want overdue", got)
	}
}

func TestStatusZeroReminderUsesDefault(t *testing.T) {
	b := model.RecurringBill{DueDay: 20}
	if got := Status(b, day(2026, 4, 17)); got != model.BillStatusUpcoming {
		t.Errorf("status = %q, want upcoming with default reminder", got)
	}
	if got := Status(b, day(2026, 4, 16)); got != model.BillStatusNormal {
		t.Errorf("status = %q, want normal", got)
	}
}

func TestStatusDueDayBeyondShortMonth(t *testing.T) {
	b := model.RecurringBill{DueDay: 31, ReminderDaysBefore: 3}
	if got := Status(b, day(2026, 2, 28)); got != model.BillStatusUpcoming {
		t.Errorf("Feb 28 status = %q, want upcoming", got)
	}
	if got := Status(b, day(2026, 3, 1)); got != model.BillStatusNormal {
		t.Errorf("Mar 1 status = %q, want normal", got)
	}
}

func TestCount(t *testing.T) {
	now := day(2026, 4, 8)
	bills := []model.RecurringBill{
		{Name: "rent", DueDay: 5, IsActive: true},
		{Name: "power", DueDay: 9, IsActive: true},
		{Name: "water", DueDay: 10, IsActive: true},
		{Name: "gym", DueDay: 2, IsActive: false},
		{Name: "phone", DueDay: 25, IsActive: true},
	}
	c := Count(bills, now)
	if c.OverdueCount != 1 || c.UpcomingCount != 2 {
		t.Errorf("counts = %+v", c)
	}
	if c.NextBill == nil || c.NextBill.Name != "power" {
		t.Errorf("next bill = %+v, want power", c.NextBill)
	}
}
