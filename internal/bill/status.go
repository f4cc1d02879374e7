// Package bill evaluates recurring bill status and manages bills.
package bill

import (
	"time"

	"github.com/dukerupert/housy/internal/model"
)

// Status classifies b relative to now. A payment in the current calendar
// month wins; otherwise the day of month is compared to the due day. A due
// day past the end of a short month is never overdue in that month.
func Status(b model.RecurringBill, now time.Time) model.BillStatus {
	if b.LastPaidDate != nil {
		paid := *b.LastPaidDate
		if paid.Year() == now.Year() && paid.Month() == now.Month() {
			return model.BillStatusPaid
		}
	}
	day := now.Day()
	if day > b.DueDay {
		return model.BillStatusOverdue
	}
	if b.DueDay-day <= reminderDays(b) {
		return model.BillStatusUpcoming
	}
	return model.BillStatusNormal
}

// reminderDays treats zero as unset.
func reminderDays(b model.RecurringBill) int {
	if b.ReminderDaysBefore == 0 {
		return model.DefaultReminderDays
	}
	return b.ReminderDaysBefore
}

// WithStatus evaluates every bill at now.
func WithStatus(bills []model.RecurringBill, now time.Time) []model.BillWithStatus {
	out := make([]model.BillWithStatus, len(bills))
	for i, b := range bills {
		out[i] = model.BillWithStatus{RecurringBill: b, Status: Status(b, now)}
	}
	return out
}

// Counts tallies active bills for the dashboard. NextBill is the first
// upcoming bill in due-day order.
type Counts struct {
	UpcomingCount int
	OverdueCount  int
	NextBill      *model.BillWithStatus
}

func Count(bills []model.RecurringBill, now time.Time) Counts {
	var c Counts
	for _, b := range WithStatus(bills, now) {
		if !b.IsActive {
			continue
		}
		switch b.Status {
		case model.BillStatusOverdue:
			c.OverdueCount++
		case model.BillStatusUpcoming:
			c.UpcomingCount++
			if c.NextBill == nil {
				next := b
				c.NextBill = &next
			}
		}
	}
	return c
}
