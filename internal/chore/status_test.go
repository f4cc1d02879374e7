package chore

import (
	"testing"
	"time"

	"github.com/dukerupert/housy/internal/model"
	"github.com/google/uuid"
)

func TestDueCounts(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, loc)
	me, other := uuid.New(), uuid.New()
	at := func(d, h int) *time.Time {
		t := time.Date(2026, 3, d, h, 0, 0, 0, loc)
		return &t
	}

	chores := []model.Chore{
		{Name: "overdue", NextDue: at(9, 20), IsActive: true, CurrentAssignee: &other},
		{Name: "early today", NextDue: at(10, 0), IsActive: true, CurrentAssignee: &me},
		{Name: "late today", NextDue: at(10, 23), IsActive: true, CurrentAssignee: &me},
		{Name: "tomorrow", NextDue: at(11, 0), IsActive: true},
		{Name: "inactive", NextDue: at(1, 0), IsActive: false, CurrentAssignee: &me},
		{Name: "undated", IsActive: true},
	}

	c := DueCounts(chores, me, now)
	if c.OverdueCount != 1 {
		t.Errorf("overdue = %d, want 1", c.OverdueCount)
	}
	if c.TodayCount != 2 {
		t.Errorf("today = %d, want 2", c.TodayCount)
	}
	if c.NextChore == nil || c.NextChore.Name != "early today" {
		t.Errorf("next chore = %+v, want early today", c.NextChore)
	}

	if !IsDueToday(chores[2], now) || IsDueToday(chores[3], now) {
		t.Error("IsDueToday disagrees with DueCounts")
	}
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC))
	if !start.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if end.Day() != 28 || end.Hour() != 23 || end.Month() != time.February {
		t.Errorf("end = %v", end)
	}
}
