package chore

import (
	"time"

	"github.com/dukerupert/housy/internal/model"
	"github.com/google/uuid"
)

// Counts summarizes active chores relative to a day.
type Counts struct {
	TodayCount   int
	OverdueCount int
	// NextChore is the first chore, in list order, assigned to the user.
	NextChore *model.Chore
}

// DueCounts classifies active chores by next_due against the day containing
// now: before the day starts is overdue, within the day is due today.
// chores should be ordered by next_due.
func DueCounts(chores []model.Chore, userID uuid.UUID, now time.Time) Counts {
	var c Counts
	dayStart := startOfDay(now)
	dayEnd := dayStart.AddDate(0, 0, 1)
	for i := range chores {
		ch := chores[i]
		if !ch.IsActive {
			continue
		}
		if ch.NextDue != nil {
			due := ch.NextDue.In(now.Location())
			switch {
			case due.Before(dayStart):
				c.OverdueCount++
			case due.Before(dayEnd):
				c.TodayCount++
			}
		}
		if c.NextChore == nil && ch.CurrentAssignee != nil && *ch.CurrentAssignee == userID {
			c.NextChore = &ch
		}
	}
	return c
}

// IsDueToday reports whether the chore falls due within the day containing now.
func IsDueToday(ch model.Chore, now time.Time) bool {
	if !ch.IsActive || ch.NextDue == nil {
		return false
	}
	dayStart := startOfDay(now)
	due := ch.NextDue.In(now.Location())
	return !due.Before(dayStart) && due.Before(dayStart.AddDate(0, 0, 1))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MonthBounds returns the first and last instants of the month containing t.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}
