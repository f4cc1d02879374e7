// Package waste manages waste-collection calendars.
package waste

import (
	"time"

	"github.com/dukerupert/housy/internal/model"
)

var dayLabels = [7]string{"Domenica", "Lunedì", "Martedì", "Mercoledì", "Giovedì", "Venerdì", "Sabato"}

// DayLabel names a weekday, 0 being Sunday.
func DayLabel(day int) string {
	if day < 0 || day > 6 {
		return ""
	}
	return dayLabels[day]
}

// NextCollection finds the first active collection day strictly after
// today, wrapping to next week's earliest day. Every active schedule on
// that day is returned. Nil means nothing is scheduled.
func NextCollection(schedules []model.WasteSchedule, today time.Weekday) *model.NextCollection {
	next, first := -1, -1
	for _, s := range schedules {
		if !s.IsActive {
			continue
		}
		if first < 0 || s.DayOfWeek < first {
			first = s.DayOfWeek
		}
		if s.DayOfWeek > int(today) && (next < 0 || s.DayOfWeek < next) {
			next = s.DayOfWeek
		}
	}
	if next < 0 {
		next = first
	}
	if next < 0 {
		return nil
	}

	nc := &model.NextCollection{DayOfWeek: next, DayLabel: DayLabel(next)}
	for _, s := range schedules {
		if s.IsActive && s.DayOfWeek == next {
			nc.Schedules = append(nc.Schedules, s)
		}
	}
	return nc
}

// DueTomorrow returns active schedules collected the day after today.
func DueTomorrow(schedules []model.WasteSchedule, today time.Weekday) []model.WasteSchedule {
	tomorrow := (int(today) + 1) % 7
	var out []model.WasteSchedule
	for _, s := range schedules {
		if s.IsActive && s.DayOfWeek == tomorrow {
			out = append(out, s)
		}
	}
	return out
}
