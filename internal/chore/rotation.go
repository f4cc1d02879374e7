package chore

import (
	"time"

	"github.com/dukerupert/housy/internal/apperr"
	"github.com/dukerupert/housy/internal/model"
	"github.com/google/uuid"
)

// NextAssignee returns who takes the chore after actor completes it.
// An empty rotation leaves the assignee unchanged. An actor missing from
// the rotation, or sitting at its end, wraps to the first entry.
func NextAssignee(rotation []uuid.UUID, current *uuid.UUID, actor uuid.UUID) *uuid.UUID {
	if len(rotation) == 0 {
		return current
	}
	for i, id := range rotation {
		if id == actor && i < len(rotation)-1 {
			next := rotation[i+1]
			return &next
		}
	}
	first := rotation[0]
	return &first
}

// NextDue offsets from by one period of freq. Months are calendar months.
func NextDue(freq model.Frequency, from time.Time) (time.Time, error) {
	switch freq {
	case model.FrequencyDaily:
		return from.Add(24 * time.Hour), nil
	case model.FrequencyWeekly:
		return from.Add(7 * 24 * time.Hour), nil
	case model.FrequencyMonthly:
		return from.AddDate(0, 1, 0), nil
	}
	return time.Time{}, apperr.Validation("unknown frequency %q", freq)
}

// firstAssignee is rotation[0], or nil for an empty rotation.
func firstAssignee(rotation []uuid.UUID) *uuid.UUID {
	if len(rotation) == 0 {
		return nil
	}
	first := rotation[0]
	return &first
}

func inRotation(rotation []uuid.UUID, id uuid.UUID) bool {
	for _, r := range rotation {
		if r == id {
			return true
		}
	}
	return false
}
