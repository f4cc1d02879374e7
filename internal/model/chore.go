package model

import (
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

const DefaultChorePoints = 1

type Chore struct {
	ID              uuid.UUID   `json:"id"`
	HouseholdID     uuid.UUID   `json:"household_id"`
	Name            string      `json:"name"`
	Frequency       Frequency   `json:"frequency"`
	Points          int         `json:"points"`
	RotationOrder   []uuid.UUID `json:"rotation_order"`
	CurrentAssignee *uuid.UUID  `json:"current_assignee"`
	LastCompleted   *time.Time  `json:"last_completed"`
	NextDue         *time.Time  `json:"next_due"`
	IsActive        bool        `json:"is_active"`
	CreatedAt       time.Time   `json:"created_at"`
}

type ChoreCompletion struct {
	ID           uuid.UUID `json:"id"`
	ChoreID      uuid.UUID `json:"chore_id"`
	HouseholdID  uuid.UUID `json:"household_id"`
	UserID       uuid.UUID `json:"user_id"`
	PointsEarned int       `json:"points_earned"`
	CompletedAt  time.Time `json:"completed_at"`
	ChoreName    string    `json:"chore_name,omitempty"`
	UserName     string    `json:"user_name,omitempty"`
}

// ChoreStats is one leaderboard row for a period.
type ChoreStats struct {
	UserID          uuid.UUID `json:"user_id"`
	Name            string    `json:"name"`
	TotalPoints     int       `json:"total_points"`
	CompletionCount int       `json:"completion_count"`
}
