package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember:
		return true
	}
	return false
}

type Household struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	InviteCode    string              `json:"invite_code"`
	CreatedBy     uuid.UUID           `json:"created_by"`
	MonthlyBudget decimal.NullDecimal `json:"monthly_budget"`
	CreatedAt     time.Time           `json:"created_at"`
}

// HouseholdMember is a membership row joined with the member's profile.
type HouseholdMember struct {
	HouseholdID uuid.UUID `json:"household_id"`
	UserID      uuid.UUID `json:"user_id"`
	Role        Role      `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
	Email       string    `json:"email"`
	FullName    *string   `json:"full_name"`
}

// DisplayName prefers the full name and falls back to the email's local part.
func (m HouseholdMember) DisplayName() string {
	return displayName(m.FullName, m.Email)
}
