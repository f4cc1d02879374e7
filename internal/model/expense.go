package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Expense struct {
	ID            uuid.UUID       `json:"id"`
	HouseholdID   uuid.UUID       `json:"household_id"`
	UserID        uuid.UUID       `json:"user_id"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Date          time.Time       `json:"date"`
	IsShared      bool            `json:"is_shared"`
	CreatedAt     time.Time       `json:"created_at"`
	CategoryName  string          `json:"category_name,omitempty"`
	CategoryColor string          `json:"category_color,omitempty"`
	UserName      string          `json:"user_name,omitempty"`
}

type ExpenseCategory struct {
	ID          uuid.UUID `json:"id"`
	HouseholdID uuid.UUID `json:"household_id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
}

type ExpenseFilter struct {
	Start      *time.Time
	End        *time.Time
	CategoryID *uuid.UUID
	UserID     *uuid.UUID
	Limit      int
	Offset     int
}

// ExpenseGroup is one bucket of a category or per-user breakdown.
type ExpenseGroup struct {
	Key   string          `json:"key"`
	Name  string          `json:"name"`
	Color string          `json:"color,omitempty"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type ExpenseSummary struct {
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	Average    decimal.Decimal `json:"average"`
	ByCategory []ExpenseGroup  `json:"by_category"`
	ByUser     []ExpenseGroup  `json:"by_user"`
}
