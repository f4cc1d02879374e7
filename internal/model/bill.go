package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BillCategory string

const (
	BillCategoryUtilities    BillCategory = "utilities"
	BillCategoryInternet     BillCategory = "internet"
	BillCategoryInsurance    BillCategory = "insurance"
	BillCategorySubscription BillCategory = "subscription"
	BillCategoryRent         BillCategory = "rent"
	BillCategoryCondominium  BillCategory = "condominium"
	BillCategoryOther        BillCategory = "other"
)

func (c BillCategory) Valid() bool {
	switch c {
	case BillCategoryUtilities, BillCategoryInternet, BillCategoryInsurance,
		BillCategorySubscription, BillCategoryRent, BillCategoryCondominium, BillCategoryOther:
		return true
	}
	return false
}

type BillStatus string

const (
	BillStatusPaid     BillStatus = "paid"
	BillStatusUpcoming BillStatus = "upcoming"
	BillStatusOverdue  BillStatus = "overdue"
	BillStatusNormal   BillStatus = "normal"
)

const DefaultReminderDays = 3

type RecurringBill struct {
	ID                 uuid.UUID           `json:"id"`
	HouseholdID        uuid.UUID           `json:"household_id"`
	Name               string              `json:"name"`
	Amount             decimal.NullDecimal `json:"amount"`
	DueDay             int                 `json:"due_day"`
	ReminderDaysBefore int                 `json:"reminder_days_before"`
	Category           *BillCategory       `json:"category"`
	IsActive           bool                `json:"is_active"`
	LastPaidDate       *time.Time          `json:"last_paid_date"`
	CreatedAt          time.Time           `json:"created_at"`
}

// BillWithStatus pairs a bill with its status evaluated at read time.
type BillWithStatus struct {
	RecurringBill
	Status BillStatus `json:"status"`
}
