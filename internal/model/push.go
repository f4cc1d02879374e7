package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification type constants
const (
	NotifTypeBillDue   = "bill_due"
	NotifTypeWasteDue  = "waste_collection"
	NotifTypeChoreDue  = "chore_due"
	NotifTypeChoreDone = "chore_completed"
)

var NotificationTypes = []string{NotifTypeBillDue, NotifTypeWasteDue, NotifTypeChoreDue, NotifTypeChoreDone}

type PushSubscription struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	HouseholdID uuid.UUID `json:"household_id"`
	Endpoint    string    `json:"endpoint"`
	P256dhKey   string    `json:"p256dh_key"`
	AuthKey     string    `json:"auth_key"`
	DeviceName  string    `json:"device_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type NotificationPreference struct {
	NotificationType string `json:"notification_type"`
	Enabled          bool   `json:"enabled"`
}
