package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/housy/internal/model"
	"github.com/google/uuid"
)

type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

const pushCols = `id, user_id, household_id, endpoint, p256dh_key, auth_key, device_name, created_at`

func scanSubscription(scanner interface{ Scan(...any) error }) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	var createdAt string
	err := scanner.Scan(&sub.ID, &sub.UserID, &sub.HouseholdID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.DeviceName, &createdAt)
	if err != nil {
		return nil, err
	}
	if sub.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &sub, nil
}

// Subscribe upserts a subscription keyed by endpoint.
func (s *PushStore) Subscribe(ctx context.Context, userID, householdID uuid.UUID, endpoint, p256dh, auth, deviceName string) (*model.PushSubscription, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO push_subscriptions (`+pushCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET user_id = excluded.user_id, household_id = excluded.household_id,
		 p256dh_key = excluded.p256dh_key, auth_key = excluded.auth_key, device_name = excluded.device_name`,
		uuid.New(), userID, householdID, endpoint, p256dh, auth, deviceName, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("create push subscription: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+pushCols+` FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	return scanSubscription(row)
}

func (s *PushStore) querySubscriptions(ctx context.Context, query string, args ...any) ([]model.PushSubscription, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (s *PushStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.PushSubscription, error) {
	return s.querySubscriptions(ctx,
		`SELECT `+pushCols+` FROM push_subscriptions WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (s *PushStore) ListByHousehold(ctx context.Context, householdID uuid.UUID) ([]model.PushSubscription, error) {
	return s.querySubscriptions(ctx,
		`SELECT `+pushCols+` FROM push_subscriptions WHERE household_id = ? ORDER BY created_at DESC`, householdID)
}

func (s *PushStore) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("delete push subscription by endpoint: %w", err)
	}
	return nil
}

// ReassignHousehold moves a user's devices along when they switch households.
func (s *PushStore) ReassignHousehold(ctx context.Context, userID, householdID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `UPDATE push_subscriptions SET household_id = ? WHERE user_id = ?`, householdID, userID)
	if err != nil {
		return fmt.Errorf("reassign push subscriptions: %w", err)
	}
	return nil
}

func (s *PushStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete push subscriptions: %w", err)
	}
	return nil
}

// ListHouseholdIDs returns distinct household IDs that have push subscriptions.
func (s *PushStore) ListHouseholdIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT household_id FROM push_subscriptions`)
	if err != nil {
		return nil, fmt.Errorf("list push household ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan household id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetPreferences returns every notification type for the user, defaulting to enabled.
func (s *PushStore) GetPreferences(ctx context.Context, userID, householdID uuid.UUID) ([]model.NotificationPreference, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT notification_type, enabled FROM notification_preferences WHERE user_id = ? AND household_id = ?`,
		userID, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("get notification preferences: %w", err)
	}
	defer rows.Close()

	stored := make(map[string]bool)
	for rows.Next() {
		var notifType string
		var enabled int
		if err := rows.Scan(&notifType, &enabled); err != nil {
			return nil, fmt.Errorf("scan notification preference: %w", err)
		}
		stored[notifType] = enabled != 0
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prefs := make([]model.NotificationPreference, 0, len(model.NotificationTypes))
	for _, t := range model.NotificationTypes {
		enabled, ok := stored[t]
		if !ok {
			enabled = true
		}
		prefs = append(prefs, model.NotificationPreference{NotificationType: t, Enabled: enabled})
	}
	return prefs, nil
}

// SetPreference upserts a notification preference.
func (s *PushStore) SetPreference(ctx context.Context, userID, householdID uuid.UUID, notifType string, enabled bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notification_preferences (user_id, household_id, notification_type, enabled)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, household_id, notification_type) DO UPDATE SET enabled = excluded.enabled`,
		userID, householdID, notifType, boolInt(enabled),
	)
	if err != nil {
		return fmt.Errorf("set notification preference: %w", err)
	}
	return nil
}

// IsPreferenceEnabled returns true when no preference row exists.
func (s *PushStore) IsPreferenceEnabled(ctx context.Context, userID, householdID uuid.UUID, notifType string) (bool, error) {
	var enabled int
	err := s.db.QueryRowContext(ctx,
		`SELECT enabled FROM notification_preferences
		 WHERE user_id = ? AND household_id = ? AND notification_type = ?`,
		userID, householdID, notifType,
	).Scan(&enabled)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("check notification preference: %w", err)
	}
	return enabled != 0, nil
}

// RecordSent records that a notification was sent (for dedup).
func (s *PushStore) RecordSent(ctx context.Context, householdID uuid.UUID, notifType, refID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sent_notifications (household_id, notification_type, reference_id, sent_at)
		 VALUES (?, ?, ?, ?)`,
		householdID, notifType, refID, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("record sent notification: %w", err)
	}
	return nil
}

func (s *PushStore) WasSent(ctx context.Context, householdID uuid.UUID, notifType, refID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sent_notifications
		 WHERE household_id = ? AND notification_type = ? AND reference_id = ?`,
		householdID, notifType, refID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check sent notification: %w", err)
	}
	return count > 0, nil
}

// CleanupSent deletes sent_notifications older than the given time.
func (s *PushStore) CleanupSent(ctx context.Context, before time.Time) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sent_notifications WHERE sent_at < ?`, formatTime(before))
	if err != nil {
		return fmt.Errorf("cleanup sent notifications: %w", err)
	}
	return nil
}
