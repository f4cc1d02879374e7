package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/housy/internal/model"
	"github.com/google/uuid"
)

type WasteStore struct {
	db *sql.DB
}

func NewWasteStore(db *sql.DB) *WasteStore {
	return &WasteStore{db: db}
}

func scanWaste(scanner interface{ Scan(...any) error }) (*model.WasteSchedule, error) {
	var w model.WasteSchedule
	var deadline sql.NullString
	var isActive int
	var createdAt string

	err := scanner.Scan(&w.ID, &w.HouseholdID, &w.WasteType, &w.DayOfWeek, &w.ReminderTime,
		&deadline, &isActive, &createdAt)
	if err != nil {
		return nil, err
	}
	w.DeadlineTime = stringPtr(deadline)
	w.IsActive = isActive != 0
	if w.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &w, nil
}

const wasteCols = `id, household_id, waste_type, day_of_week, reminder_time, deadline_time, is_active, created_at`

func (s *WasteStore) Create(ctx context.Context, w *model.WasteSchedule) (*model.WasteSchedule, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO waste_schedules (`+wasteCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, w.HouseholdID, w.WasteType, w.DayOfWeek, w.ReminderTime, nullString(w.DeadlineTime),
		boolInt(w.IsActive), formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert waste schedule: %w", err)
	}
	return s.GetByID(ctx, w.HouseholdID, id)
}

func (s *WasteStore) GetByID(ctx context.Context, householdID, id uuid.UUID) (*model.WasteSchedule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+wasteCols+` FROM waste_schedules WHERE id = ? AND household_id = ?`, id, householdID)
	w, err := scanWaste(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get waste schedule: %w", err)
	}
	return w, nil
}

// List returns schedules ordered by weekday. activeOnly hides paused entries.
func (s *WasteStore) List(ctx context.Context, householdID uuid.UUID, activeOnly bool) ([]model.WasteSchedule, error) {
	query := `SELECT ` + wasteCols + ` FROM waste_schedules WHERE household_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY day_of_week ASC, waste_type ASC`

	rows, err := s.db.QueryContext(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("list waste schedules: %w", err)
	}
	defer rows.Close()

	var out []model.WasteSchedule
	for rows.Next() {
		w, err := scanWaste(rows)
		if err != nil {
			return nil, fmt.Errorf("scan waste schedule: %w", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (s *WasteStore) Update(ctx context.Context, w *model.WasteSchedule) (*model.WasteSchedule, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE waste_schedules SET waste_type = ?, day_of_week = ?, reminder_time = ?, deadline_time = ?, is_active = ?
		 WHERE id = ? AND household_id = ?`,
		w.WasteType, w.DayOfWeek, w.ReminderTime, nullString(w.DeadlineTime), boolInt(w.IsActive),
		w.ID, w.HouseholdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update waste schedule: %w", err)
	}
	return s.GetByID(ctx, w.HouseholdID, w.ID)
}

func (s *WasteStore) SetActive(ctx context.Context, householdID, id uuid.UUID, active bool) (*model.WasteSchedule, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE waste_schedules SET is_active = ? WHERE id = ? AND household_id = ?`,
		boolInt(active), id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle waste schedule: %w", err)
	}
	return s.GetByID(ctx, householdID, id)
}

func (s *WasteStore) Delete(ctx context.Context, householdID, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM waste_schedules WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete waste schedule: %w", err)
	}
	return nil
}
