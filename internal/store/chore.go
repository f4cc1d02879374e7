package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/housy/internal/model"
	"github.com/google/uuid"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	var rotation string
	var assignee uuid.NullUUID
	var lastCompleted, nextDue sql.NullString
	var isActive int
	var createdAt string

	err := scanner.Scan(
		&c.ID, &c.HouseholdID, &c.Name, &c.Frequency, &c.Points,
		&rotation, &assignee, &lastCompleted, &nextDue, &isActive, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(rotation), &c.RotationOrder); err != nil {
		return nil, fmt.Errorf("decode rotation_order: %w", err)
	}
	if c.RotationOrder == nil {
		c.RotationOrder = []uuid.UUID{}
	}
	if assignee.Valid {
		c.CurrentAssignee = &assignee.UUID
	}
	if c.LastCompleted, err = parseNullTime(lastCompleted); err != nil {
		return nil, fmt.Errorf("parse last_completed: %w", err)
	}
	if c.NextDue, err = parseNullTime(nextDue); err != nil {
		return nil, fmt.Errorf("parse next_due: %w", err)
	}
	c.IsActive = isActive != 0
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &c, nil
}

const choreCols = `id, household_id, name, frequency, points, rotation_order, current_assignee, last_completed, next_due, is_active, created_at`

func encodeRotation(ids []uuid.UUID) (string, error) {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode rotation_order: %w", err)
	}
	return string(b), nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// Create inserts c, assigning a new ID and creation time.
func (s *ChoreStore) Create(ctx context.Context, c *model.Chore) (*model.Chore, error) {
	rotation, err := encodeRotation(c.RotationOrder)
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO chores (`+choreCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, c.HouseholdID, c.Name, c.Frequency, c.Points, rotation,
		nullUUID(c.CurrentAssignee), nullTime(c.LastCompleted), nullTime(c.NextDue),
		boolInt(c.IsActive), formatTime(createdAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	return s.GetByID(ctx, c.HouseholdID, id)
}

// GetByID scopes the lookup to a household so IDs from other households read as missing.
func (s *ChoreStore) GetByID(ctx context.Context, householdID, id uuid.UUID) (*model.Chore, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+choreCols+` FROM chores WHERE id = ? AND household_id = ?`, id, householdID)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

// List returns a household's chores, soonest due first with undated chores last.
func (s *ChoreStore) List(ctx context.Context, householdID uuid.UUID) ([]model.Chore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+choreCols+` FROM chores WHERE household_id = ?
		 ORDER BY next_due IS NULL, next_due ASC, name ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

func (s *ChoreStore) Update(ctx context.Context, c *model.Chore) (*model.Chore, error) {
	rotation, err := encodeRotation(c.RotationOrder)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE chores SET name = ?, frequency = ?, points = ?, rotation_order = ?,
		 current_assignee = ?, next_due = ?, is_active = ?
		 WHERE id = ? AND household_id = ?`,
		c.Name, c.Frequency, c.Points, rotation,
		nullUUID(c.CurrentAssignee), nullTime(c.NextDue), boolInt(c.IsActive),
		c.ID, c.HouseholdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	return s.GetByID(ctx, c.HouseholdID, c.ID)
}

func (s *ChoreStore) Delete(ctx context.Context, householdID, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chores WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return nil
}

// CompleteParams describes one rotation step.
type CompleteParams struct {
	HouseholdID  uuid.UUID
	ChoreID      uuid.UUID
	Actor        uuid.UUID
	NextAssignee *uuid.UUID
	NextDue      time.Time
	CompletedAt  time.Time
	Points       int
}

// Complete advances the rotation and records the completion atomically.
// The update only applies while Actor is still the current assignee; it
// returns false when another completion won the race.
func (s *ChoreStore) Complete(ctx context.Context, p CompleteParams) (bool, error) {
	applied := false
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE chores SET current_assignee = ?, last_completed = ?, next_due = ?
			 WHERE id = ? AND household_id = ? AND current_assignee = ?`,
			nullUUID(p.NextAssignee), formatTime(p.CompletedAt), formatTime(p.NextDue),
			p.ChoreID, p.HouseholdID, p.Actor,
		)
		if err != nil {
			return fmt.Errorf("advance rotation: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chore_completions (id, chore_id, household_id, user_id, points_earned, completed_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New(), p.ChoreID, p.HouseholdID, p.Actor, p.Points, formatTime(p.CompletedAt),
		); err != nil {
			return fmt.Errorf("insert completion: %w", err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

const completionSelect = `SELECT cc.id, cc.chore_id, cc.household_id, cc.user_id, cc.points_earned, cc.completed_at,
	COALESCE(c.name, ''), COALESCE(u.full_name, u.email, '')
	FROM chore_completions cc
	LEFT JOIN chores c ON c.id = cc.chore_id
	LEFT JOIN users u ON u.id = cc.user_id`

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.ChoreCompletion, error) {
	var cc model.ChoreCompletion
	var completedAt string
	err := scanner.Scan(&cc.ID, &cc.ChoreID, &cc.HouseholdID, &cc.UserID, &cc.PointsEarned, &completedAt,
		&cc.ChoreName, &cc.UserName)
	if err != nil {
		return nil, err
	}
	if cc.CompletedAt, err = parseTime(completedAt); err != nil {
		return nil, fmt.Errorf("parse completed_at: %w", err)
	}
	return &cc, nil
}

func (s *ChoreStore) queryCompletions(ctx context.Context, query string, args ...any) ([]model.ChoreCompletion, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var out []model.ChoreCompletion
	for rows.Next() {
		cc, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		out = append(out, *cc)
	}
	return out, rows.Err()
}

// ListCompletions returns completions with completed_at in [start, end].
func (s *ChoreStore) ListCompletions(ctx context.Context, householdID uuid.UUID, start, end time.Time) ([]model.ChoreCompletion, error) {
	return s.queryCompletions(ctx,
		completionSelect+` WHERE cc.household_id = ? AND cc.completed_at >= ? AND cc.completed_at <= ?
		 ORDER BY cc.completed_at ASC`,
		householdID, formatTime(start), formatTime(end),
	)
}

// RecentCompletions returns the newest completions first.
func (s *ChoreStore) RecentCompletions(ctx context.Context, householdID uuid.UUID, limit int) ([]model.ChoreCompletion, error) {
	return s.queryCompletions(ctx,
		completionSelect+` WHERE cc.household_id = ? ORDER BY cc.completed_at DESC LIMIT ?`,
		householdID, limit,
	)
}

// PointsForUser sums points a user earned in [start, end].
func (s *ChoreStore) PointsForUser(ctx context.Context, householdID, userID uuid.UUID, start, end time.Time) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(points_earned), 0) FROM chore_completions
		 WHERE household_id = ? AND user_id = ? AND completed_at >= ? AND completed_at <= ?`,
		householdID, userID, formatTime(start), formatTime(end),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum points: %w", err)
	}
	return total, nil
}
