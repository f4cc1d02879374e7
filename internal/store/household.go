package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/housy/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	var createdAt string
	err := scanner.Scan(&h.ID, &h.Name, &h.InviteCode, &h.CreatedBy, &h.MonthlyBudget, &createdAt)
	if err != nil {
		return nil, err
	}
	if h.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &h, nil
}

func scanHouseholdMember(scanner interface{ Scan(...any) error }) (*model.HouseholdMember, error) {
	var m model.HouseholdMember
	var fullName sql.NullString
	var joinedAt string
	err := scanner.Scan(&m.HouseholdID, &m.UserID, &m.Role, &joinedAt, &m.Email, &fullName)
	if err != nil {
		return nil, err
	}
	m.FullName = stringPtr(fullName)
	if m.JoinedAt, err = parseTime(joinedAt); err != nil {
		return nil, fmt.Errorf("parse joined_at: %w", err)
	}
	return &m, nil
}

const householdCols = `id, name, invite_code, created_by, monthly_budget, created_at`

const householdMemberSelect = `SELECT hm.household_id, hm.user_id, hm.role, hm.joined_at, u.email, u.full_name
	FROM household_members hm JOIN users u ON u.id = hm.user_id`

// DefaultExpenseCategories are seeded into every new household.
var DefaultExpenseCategories = []model.ExpenseCategory{
	{Name: "Spesa", Icon: "ShoppingCart", Color: "#10b981"},
	{Name: "Casa", Icon: "Home", Color: "#3b82f6"},
	{Name: "Bollette", Icon: "Zap", Color: "#f59e0b"},
	{Name: "Trasporti", Icon: "Car", Color: "#8b5cf6"},
	{Name: "Svago", Icon: "Gamepad2", Color: "#ec4899"},
	{Name: "Salute", Icon: "Heart", Color: "#ef4444"},
	{Name: "Altro", Icon: "MoreHorizontal", Color: "#6b7280"},
}

// Create inserts a household, makes creator its admin and seeds default
// expense categories in a single transaction.
func (s *HouseholdStore) Create(ctx context.Context, name, inviteCode string, creator uuid.UUID) (*model.Household, error) {
	id := uuid.New()
	now := formatTime(time.Now())

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO households (id, name, invite_code, created_by, created_at) VALUES (?, ?, ?, ?, ?)`,
			id, name, inviteCode, creator, now,
		); err != nil {
			return fmt.Errorf("insert household: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO household_members (household_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
			id, creator, model.RoleAdmin, now,
		); err != nil {
			return fmt.Errorf("add creator: %w", err)
		}
		for _, c := range DefaultExpenseCategories {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO expense_categories (id, household_id, name, icon, color) VALUES (?, ?, ?, ?, ?)`,
				uuid.New(), id, c.Name, c.Icon, c.Color,
			); err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *HouseholdStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Household, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

// GetByInviteCode looks a household up by its code. Callers normalize case.
func (s *HouseholdStore) GetByInviteCode(ctx context.Context, code string) (*model.Household, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+householdCols+` FROM households WHERE invite_code = ?`, code)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household by code: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) UpdateInviteCode(ctx context.Context, id uuid.UUID, code string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE households SET invite_code = ? WHERE id = ?`, code, id)
	if err != nil {
		return fmt.Errorf("update invite code: %w", err)
	}
	return nil
}

func (s *HouseholdStore) UpdateBudget(ctx context.Context, id uuid.UUID, budget decimal.NullDecimal) (*model.Household, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE households SET monthly_budget = ? WHERE id = ?`, budget, id)
	if err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *HouseholdStore) AddMember(ctx context.Context, householdID, userID uuid.UUID, role model.Role) (*model.HouseholdMember, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO household_members (household_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
		householdID, userID, role, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	return s.GetMember(ctx, householdID, userID)
}

func (s *HouseholdStore) RemoveMember(ctx context.Context, householdID, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM household_members WHERE household_id = ? AND user_id = ?`,
		householdID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

// SwitchMembership moves userID from one household to another as a plain
// member. Both steps commit together or not at all.
func (s *HouseholdStore) SwitchMembership(ctx context.Context, userID, from, to uuid.UUID) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM household_members WHERE household_id = ? AND user_id = ?`, from, userID,
		); err != nil {
			return fmt.Errorf("leave household: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO household_members (household_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
			to, userID, model.RoleMember, formatTime(time.Now()),
		); err != nil {
			return fmt.Errorf("join household: %w", err)
		}
		return nil
	})
}

func (s *HouseholdStore) GetMember(ctx context.Context, householdID, userID uuid.UUID) (*model.HouseholdMember, error) {
	row := s.db.QueryRowContext(ctx,
		householdMemberSelect+` WHERE hm.household_id = ? AND hm.user_id = ?`,
		householdID, userID,
	)
	m, err := scanHouseholdMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// GetMembershipForUser returns the user's single membership, if any.
func (s *HouseholdStore) GetMembershipForUser(ctx context.Context, userID uuid.UUID) (*model.HouseholdMember, error) {
	row := s.db.QueryRowContext(ctx, householdMemberSelect+` WHERE hm.user_id = ?`, userID)
	m, err := scanHouseholdMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

// ListMembers returns members in join order.
func (s *HouseholdStore) ListMembers(ctx context.Context, householdID uuid.UUID) ([]model.HouseholdMember, error) {
	rows, err := s.db.QueryContext(ctx,
		householdMemberSelect+` WHERE hm.household_id = ? ORDER BY hm.joined_at ASC, u.email ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.HouseholdMember
	for rows.Next() {
		m, err := scanHouseholdMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *HouseholdStore) UpdateMemberRole(ctx context.Context, householdID, userID uuid.UUID, role model.Role) (*model.HouseholdMember, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE household_members SET role = ? WHERE household_id = ? AND user_id = ?`,
		role, householdID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update member role: %w", err)
	}
	return s.GetMember(ctx, householdID, userID)
}

// CountOthers returns how many members besides userID the household has,
// optionally restricted to one role.
func (s *HouseholdStore) CountOthers(ctx context.Context, householdID, userID uuid.UUID, role *model.Role) (int, error) {
	query := `SELECT COUNT(*) FROM household_members WHERE household_id = ? AND user_id != ?`
	args := []any{householdID, userID}
	if role != nil {
		query += ` AND role = ?`
		args = append(args, *role)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}
