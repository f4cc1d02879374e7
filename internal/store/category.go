package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/housy/internal/model"
	"github.com/google/uuid"
)

type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func scanCategory(scanner interface{ Scan(...any) error }) (*model.ExpenseCategory, error) {
	var c model.ExpenseCategory
	err := scanner.Scan(&c.ID, &c.HouseholdID, &c.Name, &c.Icon, &c.Color)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const categoryCols = `id, household_id, name, icon, color`

func (s *CategoryStore) Create(ctx context.Context, householdID uuid.UUID, name, icon, color string) (*model.ExpenseCategory, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expense_categories (`+categoryCols+`) VALUES (?, ?, ?, ?, ?)`,
		id, householdID, name, icon, color,
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return s.GetByID(ctx, householdID, id)
}

func (s *CategoryStore) GetByID(ctx context.Context, householdID, id uuid.UUID) (*model.ExpenseCategory, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryCols+` FROM expense_categories WHERE id = ? AND household_id = ?`, id, householdID)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// GetByName matches case-insensitively.
func (s *CategoryStore) GetByName(ctx context.Context, householdID uuid.UUID, name string) (*model.ExpenseCategory, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryCols+` FROM expense_categories WHERE household_id = ? AND name = ? COLLATE NOCASE`,
		householdID, strings.TrimSpace(name))
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

func (s *CategoryStore) List(ctx context.Context, householdID uuid.UUID) ([]model.ExpenseCategory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryCols+` FROM expense_categories WHERE household_id = ? ORDER BY name COLLATE NOCASE ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []model.ExpenseCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *CategoryStore) Update(ctx context.Context, c *model.ExpenseCategory) (*model.ExpenseCategory, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE expense_categories SET name = ?, icon = ?, color = ? WHERE id = ? AND household_id = ?`,
		c.Name, c.Icon, c.Color, c.ID, c.HouseholdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return s.GetByID(ctx, c.HouseholdID, c.ID)
}

// Delete removes a category; its expenses become uncategorized.
func (s *CategoryStore) Delete(ctx context.Context, householdID, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM expense_categories WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
