package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/housy/internal/model"
	"github.com/google/uuid"
)

type ExpenseStore struct {
	db *sql.DB
}

func NewExpenseStore(db *sql.DB) *ExpenseStore {
	return &ExpenseStore{db: db}
}

func scanExpense(scanner interface{ Scan(...any) error }) (*model.Expense, error) {
	var e model.Expense
	var categoryID uuid.NullUUID
	var date string
	var isShared int
	var createdAt string

	err := scanner.Scan(
		&e.ID, &e.HouseholdID, &e.UserID, &categoryID, &e.Amount, &e.Description,
		&date, &isShared, &createdAt, &e.CategoryName, &e.CategoryColor, &e.UserName,
	)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		e.CategoryID = &categoryID.UUID
	}
	if e.Date, err = parseDate(date); err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	e.IsShared = isShared != 0
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &e, nil
}

const expenseSelect = `SELECT e.id, e.household_id, e.user_id, e.category_id, e.amount, e.description,
	e.date, e.is_shared, e.created_at, COALESCE(c.name, ''), COALESCE(c.color, ''),
	COALESCE(u.full_name, u.email, '')
	FROM expenses e
	LEFT JOIN expense_categories c ON c.id = e.category_id
	LEFT JOIN users u ON u.id = e.user_id`

func (s *ExpenseStore) Create(ctx context.Context, e *model.Expense) (*model.Expense, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, household_id, user_id, category_id, amount, description, date, is_shared, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, e.HouseholdID, e.UserID, nullUUID(e.CategoryID), e.Amount, e.Description,
		formatDate(e.Date), boolInt(e.IsShared), formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}
	return s.GetByID(ctx, e.HouseholdID, id)
}

func (s *ExpenseStore) GetByID(ctx context.Context, householdID, id uuid.UUID) (*model.Expense, error) {
	row := s.db.QueryRowContext(ctx, expenseSelect+` WHERE e.id = ? AND e.household_id = ?`, id, householdID)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func expenseWhere(householdID uuid.UUID, f model.ExpenseFilter) (string, []any) {
	clauses := []string{"e.household_id = ?"}
	args := []any{householdID}
	if f.Start != nil {
		clauses = append(clauses, "e.date >= ?")
		args = append(args, formatDate(*f.Start))
	}
	if f.End != nil {
		clauses = append(clauses, "e.date <= ?")
		args = append(args, formatDate(*f.End))
	}
	if f.CategoryID != nil {
		clauses = append(clauses, "e.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.UserID != nil {
		clauses = append(clauses, "e.user_id = ?")
		args = append(args, *f.UserID)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// List returns one page of expenses, newest first, plus the total count
// matching the filter. A zero Limit returns every match.
func (s *ExpenseStore) List(ctx context.Context, householdID uuid.UUID, f model.ExpenseFilter) ([]model.Expense, int, error) {
	where, args := expenseWhere(householdID, f)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses e`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	query := expenseSelect + where + ` ORDER BY e.date DESC, e.created_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, total, rows.Err()
}

func (s *ExpenseStore) Update(ctx context.Context, e *model.Expense) (*model.Expense, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET category_id = ?, amount = ?, description = ?, date = ?, is_shared = ?
		 WHERE id = ? AND household_id = ?`,
		nullUUID(e.CategoryID), e.Amount, e.Description, formatDate(e.Date), boolInt(e.IsShared),
		e.ID, e.HouseholdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	return s.GetByID(ctx, e.HouseholdID, e.ID)
}

func (s *ExpenseStore) Delete(ctx context.Context, householdID, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}
