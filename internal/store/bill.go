package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/housy/internal/model"
	"github.com/google/uuid"
)

type BillStore struct {
	db *sql.DB
}

func NewBillStore(db *sql.DB) *BillStore {
	return &BillStore{db: db}
}

func scanBill(scanner interface{ Scan(...any) error }) (*model.RecurringBill, error) {
	var b model.RecurringBill
	var category, lastPaid sql.NullString
	var isActive int
	var createdAt string

	err := scanner.Scan(
		&b.ID, &b.HouseholdID, &b.Name, &b.Amount, &b.DueDay, &b.ReminderDaysBefore,
		&category, &isActive, &lastPaid, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	if category.Valid {
		c := model.BillCategory(category.String)
		b.Category = &c
	}
	b.IsActive = isActive != 0
	if b.LastPaidDate, err = parseNullDate(lastPaid); err != nil {
		return nil, fmt.Errorf("parse last_paid_date: %w", err)
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &b, nil
}

const billCols = `id, household_id, name, amount, due_day, reminder_days_before, category, is_active, last_paid_date, created_at`

func billCategory(c *model.BillCategory) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*c), Valid: true}
}

func (s *BillStore) Create(ctx context.Context, b *model.RecurringBill) (*model.RecurringBill, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recurring_bills (`+billCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, b.HouseholdID, b.Name, b.Amount, b.DueDay, b.ReminderDaysBefore,
		billCategory(b.Category), boolInt(b.IsActive), nullDate(b.LastPaidDate), formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert bill: %w", err)
	}
	return s.GetByID(ctx, b.HouseholdID, id)
}

func (s *BillStore) GetByID(ctx context.Context, householdID, id uuid.UUID) (*model.RecurringBill, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+billCols+` FROM recurring_bills WHERE id = ? AND household_id = ?`, id, householdID)
	b, err := scanBill(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bill: %w", err)
	}
	return b, nil
}

// List returns bills ordered by due day. activeOnly hides paused bills.
func (s *BillStore) List(ctx context.Context, householdID uuid.UUID, activeOnly bool) ([]model.RecurringBill, error) {
	query := `SELECT ` + billCols + ` FROM recurring_bills WHERE household_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY due_day ASC, name ASC`

	rows, err := s.db.QueryContext(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []model.RecurringBill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, *b)
	}
	return bills, rows.Err()
}

func (s *BillStore) Update(ctx context.Context, b *model.RecurringBill) (*model.RecurringBill, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE recurring_bills SET name = ?, amount = ?, due_day = ?, reminder_days_before = ?,
		 category = ?, is_active = ? WHERE id = ? AND household_id = ?`,
		b.Name, b.Amount, b.DueDay, b.ReminderDaysBefore, billCategory(b.Category), boolInt(b.IsActive),
		b.ID, b.HouseholdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update bill: %w", err)
	}
	return s.GetByID(ctx, b.HouseholdID, b.ID)
}

func (s *BillStore) MarkPaid(ctx context.Context, householdID, id uuid.UUID, paidOn time.Time) (*model.RecurringBill, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE recurring_bills SET last_paid_date = ? WHERE id = ? AND household_id = ?`,
		formatDate(paidOn), id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("mark bill paid: %w", err)
	}
	return s.GetByID(ctx, householdID, id)
}

func (s *BillStore) Delete(ctx context.Context, householdID, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM recurring_bills WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	return nil
}
