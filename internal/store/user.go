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

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var fullName sql.NullString
	var createdAt string
	err := scanner.Scan(&u.ID, &u.Email, &fullName, &u.PasswordHash, &createdAt)
	if err != nil {
		return nil, err
	}
	u.FullName = stringPtr(fullName)
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &u, nil
}

const userCols = `id, email, full_name, password_hash, created_at`

// Create inserts a user. Emails are stored lowercased.
func (s *UserStore) Create(ctx context.Context, email string, fullName *string, passwordHash string) (*model.User, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, strings.ToLower(strings.TrimSpace(email)), nullString(fullName), passwordHash, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) UpdateFullName(ctx context.Context, id uuid.UUID, fullName *string) (*model.User, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET full_name = ? WHERE id = ?`, nullString(fullName), id)
	if err != nil {
		return nil, fmt.Errorf("update user name: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Delete removes the user. Sessions, memberships and push subscriptions cascade.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
