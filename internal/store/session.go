package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/housy/internal/model"
	"github.com/google/uuid"
)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) (*model.Session, error) {
	now := time.Now()
	sess := &model.Session{
		ID:        uuid.New(),
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(ttl).UTC(),
		CreatedAt: now.UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.Token, sess.UserID, formatTime(sess.ExpiresAt), formatTime(sess.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// GetByToken returns the session for token, or nil if missing or expired.
func (s *SessionStore) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	var sess model.Session
	var expiresAt, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, token, user_id, expires_at, created_at FROM sessions WHERE token = ? AND expires_at > ?`,
		token, formatTime(time.Now()),
	).Scan(&sess.ID, &sess.Token, &sess.UserID, &expiresAt, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	if sess.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteForUserExcept signs a user out everywhere but the given session.
func (s *SessionStore) DeleteForUserExcept(ctx context.Context, userID, keep uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ? AND id != ?`, userID, keep)
	if err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry and returns how many were removed.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, formatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
