package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     *string   `json:"full_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u User) DisplayName() string {
	return displayName(u.FullName, u.Email)
}

func displayName(fullName *string, email string) string {
	if fullName != nil && strings.TrimSpace(*fullName) != "" {
		return *fullName
	}
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
