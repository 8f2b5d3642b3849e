package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that can sign in and belong to clinics
type User struct {
	Base
	Name         string  `json:"name" db:"name"`
	Email        string  `json:"email" db:"email"`
	Image        *string `json:"image,omitempty" db:"image"`
	PasswordHash string  `json:"-" db:"password_hash"`
}

// Session is a signed-in user's server-side session
type Session struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	IPAddress string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent string    `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	User      *User     `json:"user,omitempty" db:"-"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
