package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a dashboard account owner. Identity (email) is owned by the
// external sign-in provider; the ID is assigned here.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TerminalCredential is the generated login a terminal uses to link itself
// to a user. Only the bcrypt hash of the password is stored.
type TerminalCredential struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	UpdatedAt    time.Time `json:"updated_at"`
}
