package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is one broker trading account linked to a user by a terminal.
// AccountID is the broker account number reported by the terminal.
type Account struct {
	UserID        uuid.UUID `json:"user_id"`
	AccountID     string    `json:"account_id"`
	Terminal      string    `json:"terminal"`
	LastConnected time.Time `json:"last_connected"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}
