package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// CredentialRepository defines the interface for terminal credential storage
type CredentialRepository interface {
	// Save creates or overwrites the user's credential
	Save(ctx context.Context, cred *TerminalCredential) error

	// FindByUsername returns every credential currently holding username.
	// Usernames are derived from an id prefix, so more than one row is possible.
	FindByUsername(ctx context.Context, username string) ([]*TerminalCredential, error)

	// GetByUserID retrieves the user's credential
	GetByUserID(ctx context.Context, userID uuid.UUID) (*TerminalCredential, error)
}

// AccountRepository defines the interface for linked trading accounts
type AccountRepository interface {
	// Upsert creates the account or merges terminal, last_connected and is_active
	Upsert(ctx context.Context, account *Account) error

	// GetByUserID retrieves all accounts linked by a user
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Account, error)

	// MarkIdle deactivates active accounts not connected since before
	MarkIdle(ctx context.Context, before time.Time) (int64, error)
}

// TradeRepository defines the interface for reported trades
type TradeRepository interface {
	// Upsert writes the trade at (user, account, ticket), keeping created_at on update
	Upsert(ctx context.Context, trade *Trade) error

	// GetByAccount retrieves the trades of one of the user's accounts
	GetByAccount(ctx context.Context, userID uuid.UUID, accountID string) ([]*Trade, error)
}
