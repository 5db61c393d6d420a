package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradelink/internal/domain"
)

// AccountRepositoryImpl implements the AccountRepository interface
type AccountRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *pgxpool.Pool) domain.AccountRepository {
	return &AccountRepositoryImpl{db: db}
}

// Upsert creates the account or merges the connection fields into it.
// created_at is only written on insert.
func (r *AccountRepositoryImpl) Upsert(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (user_id, account_id, terminal, last_connected, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $4)
		ON CONFLICT (user_id, account_id) DO UPDATE SET
			terminal = EXCLUDED.terminal,
			last_connected = EXCLUDED.last_connected,
			is_active = EXCLUDED.is_active
	`

	_, err := r.db.Exec(ctx, query,
		account.UserID,
		account.AccountID,
		account.Terminal,
		account.LastConnected,
		account.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}

	return nil
}

// GetByUserID retrieves all accounts linked by a user
func (r *AccountRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	query := `
		SELECT user_id, account_id, terminal, last_connected, is_active, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY last_connected DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by user ID: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account := &domain.Account{}
		err := rows.Scan(
			&account.UserID,
			&account.AccountID,
			&account.Terminal,
			&account.LastConnected,
			&account.IsActive,
			&account.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// MarkIdle deactivates active accounts not connected since before
func (r *AccountRepositoryImpl) MarkIdle(ctx context.Context, before time.Time) (int64, error) {
	query := `
		UPDATE accounts
		SET is_active = FALSE
		WHERE is_active AND last_connected < $1
	`

	tag, err := r.db.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to mark idle accounts: %w", err)
	}

	return tag.RowsAffected(), nil
}
