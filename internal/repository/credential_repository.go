package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradelink/internal/domain"
)

// CredentialRepositoryImpl implements the CredentialRepository interface
type CredentialRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewCredentialRepository creates a new CredentialRepository
func NewCredentialRepository(db *pgxpool.Pool) domain.CredentialRepository {
	return &CredentialRepositoryImpl{db: db}
}

// Save creates or overwrites the user's credential
func (r *CredentialRepositoryImpl) Save(ctx context.Context, cred *domain.TerminalCredential) error {
	query := `
		INSERT INTO terminal_credentials (user_id, username, password_hash, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			password_hash = EXCLUDED.password_hash,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		cred.UserID,
		cred.Username,
		cred.PasswordHash,
		cred.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save terminal credential: %w", err)
	}

	return nil
}

// FindByUsername returns every credential currently holding username
func (r *CredentialRepositoryImpl) FindByUsername(ctx context.Context, username string) ([]*domain.TerminalCredential, error) {
	query := `
		SELECT user_id, username, password_hash, updated_at
		FROM terminal_credentials
		WHERE username = $1
	`

	rows, err := r.db.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials by username: %w", err)
	}
	defer rows.Close()

	var creds []*domain.TerminalCredential
	for rows.Next() {
		cred := &domain.TerminalCredential{}
		if err := rows.Scan(&cred.UserID, &cred.Username, &cred.PasswordHash, &cred.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		creds = append(creds, cred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating credentials: %w", err)
	}

	return creds, nil
}

// GetByUserID retrieves the user's credential
func (r *CredentialRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.TerminalCredential, error) {
	query := `
		SELECT user_id, username, password_hash, updated_at
		FROM terminal_credentials
		WHERE user_id = $1
	`

	cred := &domain.TerminalCredential{}
	err := r.db.QueryRow(ctx, query, userID).Scan(&cred.UserID, &cred.Username, &cred.PasswordHash, &cred.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential by user ID: %w", err)
	}

	return cred, nil
}
