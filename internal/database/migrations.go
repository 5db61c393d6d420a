package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed migrations/001_init_schema.sql
var migrationSQL string

// RunMigrations applies the schema. Every statement is idempotent, so it is
// safe to run on each start.
func RunMigrations(ctx context.Context, db *pgxpool.Pool, log zerolog.Logger) error {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = 'trades'
		)
	`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check if migrations needed: %w", err)
	}

	if exists {
		log.Info().Msg("Database schema present, re-applying idempotent migrations")
	} else {
		log.Info().Msg("Database is empty, running migrations")
	}

	if _, err := db.Exec(ctx, migrationSQL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("Database migrations completed")
	return nil
}
