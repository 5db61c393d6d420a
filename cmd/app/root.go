package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradelink/configs"
	"tradelink/internal/domain"
	"tradelink/internal/infra"
	"tradelink/internal/notify"
)

var rootCmd = &cobra.Command{
	Use:   "tradelink",
	Short: "Terminal account linking and trade ingestion server",
	Long: `tradelink links MetaTrader terminals to user accounts and ingests the
trades they report.

Run "tradelink serve" to start the HTTP server. The other commands are
operator tools for schema setup and credential management.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newUsersCmd(),
		newCredentialsCmd(),
	)
}

// runtime bundles what every command needs
type runtime struct {
	cfg *configs.Config
	log zerolog.Logger
	db  *pgxpool.Pool
}

func (r *runtime) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// bootstrap loads config, builds the logger and opens the database.
func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, err := configs.Load()
	if err != nil {
		return nil, err
	}
	log := infra.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := infra.NewDatabase(ctx, cfg.Database.URL, log)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, log: log, db: db}, nil
}

// broker is the change-event transport: Redis when REDIS_URL is set,
// otherwise an in-process broker that only reaches this process.
type broker interface {
	domain.EventPublisher
	domain.EventSubscriber
}

func (r *runtime) broker(ctx context.Context) (broker, func(), error) {
	if r.cfg.Redis.URL == "" {
		r.log.Info().Msg("REDIS_URL not set, using in-process event broker")
		return notify.NewLocalBroker(), func() {}, nil
	}

	client, err := infra.NewRedis(ctx, r.cfg.Redis.URL)
	if err != nil {
		return nil, nil, err
	}
	r.log.Info().Msg("Redis event broker connected")
	return notify.NewRedisBroker(client, r.log), func() { _ = client.Close() }, nil
}
