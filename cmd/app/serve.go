package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"tradelink/internal/database"
	httpdelivery "tradelink/internal/delivery/http"
	"tradelink/internal/infra"
	"tradelink/internal/middleware"
	"tradelink/internal/repository"
	"tradelink/internal/service"
	"tradelink/internal/websocket"
)

func newServeCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply the schema on start")
	return cmd
}

func serve(ctx context.Context, skipMigrations bool) error {
	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg, log := rt.cfg, rt.log

	if !skipMigrations {
		if err := database.RunMigrations(ctx, rt.db, log); err != nil {
			return err
		}
	}

	events, closeEvents, err := rt.broker(ctx)
	if err != nil {
		return err
	}
	defer closeEvents()

	// Repositories
	userRepo := repository.NewUserRepository(rt.db)
	credRepo := repository.NewCredentialRepository(rt.db)
	accountRepo := repository.NewAccountRepository(rt.db)
	tradeRepo := repository.NewTradeRepository(rt.db)

	// Services
	sessions := middleware.NewSessionCodec(cfg.Auth.SessionSecret)
	credentials := service.NewCredentialService(credRepo, userRepo, events, log)
	terminalAuth := service.NewTerminalAuthService(credentials, accountRepo, sessions, events, cfg.Accounts.DefaultTerminal, log)
	ingestion := service.NewIngestionService(tradeRepo, sessions, events, cfg.Auth.TokenMaxAge, log)
	hub := websocket.NewHub(events, log)

	scheduler := infra.NewScheduler(accountRepo, cfg.Accounts.SweepSchedule, cfg.Accounts.IdleAfter, log)
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	// Echo serves the application routes
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	httpdelivery.SetupRoutes(e, &httpdelivery.RouterConfig{
		AuthHandler:    httpdelivery.NewAuthHandler(terminalAuth, log),
		TradeHandler:   httpdelivery.NewTradeHandler(ingestion, log),
		UserHandler:    httpdelivery.NewUserHandler(service.NewUserService(userRepo), credentials, accountRepo, tradeRepo, hub, log),
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            log,
	})

	// Chi owns the process-level concerns and delegates everything else to echo
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Get("/health", handleHealth(rt.db))
	r.Mount("/", e)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Server.Env).Msg("tradelink starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exited gracefully")
	return nil
}

func handleHealth(db interface{ Ping(context.Context) error }) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "healthy"
		if err := db.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "unhealthy"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":    dbStatus,
			"service":   "tradelink",
			"database":  dbStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
