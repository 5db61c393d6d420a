package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"tradelink/internal/domain"
)

// Scheduler runs the periodic account housekeeping
type Scheduler struct {
	cron        *cron.Cron
	accountRepo domain.AccountRepository
	schedule    string
	idleAfter   time.Duration
	now         func() time.Time
	log         zerolog.Logger
}

// NewScheduler creates a scheduler that deactivates accounts whose terminal
// has not authenticated within idleAfter. schedule is a standard 5-field cron expression.
func NewScheduler(accountRepo domain.AccountRepository, schedule string, idleAfter time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		accountRepo: accountRepo,
		schedule:    schedule,
		idleAfter:   idleAfter,
		now:         time.Now,
		log:         log.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the sweep job and starts the cron runner
func (s *Scheduler) Start() error {
	if s.idleAfter <= 0 {
		s.log.Info().Msg("Idle account sweep disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.SweepIdleAccounts(ctx); err != nil {
			s.log.Error().Err(err).Msg("Idle account sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add idle account sweep (%q): %w", s.schedule, err)
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Dur("idle_after", s.idleAfter).Msg("Scheduler started")
	return nil
}

// Stop stops the cron runner and waits for a running sweep to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// SweepIdleAccounts marks accounts inactive when last_connected is older than the idle window
func (s *Scheduler) SweepIdleAccounts(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.idleAfter)
	n, err := s.accountRepo.MarkIdle(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to mark idle accounts: %w", err)
	}
	if n > 0 {
		s.log.Info().Int64("accounts", n).Time("cutoff", cutoff).Msg("Marked idle accounts inactive")
	}
	return n, nil
}
