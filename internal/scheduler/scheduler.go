// Package scheduler runs the periodic budget expiry sweep.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds the scheduler configuration
type Config struct {
	// Schedule is a standard 5-field cron expression (e.g., "15 0 * * *" for daily at 00:15)
	Schedule string
	// Timeout bounds a single sweep
	Timeout time.Duration
	// Enabled determines if the scheduler should run
	Enabled bool
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Schedule: "15 0 * * *",
		Timeout:  time.Minute,
		Enabled:  true,
	}
}

// BudgetSweeper deactivates budgets whose end date is before now.
type BudgetSweeper interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler manages the scheduled sweep job
type Scheduler struct {
	cron    *cron.Cron
	budgets BudgetSweeper
	config  Config
	logger  *slog.Logger
	entryID cron.EntryID
	now     func() time.Time
}

// New creates a new Scheduler instance
func New(cfg Config, budgets BudgetSweeper, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		budgets: budgets,
		config:  cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Start begins the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled, skipping start")
		return nil
	}

	// Seconds field first; the configured schedule has five fields.
	schedule := "0 " + s.config.Schedule

	entryID, err := s.cron.AddFunc(schedule, func() {
		_, _ = s.Sweep()
	})
	if err != nil {
		return err
	}

	s.entryID = entryID
	s.cron.Start()

	s.logger.Info("Scheduler started",
		slog.String("schedule", s.config.Schedule),
		slog.Duration("timeout", s.config.Timeout),
	)

	return nil
}

// Stop gracefully stops the scheduler. The returned context is done once a
// running sweep has finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping scheduler...")
	return s.cron.Stop()
}

// Sweep deactivates expired budgets once and reports how many changed.
func (s *Scheduler) Sweep() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	startTime := s.now()
	count, err := s.budgets.DeactivateExpired(ctx, startTime.UTC())
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Budget sweep failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
		)
		return 0, err
	}

	s.logger.Info("Budget sweep completed",
		slog.Int64("budgets_deactivated", count),
		slog.Duration("duration", duration),
	)
	return count, nil
}

// NextRun returns the next scheduled run time
func (s *Scheduler) NextRun() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// IsRunning returns true if a sweep is scheduled
func (s *Scheduler) IsRunning() bool {
	return s.entryID != 0 && len(s.cron.Entries()) > 0
}
