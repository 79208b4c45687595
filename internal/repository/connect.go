package repository

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/jmoiron/sqlx"
)

// RetryConfig holds the backoff used while the database comes up.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     15 * time.Second,
		Multiplier:   2.0,
	}
}

// Connect opens a postgres connection, retrying with exponential backoff.
func Connect(ctx context.Context, databaseURL string, cfg RetryConfig, logger *slog.Logger) (*sqlx.DB, error) {
	var db *sqlx.DB
	err := withRetry(ctx, cfg, logger, func() error {
		var err error
		db, err = sqlx.ConnectContext(ctx, "postgres", databaseURL)
		return err
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func withRetry(ctx context.Context, cfg RetryConfig, logger *slog.Logger, fn func() error) error {
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if logger != nil {
			logger.Warn("database connection attempt failed",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", cfg.MaxAttempts),
				slog.String("error", err.Error()),
			)
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		// Jitter keeps replicas from reconnecting in lockstep
		wait := delay
		if quarter := int64(delay / 4); quarter > 0 {
			wait += time.Duration(rand.Int63n(quarter))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", cfg.MaxAttempts, lastErr)
}
