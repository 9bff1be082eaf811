package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/mailstore"
)

// RetryConfig defines backoff behavior for rate-limited provider calls.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides sensible defaults.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     5,
	InitialDelay:    1 * time.Second,
	MaxDelay:        60 * time.Second,
	BackoffMultiple: 2.0,
}

// sleeper lets tests replace real sleeping.
type sleeper func(ctx context.Context, d time.Duration) error

func realSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// callWithRetry executes fn, backing off and retrying on retryable
// failures. A non-retryable error returns immediately; exhausting the
// attempts returns the last error wrapped as exhaustion.
func callWithRetry(ctx context.Context, cfg RetryConfig, sleep sleeper, onRetry func(attempt int), fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !mailstore.Retryable(err) {
			return err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		if onRetry != nil {
			onRetry(attempt + 1)
		}
		if err := sleep(ctx, calculateBackoff(attempt, cfg)); err != nil {
			return err
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

func calculateBackoff(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffMultiple, float64(attempt))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	return time.Duration(delay)
}
