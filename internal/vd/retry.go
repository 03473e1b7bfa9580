package vd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/yourusername/vdm-cli/internal/logging"
)

// RetryConfig bounds retries of blocking shell calls
type RetryConfig struct {
	MaxAttempts int           // total attempts, at least 1
	Delay       time.Duration // fixed delay between attempts
}

// DefaultRetryConfig returns the startup retry policy
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		Delay:       250 * time.Millisecond,
	}
}

func isTransient(err error) bool {
	return errors.Is(err, ErrBackendUnavailable)
}

// retryOptions builds a fixed-delay policy from cfg that retries while
// retryIf holds and stops early when ctx ends
func retryOptions(ctx context.Context, cfg RetryConfig, name string, retryIf func(error) bool) []retry.Option {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(uint(cfg.MaxAttempts)),
		retry.Delay(cfg.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryIf),
		retry.OnRetry(func(n uint, err error) {
			logging.Debug().Err(err).Str("op", name).Uint("attempt", n+1).Dur("delay", cfg.Delay).Msg("attempt failed")
		}),
	}
}

// Retry runs op until it succeeds, fails with a non-transient error, or the
// attempts run out. Only ErrBackendUnavailable is retried.
func Retry(ctx context.Context, cfg RetryConfig, name string, op func() error) error {
	attempts := 0
	err := retry.Do(func() error {
		attempts++
		return op()
	}, retryOptions(ctx, cfg, name, isTransient)...)

	switch {
	case err == nil:
		if attempts > 1 {
			logging.Debug().Str("op", name).Int("attempt", attempts).Msg("succeeded after retry")
		}
		return nil
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return fmt.Errorf("%s cancelled during retry: %w", name, err)
	case isTransient(err):
		return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, err)
	}
	return err
}
