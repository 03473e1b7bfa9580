package vd

import (
	"context"
	"errors"
	"fmt"

	"github.com/avast/retry-go/v4"

	"github.com/yourusername/vdm-cli/internal/logging"
)

var errSingleDesktop = errors.New("shell reports a single desktop")

// VerifyDesktopCount reads the desktop count at startup. Early in a session
// the shell can report a single desktop before it has loaded the rest, so a
// count of exactly one is re-read after cfg.Delay until it changes or the
// attempts run out. A count of one that never changes is accepted, as is a
// count of one followed by failed re-reads.
func VerifyDesktopCount(ctx context.Context, b Backend, cfg RetryConfig) (int, error) {
	count, attempts := 0, 0
	err := retry.Do(func() error {
		attempts++
		n, err := b.DesktopCount()
		if err != nil {
			return err
		}
		count = n
		if n == 1 {
			return errSingleDesktop
		}
		return nil
	}, retryOptions(ctx, cfg, "desktop count", func(err error) bool {
		return isTransient(err) || errors.Is(err, errSingleDesktop)
	})...)

	switch {
	case err == nil:
		if attempts > 1 {
			logging.Info().Int("count", count).Int("attempt", attempts).Msg("desktop count settled")
		}
		return count, nil
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return count, err
	case count == 1:
		return count, nil
	case isTransient(err):
		return 0, fmt.Errorf("desktop count failed after %d attempts: %w", attempts, err)
	}
	return 0, err
}
