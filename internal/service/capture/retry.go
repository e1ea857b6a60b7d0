package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

// RetryPolicy bounds automatic capture retries after a reconnect.
type RetryPolicy struct {
	Initial    time.Duration
	MaxElapsed time.Duration
	MaxTries   uint64
}

// RetryOnReconnect returns a reconnect handler that drains the pending
// capture queue, backing off exponentially while retryable failures remain.
// Retries stop when stop is done, the policy is exhausted, the device goes
// offline again or only permanent failures are left.
func (s *Service) RetryOnReconnect(stop context.Context, policy RetryPolicy) func(ctx context.Context) {
	return func(ctx context.Context) {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = policy.Initial
		eb.MaxElapsedTime = policy.MaxElapsed

		var b backoff.BackOff = eb
		if policy.MaxTries > 0 {
			b = backoff.WithMaxRetries(b, policy.MaxTries)
		}
		b = backoff.WithContext(b, stop)

		attempt := 0
		op := func() error {
			attempt++
			res, err := s.SyncPendingDreams(ctx)
			switch {
			case errors.Is(err, domain.ErrOffline):
				// The next reconnect edge starts a fresh run.
				return backoff.Permanent(err)
			case err != nil:
				return err
			case res.Failed > 0 && res.Retryable():
				return fmt.Errorf("%d captures still pending", res.Failed)
			}
			return nil
		}

		notify := func(err error, wait time.Duration) {
			s.log.InfoContext(ctx, "pending captures retry scheduled",
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait),
				slog.String("error", err.Error()),
			)
		}

		if err := backoff.RetryNotify(op, b, notify); err != nil {
			s.log.WarnContext(ctx, "pending captures auto-retry gave up",
				slog.Int("attempts", attempt),
				slog.String("error", err.Error()),
			)
		}
	}
}
