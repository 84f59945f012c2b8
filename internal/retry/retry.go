// Package retry runs fallible operations with exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// Options configures Do.
type Options struct {
	// MaxAttempts counts the first call. Values below 1 mean a single attempt.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// OnRetry is called after a failed attempt that will be retried, with the
	// 1-based attempt number, its error, and the delay before the next attempt.
	OnRetry func(attempt int, err error, delay time.Duration)

	// Abort marks errors that must not be retried. They are returned at once.
	Abort func(error) bool
}

// Delay returns min(base * 2^(attempt-1), max) for a 1-based attempt.
func Delay(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if max > 0 && d >= max {
			return max
		}
	}
	if max > 0 && d > max {
		return max
	}
	return d
}

// Do calls fn until it succeeds, an Abort error occurs, ctx is done, or
// MaxAttempts is reached. The last error is returned unchanged.
func Do[T any](ctx context.Context, opts Options, fn func(context.Context) (T, error)) (T, error) {
	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	builder := retrypolicy.NewBuilder[T]().
		WithMaxRetries(attempts - 1).
		HandleIf(func(_ T, err error) bool {
			return err != nil && (opts.Abort == nil || !opts.Abort(err))
		}).
		ReturnLastFailure()
	if opts.BaseDelay > 0 {
		maxDelay := opts.MaxDelay
		if maxDelay < opts.BaseDelay {
			maxDelay = opts.BaseDelay
		}
		builder = builder.WithBackoff(opts.BaseDelay, maxDelay)
	}
	if opts.OnRetry != nil {
		builder = builder.OnRetryScheduled(func(e failsafe.ExecutionScheduledEvent[T]) {
			opts.OnRetry(e.Attempts(), e.LastError(), Delay(e.Attempts(), opts.BaseDelay, opts.MaxDelay))
		})
	}

	return failsafe.With[T](builder.Build()).WithContext(ctx).Get(func() (T, error) {
		return fn(ctx)
	})
}
