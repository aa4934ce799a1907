// Package retry wraps fallible operations with bounded attempts and a linear
// backoff between them.
package retry

import (
	"context"
	"time"
)

// Defaults applied when a caller passes non-positive values.
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// Do executes op up to attempts times, sleeping baseDelay multiplied by the
// 1-based attempt index after each failure. The last error is returned
// unwrapped once attempts are exhausted. The loop is sequential; backoff
// sleeps honor ctx cancellation.
func Do[T any](ctx context.Context, attempts int, baseDelay time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultDelay
	}

	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if i < attempts-1 {
			if err := sleep(ctx, baseDelay*time.Duration(i+1)); err != nil {
				return zero, err
			}
		}
	}

	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
