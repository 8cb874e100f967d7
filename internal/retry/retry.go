// Package retry provides a bounded fetch-with-retry helper that separates
// retryable absence (no value, no error) from hard errors.
package retry

import (
	"context"
	"time"
)

// DelayFunc returns the delay before the next attempt. attempt starts at 1.
type DelayFunc func(attempt int) time.Duration

// Linear grows the delay by base per attempt: base, 2*base, 3*base, ...
func Linear(base time.Duration) DelayFunc {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * base
	}
}

// SleepFunc waits for d or until ctx is done. Tests substitute a no-op.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Fetch runs fn up to attempts times, serially. fn returning a non-nil
// value ends the loop. Absence (nil, nil) and errors both wait delay(n)
// and retry. After the attempts are spent, the last error is returned if
// any attempt errored; otherwise (nil, nil) reports clean absence.
func Fetch[T any](ctx context.Context, attempts int, delay DelayFunc, sleep SleepFunc, fn func(context.Context) (*T, error)) (*T, error) {
	if sleep == nil {
		sleep = Sleep
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		value, err := fn(ctx)
		if err == nil && value != nil {
			return value, nil
		}
		if err != nil {
			lastErr = err
		}

		if err := sleep(ctx, delay(i + 1)); err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}
