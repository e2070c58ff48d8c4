package services

import (
	"context"
	"time"
	apierrors "weatherbot/internal/lib/errors"
)

// Retry invokes op up to attempts times with a fixed delay between
// attempts, returning the first success immediately. The delay stays
// constant: the policy smooths over brief provider hiccups, it does
// not try to outlast a sustained outage. Failures not classified as
// transient abort right away, and so does context cancellation.
// After exhausting all attempts it returns an *errors.ExhaustedError
// carrying the last failure.
func Retry[T any](ctx context.Context, attempts int, delay time.Duration, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !apierrors.IsTransient(err) {
			return zero, err
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, &apierrors.ExhaustedError{Attempts: attempts, Last: lastErr}
}
