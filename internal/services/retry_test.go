package services

import (
	"context"
	"errors"
	"testing"
	"time"
	apierrors "weatherbot/internal/lib/errors"
)

func TestRetry_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), 3, time.Millisecond,
		func(context.Context) (string, error) {
			calls++
			return "ok", nil
		})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if got != "ok" || calls != 1 {
		t.Errorf("got %q after %d calls, want %q after 1", got, calls, "ok")
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), 3, time.Millisecond,
		func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, apierrors.Transient(errors.New("flaky upstream"))
			}
			return 42, nil
		})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if got != 42 || calls != 3 {
		t.Errorf("got %d after %d calls, want 42 after 3", got, calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	failure := apierrors.Transient(errors.New("still down"))
	calls := 0
	_, err := Retry(context.Background(), 3, time.Millisecond,
		func(context.Context) (int, error) {
			calls++
			return 0, failure
		})
	if calls != 3 {
		t.Fatalf("op called %d times, want exactly 3", calls)
	}

	var exhausted *apierrors.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error = %v, want *ExhaustedError", err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", exhausted.Attempts)
	}
	if !errors.Is(err, failure) {
		t.Error("exhausted error should wrap the last failure")
	}
}

func TestRetry_NonTransientAbortsImmediately(t *testing.T) {
	fatal := errors.New("bad coordinates")
	calls := 0
	_, err := Retry(context.Background(), 3, time.Millisecond,
		func(context.Context) (int, error) {
			calls++
			return 0, fatal
		})
	if calls != 1 {
		t.Fatalf("op called %d times, want 1 for a permanent failure", calls)
	}
	if !errors.Is(err, fatal) {
		t.Errorf("error = %v, want the original failure", err)
	}
}

func TestRetry_ContextCancelsTheWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	start := time.Now()
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Retry(ctx, 3, time.Hour,
		func(context.Context) (int, error) {
			calls++
			return 0, apierrors.Transient(errors.New("down"))
		})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
	if time.Since(start) > time.Second {
		t.Error("cancellation should interrupt the inter-attempt delay")
	}
}
