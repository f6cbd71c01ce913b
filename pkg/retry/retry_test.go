package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(retries int) Policy {
	return Policy{
		MaxRetries:    retries,
		InitialDelay:  time.Millisecond,
		BackoffFactor: 2,
		MaxDelay:      4 * time.Millisecond,
		Timeout:       time.Second,
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 || calls != 3 {
		t.Fatalf("expected 42 after 3 calls, got %d after %d", got, calls)
	}
}

func TestDoStopsAfterMaxRetries(t *testing.T) {
	calls := 0
	sentinel := errors.New("down")
	_, err := Do(context.Background(), fastPolicy(2), func(ctx context.Context) (string, error) {
		calls++
		return "", sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 1 attempt + 2 retries, got %d", calls)
	}
}

func TestDoDoesNotRetryPermanentErrors(t *testing.T) {
	calls := 0
	permanent := errors.New("bad request")
	p := fastPolicy(5)
	p.Retryable = func(err error) bool { return !errors.Is(err, permanent) }

	_, err := Do(context.Background(), p, func(ctx context.Context) (int, error) {
		calls++
		return 0, permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestDoReportsTimeout(t *testing.T) {
	p := Policy{
		MaxRetries:    10,
		InitialDelay:  20 * time.Millisecond,
		BackoffFactor: 1,
		MaxDelay:      20 * time.Millisecond,
		Timeout:       30 * time.Millisecond,
	}
	start := time.Now()
	_, err := Do(context.Background(), p, func(ctx context.Context) (int, error) {
		return 0, errors.New("still failing")
	})
	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("timeout should wrap context.DeadlineExceeded")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("timeout budget was not enforced")
	}
}

func TestDoHonorsCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Do(ctx, fastPolicy(3), func(ctx context.Context) (int, error) {
		return 0, ctx.Err()
	})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if IsTimeout(err) {
		t.Fatal("caller cancellation is not a budget timeout")
	}
}

func TestWrapKeepsSignature(t *testing.T) {
	calls := 0
	op := Wrap(fastPolicy(1), func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("once")
		}
		return "ok", nil
	})
	got, err := op(context.Background())
	if err != nil || got != "ok" {
		t.Fatalf("unexpected result %q, %v", got, err)
	}
}

func TestOnRetryCalledBetweenAttempts(t *testing.T) {
	var waits []time.Duration
	p := fastPolicy(3)
	p.OnRetry = func(attempt int, err error, wait time.Duration) {
		waits = append(waits, wait)
	}
	_, _ = Do(context.Background(), p, func(ctx context.Context) (int, error) {
		return 0, errors.New("fail")
	})
	if len(waits) != 3 {
		t.Fatalf("expected 3 retry notifications, got %d", len(waits))
	}
	if waits[0] != time.Millisecond || waits[1] != 2*time.Millisecond || waits[2] != 4*time.Millisecond {
		t.Fatalf("unexpected backoff schedule: %v", waits)
	}
}
