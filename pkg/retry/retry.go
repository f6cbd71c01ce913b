package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrTimeout is returned when the overall budget of a Policy runs out. It
// wraps context.DeadlineExceeded.
var ErrTimeout = fmt.Errorf("retry budget exceeded: %w", context.DeadlineExceeded)

// Policy describes capped exponential backoff with an overall timeout.
type Policy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor float64
	MaxDelay      time.Duration
	Timeout       time.Duration

	// Retryable decides whether an error is worth another attempt. Nil
	// retries everything.
	Retryable func(error) bool
	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		BackoffFactor: 2,
		MaxDelay:      10 * time.Second,
		Timeout:       10 * time.Second,
	}
}

// Do runs op until it succeeds, fails permanently, runs out of retries or
// exceeds the policy timeout. The context passed to op carries the timeout.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	runCtx := ctx
	cancel := context.CancelFunc(func() {})
	if p.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, p.Timeout)
	}
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	if b.InitialInterval <= 0 {
		b.InitialInterval = time.Millisecond
	}
	b.Multiplier = p.BackoffFactor
	if b.Multiplier < 1 {
		b.Multiplier = 1
	}
	b.MaxInterval = p.MaxDelay
	if b.MaxInterval <= 0 {
		b.MaxInterval = b.InitialInterval
	}
	b.RandomizationFactor = 0
	b.Reset()

	attempt := 0
	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(max(p.MaxRetries, 0) + 1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			if p.OnRetry != nil {
				p.OnRetry(attempt, err, wait)
			}
		}),
	}

	res, err := backoff.Retry(runCtx, func() (T, error) {
		attempt++
		v, err := op(runCtx)
		if err == nil {
			return v, nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return zero, backoff.Permanent(err)
		}
		return zero, err
	}, opts...)
	if err == nil {
		return res, nil
	}

	// The budget ran out while the caller's own context is still alive.
	if runCtx.Err() != nil && ctx.Err() == nil {
		return zero, fmt.Errorf("%w after %d attempt(s): %w", ErrTimeout, attempt, err)
	}
	return zero, err
}

// Wrap turns op into an operation with the same signature that applies p.
func Wrap[T any](p Policy, op func(ctx context.Context) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		return Do(ctx, p, op)
	}
}

// IsTimeout reports whether err came from an exhausted budget.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
