package provider

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when no token can be obtained before the
// caller's deadline.
var ErrRateLimited = errors.New("outbound rate limit reached")

// RateLimiter is a token bucket guarding calls to one upstream API.
type RateLimiter struct {
	mu             sync.Mutex
	tokens         int
	maxTokens      int
	refillInterval time.Duration
	lastRefill     time.Time
	now            func() time.Time
}

// NewRateLimiter allows maxTokens calls in a burst and adds one token every
// refillInterval.
func NewRateLimiter(maxTokens int, refillInterval time.Duration) *RateLimiter {
	if maxTokens <= 0 {
		maxTokens = 1
	}
	return &RateLimiter{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
		now:            time.Now,
	}
}

// Allow takes a token if one is available without waiting.
func (r *RateLimiter) Allow() bool {
	ok, _ := r.take()
	return ok
}

// Wait blocks until a token is available. If the next token would arrive
// after ctx's deadline it fails immediately with ErrRateLimited instead of
// sleeping into a timeout.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		ok, next := r.take()
		if ok {
			return nil
		}
		if deadline, has := ctx.Deadline(); has && r.now().Add(next).After(deadline) {
			return ErrRateLimited
		}

		timer := time.NewTimer(next)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// take returns whether a token was consumed and, if not, how long until the
// next one.
func (r *RateLimiter) take() (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.refillInterval <= 0 {
		return true, 0
	}
	now := r.now()
	if n := int(now.Sub(r.lastRefill) / r.refillInterval); n > 0 {
		r.tokens = min(r.tokens+n, r.maxTokens)
		r.lastRefill = r.lastRefill.Add(time.Duration(n) * r.refillInterval)
	}
	if r.tokens > 0 {
		r.tokens--
		return true, 0
	}
	return false, r.lastRefill.Add(r.refillInterval).Sub(now)
}
