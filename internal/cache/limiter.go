package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one rate-limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// counter is the subset of *redis.Client the window limiter needs.
type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

func decide(count int64, limit int, window time.Duration, now time.Time) Decision {
	d := Decision{Allowed: count <= int64(limit), Limit: limit}
	if rem := int64(limit) - count; rem > 0 {
		d.Remaining = int(rem)
	}
	if !d.Allowed {
		elapsed := time.Duration(now.UnixNano() % int64(window))
		d.RetryAfter = window - elapsed
	}
	return d
}

// WindowLimiter keeps the counters in Redis so that every replica shares
// them. Each window gets its own key that expires with the window.
type WindowLimiter struct {
	client counter
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewWindowLimiter(client counter, prefix string, limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{client: client, prefix: prefix, limit: limit, window: window, now: time.Now}
}

func (l *WindowLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	slot := now.UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("incr %s: %w", redisKey, err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("expire %s: %w", redisKey, err)
		}
	}
	return decide(count, l.limit, l.window, now), nil
}

// MemoryLimiter is the single-process fallback used when Redis is not
// configured.
type MemoryLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	slot   int64
	counts map[string]int64
	now    func() time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{limit: limit, window: window, counts: make(map[string]int64), now: time.Now}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()
	slot := now.UnixNano() / int64(l.window)

	l.mu.Lock()
	if slot != l.slot {
		l.slot = slot
		clear(l.counts)
	}
	l.counts[key]++
	count := l.counts[key]
	l.mu.Unlock()

	return decide(count, l.limit, l.window, now), nil
}
