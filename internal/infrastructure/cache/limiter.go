package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts requests per key in fixed windows
type Limiter interface {
	// Allow records one hit for key and reports whether it is within the limit.
	// When it is not, retryAfter tells when the window resets.
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// RedisLimiter shares counters between instances through Redis
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

// NewRedisLimiter allows limit hits per window for each key
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
		prefix: "acta:ratelimit:",
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := l.prefix + key

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	if count <= l.limit {
		return true, 0, nil
	}

	ttl, err := l.client.PTTL(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit ttl: %w", err)
	}
	if ttl < 0 {
		// counter lost its expiry, start a fresh window
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("rate limit expire: %w", err)
		}
		ttl = l.window
	}
	return false, ttl, nil
}

// MemoryLimiter is a single instance limiter with periodic cleanup of expired windows
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	limit   int
	window  time.Duration
	now     func() time.Time
	stop    chan struct{}
}

type memoryWindow struct {
	count      int
	expireTime time.Time
}

// NewMemoryLimiter creates an in-memory limiter. Call Close to stop its cleanup goroutine.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		windows: make(map[string]*memoryWindow),
		limit:   limit,
		window:  window,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	go l.cleanupExpired(5 * time.Minute)

	return l
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.expireTime) {
		w = &memoryWindow{expireTime: now.Add(l.window)}
		l.windows[key] = w
	}

	w.count++
	if w.count <= l.limit {
		return true, 0, nil
	}
	return false, w.expireTime.Sub(now), nil
}

// Close stops the cleanup goroutine
func (l *MemoryLimiter) Close() {
	close(l.stop)
}

// cleanupExpired periodically removes expired windows
func (l *MemoryLimiter) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for key, w := range l.windows {
				if !now.Before(w.expireTime) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
