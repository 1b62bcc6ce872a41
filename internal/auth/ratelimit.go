package auth

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agrisense/pathotrack/internal/config"
)

// LoginLimiter caps login attempts per client address.  Allow consumes one
// attempt and reports whether the caller may proceed; it runs before any
// credential check so a locked-out client learns nothing about accounts.
type LoginLimiter interface {
	Allow(ctx context.Context, addr string) bool
}

// NewLoginLimiter picks the Redis-backed limiter when a client is available
// and otherwise falls back to the in-process one.  The in-process limiter
// is only correct for a single server instance; with multiple instances
// behind a load balancer each instance counts separately.
func NewLoginLimiter(cfg config.LoginRateLimitConfig, rdb *redis.Client) LoginLimiter {
	if !cfg.Enabled {
		return allowAll{}
	}
	if rdb != nil {
		return &redisLimiter{cfg: cfg, rdb: rdb}
	}
	log.Printf("login-limiter: redis unavailable, using in-process fallback (single-instance only)")
	return NewMemoryLimiter(cfg)
}

type allowAll struct{}

func (allowAll) Allow(context.Context, string) bool { return true }

// redisLimiter implements a fixed window counter: INCR the per-address key,
// set the window TTL when the key is fresh, deny once the count exceeds the
// budget.  Shared state in Redis keeps the limit consistent across server
// instances.  On Redis errors it fails open, matching how the rest of the
// app degrades when Redis drops out.
type redisLimiter struct {
	cfg config.LoginRateLimitConfig
	rdb *redis.Client
}

func (l *redisLimiter) Allow(ctx context.Context, addr string) bool {
	key := l.cfg.Prefix + ":ip:" + addr
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		if l.cfg.Debug {
			log.Printf("login-limiter: redis incr failed for %s: %v", key, err)
		}
		return true
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, key, l.cfg.Window).Err(); err != nil && l.cfg.Debug {
			log.Printf("login-limiter: redis expire failed for %s: %v", key, err)
		}
	}
	return n <= int64(l.cfg.MaxAttempts)
}

// MemoryLimiter is the single-instance fallback: a mutex-guarded map of
// per-address windows.  Stale entries are dropped opportunistically on each
// call so the map does not grow without bound.
type MemoryLimiter struct {
	cfg config.LoginRateLimitConfig

	mu      sync.Mutex
	windows map[string]*window

	now func() time.Time // injectable clock for boundary tests
}

type window struct {
	count   int
	resetAt time.Time
}

func NewMemoryLimiter(cfg config.LoginRateLimitConfig) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:     cfg,
		windows: make(map[string]*window),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, w := range l.windows {
		if !w.resetAt.After(now) {
			delete(l.windows, k)
		}
	}

	w := l.windows[addr]
	if w == nil {
		w = &window{resetAt: now.Add(l.cfg.Window)}
		l.windows[addr] = w
	}
	w.count++
	return w.count <= l.cfg.MaxAttempts
}
