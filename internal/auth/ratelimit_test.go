package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agrisense/pathotrack/internal/config"
)

func limiterConfig() config.LoginRateLimitConfig {
	return config.LoginRateLimitConfig{
		Enabled:     true,
		MaxAttempts: 10,
		Window:      15 * time.Minute,
		Prefix:      "lr",
	}
}

func TestMemoryLimiterBoundary(t *testing.T) {
	l := NewMemoryLimiter(limiterConfig())
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		assert.True(t, l.Allow(ctx, "198.51.100.7"), "attempt %d should be allowed", i)
	}
	// The 11th attempt within the window is rejected regardless of
	// credentials, which are never checked at this point.
	assert.False(t, l.Allow(ctx, "198.51.100.7"))
	assert.False(t, l.Allow(ctx, "198.51.100.7"))
}

func TestMemoryLimiterWindowReset(t *testing.T) {
	l := NewMemoryLimiter(limiterConfig())
	ctx := context.Background()

	base := time.Date(2025, 7, 30, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	for i := 0; i < 11; i++ {
		l.Allow(ctx, "198.51.100.7")
	}
	assert.False(t, l.Allow(ctx, "198.51.100.7"))

	// Once the window elapses the counter starts fresh.
	l.now = func() time.Time { return base.Add(15*time.Minute + time.Second) }
	assert.True(t, l.Allow(ctx, "198.51.100.7"))
}

func TestMemoryLimiterIsolatesAddresses(t *testing.T) {
	l := NewMemoryLimiter(limiterConfig())
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		l.Allow(ctx, "198.51.100.7")
	}
	assert.False(t, l.Allow(ctx, "198.51.100.7"))
	assert.True(t, l.Allow(ctx, "203.0.113.9"), "other clients keep their own budget")
}

func TestMemoryLimiterDropsStaleWindows(t *testing.T) {
	l := NewMemoryLimiter(limiterConfig())
	ctx := context.Background()

	base := time.Date(2025, 7, 30, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }
	for i := 0; i < 50; i++ {
		l.Allow(ctx, fmt.Sprintf("10.0.0.%d", i))
	}
	assert.Len(t, l.windows, 50)

	l.now = func() time.Time { return base.Add(time.Hour) }
	l.Allow(ctx, "10.0.1.1")
	assert.Len(t, l.windows, 1, "expired windows are pruned opportunistically")
}

func TestNewLoginLimiterDisabled(t *testing.T) {
	cfg := limiterConfig()
	cfg.Enabled = false
	l := NewLoginLimiter(cfg, nil)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow(context.Background(), "198.51.100.7"))
	}
}
