package config

import "time"

// LoginRateLimitConfig controls the per-client-address counter applied to
// the login endpoint.  A client may make at most MaxAttempts login attempts
// within Window; further attempts are rejected before any credential check
// runs.  The counter lives in Redis so the limit holds across multiple
// server instances; when Redis is unavailable an in-process fallback is
// used, which is correct only for a single instance.
type LoginRateLimitConfig struct {
	Enabled     bool
	MaxAttempts int
	Window      time.Duration
	Prefix      string
	Debug       bool
}

// LoadLoginRateLimitConfig reads environment variables to build a
// LoginRateLimitConfig.  Defaults follow the documented policy of 10
// attempts per rolling 15 minutes.
func LoadLoginRateLimitConfig() LoginRateLimitConfig {
	cfg := LoginRateLimitConfig{
		Enabled:     envBool("LOGIN_RATE_LIMIT_ENABLED", true),
		MaxAttempts: envInt("LOGIN_RATE_LIMIT_MAX", 10),
		Window:      envDur("LOGIN_RATE_LIMIT_WINDOW", 15*time.Minute),
		Prefix:      envStr("LOGIN_RATE_LIMIT_PREFIX", "lr"),
		Debug:       envBool("LOGIN_RATE_LIMIT_DEBUG", false),
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	return cfg
}
