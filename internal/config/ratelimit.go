package config

import "time"

// LoginLimitConfig throttles POST /v1/auth/login per client IP so the
// admin password cannot be guessed at line rate.
type LoginLimitConfig struct {
	Enabled        bool          // LOGIN_LIMIT_ENABLED
	Capacity       int           // LOGIN_LIMIT_BURST, attempts available at once
	RefillInterval time.Duration // LOGIN_LIMIT_REFILL_EVERY, one attempt back per interval
	TTL            time.Duration // LOGIN_LIMIT_TTL, Redis key lifetime
	Prefix         string        // LOGIN_LIMIT_PREFIX
}

// LoadLoginLimitConfig reads the throttle settings and clamps them to
// usable values.
func LoadLoginLimitConfig() LoginLimitConfig {
	c := LoginLimitConfig{
		Enabled:        envBool("LOGIN_LIMIT_ENABLED", true),
		Capacity:       envInt("LOGIN_LIMIT_BURST", 5),
		RefillInterval: envDur("LOGIN_LIMIT_REFILL_EVERY", 12*time.Second),
		TTL:            envDur("LOGIN_LIMIT_TTL", 10*time.Minute),
		Prefix:         envStr("LOGIN_LIMIT_PREFIX", "rl"),
	}
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
		c.TTL = minTTL
	}
	return c
}
