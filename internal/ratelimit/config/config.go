package config

import "time"

// Lockout policy. These are security constants, not deployment knobs.
const (
	LockoutThreshold = 5
	LockoutDuration  = 15 * time.Minute
)

// Config holds the tunable parts of the limiter.
type Config struct {
	// Backend selects the lockout store: "memory" or "redis".
	Backend string

	// CleanupInterval is how often the in-memory store is swept for stale entries.
	CleanupInterval time.Duration

	// KeyPrefix namespaces lockout keys in a shared Redis.
	KeyPrefix string
}

// DefaultConfig returns the single-instance configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:         "memory",
		CleanupInterval: 5 * time.Minute,
		KeyPrefix:       "jamsession:lockout:",
	}
}
