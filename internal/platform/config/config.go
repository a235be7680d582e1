package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	platformstrings "jamsession/pkg/platform/strings"
)

// DevSessionSecret signs tokens when SESSION_SECRET is unset. It is public,
// so any deployment running with it accepts forged sessions.
const DevSessionSecret = "datajam-dev-secret-change-in-production-2024"

const (
	defaultAddr      = ":8080"
	defaultPortalURL = "https://datajamportal.com"
	defaultOrigin    = "https://preview.data-jam.com"
)

// DefaultAllowedOrigins are the browser origins of the installer app.
var DefaultAllowedOrigins = []string{
	"https://preview.data-jam.com",
	"https://data-jam.com",
	"https://www.data-jam.com",
	"http://localhost:8888",
	"http://localhost:3000",
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	Production     bool
	SessionSecret  string
	UsingDevSecret bool
	AccessGateURL  string
	PortalURL      string
	CORS           CORSConfig
	TrustedProxies []string
	Redis          RedisConfig
	RateLimit      RateLimitConfig
}

// CORSConfig is the origin allow-list of the session endpoints.
type CORSConfig struct {
	AllowedOrigins []string
	DefaultOrigin  string
}

// RedisConfig holds connection settings for the shared lockout store.
// An empty URL keeps lockouts in process memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RateLimitConfig tunes the lockout store housekeeping. Thresholds are fixed.
type RateLimitConfig struct {
	CleanupInterval time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	environment := envOr("ENVIRONMENT", os.Getenv("NODE_ENV"))
	cfg := Server{
		Addr:          envOr("JAMSESSION_ADDR", defaultAddr),
		Environment:   environment,
		Production:    isProduction(environment),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		AccessGateURL: os.Getenv("ACCESS_GATE_URL"),
		PortalURL:     envOr("PORTAL_URL", defaultPortalURL),
		CORS: CORSConfig{
			AllowedOrigins: platformstrings.SplitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
			DefaultOrigin:  envOr("CORS_DEFAULT_ORIGIN", defaultOrigin),
		},
		TrustedProxies: platformstrings.SplitList(os.Getenv("TRUSTED_PROXIES")),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		RateLimit: RateLimitConfig{
			CleanupInterval: envDuration("RATELIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		},
	}

	if cfg.SessionSecret == "" {
		// The development secret is public; signing with it in production
		// would let anyone mint a session.
		if cfg.Production {
			return cfg, errors.New("SESSION_SECRET is required in production")
		}
		cfg.SessionSecret = DevSessionSecret
		cfg.UsingDevSecret = true
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
		if cfg.Production {
			cfg.Environment = "production"
		}
	}

	if cfg.AccessGateURL == "" {
		return cfg, errors.New("ACCESS_GATE_URL is required")
	}
	return cfg, nil
}

// isProduction treats every deployment as production unless it is explicitly
// a local dev server. Secure cookies are the safe default.
func isProduction(environment string) bool {
	if environment == "production" || os.Getenv("CONTEXT") == "production" {
		return true
	}
	if environment == "development" || environment == "test" {
		return false
	}
	return os.Getenv("NETLIFY_DEV") == ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
