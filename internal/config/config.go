// Package config provides environment-driven configuration for batchmates.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL          Secret
	Port                 string
	ListenHost           string
	CORSOrigins          []string
	LogLevel             string
	LogFormat            string
	ProfilesFile         string
	InterestMappingsFile string
	DBMaxConns           int
	NeighborCacheSize    int
	NeighborCacheTTL     time.Duration
	SessionTTL           time.Duration
	MaxSessions          int
	RateLimit            float64
	RateBurst            int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:          Secret(envOrDefault("DATABASE_URL", "")),
		Port:                 envOrDefault("PORT", "8080"),
		ListenHost:           envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:             envOrDefault("LOG_LEVEL", "info"),
		LogFormat:            envOrDefault("LOG_FORMAT", "json"),
		ProfilesFile:         envOrDefault("PROFILES_FILE", "./data/zulip_intros_json.json"),
		InterestMappingsFile: envOrDefault("INTEREST_MAPPINGS_FILE", "./data/interest_mappings.json"),
	}

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	var err error

	if cfg.DBMaxConns, err = envInt("DB_MAX_CONNS", 10); err != nil {
		return nil, err
	}

	if cfg.NeighborCacheSize, err = envInt("NEIGHBOR_CACHE_SIZE", 1024); err != nil {
		return nil, err
	}

	if cfg.MaxSessions, err = envInt("MAX_SESSIONS", 1000); err != nil {
		return nil, err
	}

	if cfg.RateBurst, err = envInt("RATE_BURST", 200); err != nil {
		return nil, err
	}

	if cfg.NeighborCacheTTL, err = envDuration("NEIGHBOR_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}

	if cfg.SessionTTL, err = envDuration("SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}

	rate, err := strconv.ParseFloat(envOrDefault("RATE_LIMIT", "100"), 64)
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT must be a number: %w", err)
	}
	cfg.RateLimit = rate

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 5m: %w", key, err)
	}

	return d, nil
}
