// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string // ":memory:" keeps all state process-local
	Sweep       SweepConfig
	Chat        ChatConfig
	RateLimit   RateLimitConfig
}

// SweepConfig controls the idle session and visitor sweeper.
type SweepConfig struct {
	Interval       time.Duration
	SessionIdleTTL time.Duration
	VisitorTTL     time.Duration
}

// ChatConfig controls chat input limits and the typing delay.
type ChatConfig struct {
	TypingDelayBase    time.Duration
	TypingDelayJitter  time.Duration
	MaxMessageLength   int
	MaxRequestBodySize int64
}

// RateLimitConfig controls per-user chat throttling.
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", ":memory:"),
		Sweep: SweepConfig{
			Interval:       getEnvDuration("SWEEP_INTERVAL", 5*time.Minute),
			SessionIdleTTL: getEnvDuration("SESSION_IDLE_TTL", 60*time.Minute),
			VisitorTTL:     getEnvDuration("VISITOR_TTL", 30*24*time.Hour),
		},
		Chat: ChatConfig{
			TypingDelayBase:    getEnvDuration("TYPING_DELAY_BASE", time.Second),
			TypingDelayJitter:  getEnvDuration("TYPING_DELAY_JITTER", time.Second),
			MaxMessageLength:   getEnvInt("MAX_MESSAGE_LENGTH", 500),
			MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 64<<10)),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("RATE_LIMIT_REQUESTS", 30),
			WindowDuration:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Sweep.Interval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be > 0")
	}
	if c.Sweep.SessionIdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be > 0")
	}
	if c.Sweep.VisitorTTL <= 0 {
		return fmt.Errorf("VISITOR_TTL must be > 0")
	}
	if c.Chat.TypingDelayBase < 0 || c.Chat.TypingDelayJitter < 0 {
		return fmt.Errorf("TYPING_DELAY_BASE and TYPING_DELAY_JITTER must be >= 0")
	}
	if c.Chat.MaxMessageLength <= 0 {
		return fmt.Errorf("MAX_MESSAGE_LENGTH must be > 0")
	}
	if c.Chat.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0")
	}
	if c.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be > 0")
	}
	if c.RateLimit.WindowDuration <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env == "development"
	}
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("90s") or bare seconds ("90").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
