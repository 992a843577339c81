package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "") // restores the original value after the test
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "PORT", "DB_PATH", "SWEEP_INTERVAL", "SESSION_IDLE_TTL", "VISITOR_TTL",
		"TYPING_DELAY_BASE", "TYPING_DELAY_JITTER", "MAX_MESSAGE_LENGTH", "MAX_REQUEST_BODY_SIZE",
		"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, ":memory:", cfg.DBPath)
	require.Equal(t, 5*time.Minute, cfg.Sweep.Interval)
	require.Equal(t, time.Hour, cfg.Sweep.SessionIdleTTL)
	require.Equal(t, time.Second, cfg.Chat.TypingDelayBase)
	require.Equal(t, time.Second, cfg.Chat.TypingDelayJitter)
	require.Equal(t, 500, cfg.Chat.MaxMessageLength)
	require.EqualValues(t, 64<<10, cfg.Chat.MaxRequestBodySize)
	require.Equal(t, 30, cfg.RateLimit.RequestsPerWindow)
	require.Equal(t, time.Minute, cfg.RateLimit.WindowDuration)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/campus.db")
	t.Setenv("SESSION_IDLE_TTL", "90")
	t.Setenv("TYPING_DELAY_JITTER", "250ms")
	t.Setenv("MAX_MESSAGE_LENGTH", "120")
	t.Setenv("RATE_LIMIT_WINDOW", "garbage")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "/tmp/campus.db", cfg.DBPath)
	require.Equal(t, 90*time.Second, cfg.Sweep.SessionIdleTTL)
	require.Equal(t, 250*time.Millisecond, cfg.Chat.TypingDelayJitter)
	require.Equal(t, 120, cfg.Chat.MaxMessageLength)
	require.Equal(t, time.Minute, cfg.RateLimit.WindowDuration)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"PORT":                "",
		"DB_PATH":             "",
		"SWEEP_INTERVAL":      "0s",
		"VISITOR_TTL":         "-1h",
		"TYPING_DELAY_BASE":   "-1s",
		"MAX_MESSAGE_LENGTH":  "0",
		"RATE_LIMIT_REQUESTS": "-5",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			require.ErrorContains(t, err, key)
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "")
	require.True(t, (&Config{}).IsDevelopment())
	require.True(t, (&Config{FrontendURL: "http://localhost:5173"}).IsDevelopment())
	require.False(t, (&Config{FrontendURL: "https://campus.example.edu"}).IsDevelopment())

	t.Setenv("APP_ENV", "development")
	require.True(t, (&Config{FrontendURL: "https://campus.example.edu"}).IsDevelopment())
}
