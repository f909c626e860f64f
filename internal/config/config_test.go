package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "API_BASE_URL", "API_TIMEOUT_SECONDS", "HISTORY_LIMIT", "TOKEN_STORE",
		"TOKEN_TTL_HOURS", "COOKIE_NAME", "COOKIE_SECURE", "CHECK_TOKEN_EXPIRY", "EVENTS_ENABLED", "WORKER_CONCURRENCY"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	require.Equal(t, 60*time.Second, cfg.APITimeout)
	require.Equal(t, 1000, cfg.HistoryLimit)
	require.Equal(t, TokenStoreMemory, cfg.TokenStore)
	require.Zero(t, cfg.TokenTTL)
	require.Equal(t, "gc_sid", cfg.CookieName)
	require.False(t, cfg.CookieSecure)
	require.True(t, cfg.CheckTokenExpiry)
	require.False(t, cfg.EventsEnabled)
	require.Equal(t, 2, cfg.WorkerConcurrency)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("API_BASE_URL", "https://api.example.com/")
	t.Setenv("API_TIMEOUT_SECONDS", "5")
	t.Setenv("TOKEN_STORE", "Redis")
	t.Setenv("TOKEN_TTL_HOURS", "12")
	t.Setenv("CHECK_TOKEN_EXPIRY", "false")
	t.Setenv("WORKER_CONCURRENCY", "500")

	cfg := Load()

	require.Equal(t, "127.0.0.1:9000", cfg.Addr)
	require.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	require.Equal(t, 5*time.Second, cfg.APITimeout)
	require.Equal(t, TokenStoreRedis, cfg.TokenStore)
	require.Equal(t, 12*time.Hour, cfg.TokenTTL)
	require.False(t, cfg.CheckTokenExpiry)
	require.Equal(t, 50, cfg.WorkerConcurrency)
}
