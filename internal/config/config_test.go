package config

import (
	"testing"
	"time"

	"github.com/aristath/etfadvisor/internal/modules/baskets"
	"github.com/aristath/etfadvisor/internal/modules/display"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.False(t, cfg.DevMode)
	assert.Empty(t, cfg.CatalogPath)
	assert.Equal(t, display.LevelMedium, cfg.KnowledgeLevel)
	assert.Equal(t, baskets.PolicyUnfiltered, cfg.OverlapPolicy)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, "@every 5m", cfg.SessionSweep)
	assert.Equal(t, 20.0, cfg.RateLimit)
	assert.Equal(t, 40, cfg.RateBurst)
	assert.Equal(t, 256, cfg.CacheSize)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ADVISOR_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("ADVISOR_KNOWLEDGE_LEVEL", "HIGH")
	t.Setenv("ADVISOR_OVERLAP_POLICY", "soft-cap")
	t.Setenv("ADVISOR_SESSION_TTL_MINUTES", "15")
	t.Setenv("ADVISOR_SESSION_SWEEP", "*/2 * * * *")
	t.Setenv("ADVISOR_RATE_LIMIT", "0")
	t.Setenv("ADVISOR_CACHE_SIZE", "0")
	t.Setenv("ADVISOR_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, display.LevelHigh, cfg.KnowledgeLevel)
	assert.Equal(t, baskets.PolicySoftCap, cfg.OverlapPolicy)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 0.0, cfg.RateLimit)
	assert.Equal(t, 0, cfg.CacheSize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"level", "ADVISOR_KNOWLEDGE_LEVEL", "guru"},
		{"policy", "ADVISOR_OVERLAP_POLICY", "strict"},
		{"port", "ADVISOR_PORT", "70000"},
		{"ttl", "ADVISOR_SESSION_TTL_MINUTES", "0"},
		{"sweep", "ADVISOR_SESSION_SWEEP", "whenever"},
		{"rate", "ADVISOR_RATE_LIMIT", "-1"},
		{"cache", "ADVISOR_CACHE_SIZE", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestGetEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_FLOAT", "1.2.3")
	t.Setenv("X_LIST", " , ")

	assert.Equal(t, 7, getEnvAsInt("X_INT", 7))
	assert.True(t, getEnvAsBool("X_BOOL", true))
	assert.Equal(t, 2.5, getEnvAsFloat("X_FLOAT", 2.5))
	assert.Equal(t, []string{"d"}, getEnvAsList("X_LIST", []string{"d"}))
}
