package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORAGE", "AI_SEARCH_ENABLED", "AI_TIMEOUT", "PAGE_SIZE", "CORS_ORIGINS", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.True(t, cfg.AI.Enabled)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 9, cfg.PageSize)
	assert.Equal(t, 10000.0, cfg.CommunityHourGoal)
	assert.Equal(t, ":8081", cfg.Address())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE", "Memory")
	t.Setenv("AI_SEARCH_ENABLED", "false")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.False(t, cfg.AI.Enabled)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestMalformedValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("PAGE_SIZE", "nine")
	t.Setenv("AI_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.PageSize)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:              8081,
			Storage:           StorageMemory,
			AI:                AIConfig{Timeout: time.Second, BreakerFailures: 3},
			PageSize:          9,
			CommunityHourGoal: 100,
			LogLevel:          "info",
			LogFormat:         "json",
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"unknown storage", func(c *Config) { c.Storage = "redis" }},
		{"zero timeout", func(c *Config) { c.AI.Timeout = 0 }},
		{"zero breaker failures", func(c *Config) { c.AI.BreakerFailures = 0 }},
		{"zero page size", func(c *Config) { c.PageSize = 0 }},
		{"zero goal", func(c *Config) { c.CommunityHourGoal = 0 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := NewLogger("debug", format)
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	}
}
