package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config is the server configuration, read from the environment.
type Config struct {
	Port        int
	Storage     string
	DatabaseURL string
	CORSOrigins []string

	AI AIConfig

	PageSize          int
	CommunityHourGoal float64

	LogLevel  string
	LogFormat string // json or console
}

type AIConfig struct {
	OllamaHost      string
	OllamaModel     string
	Enabled         bool
	Timeout         time.Duration
	RateLimitRPS    float64
	BreakerFailures int
	BreakerCooldown time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Port:        getEnvAsInt("PORT", 8081),
		Storage:     strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		AI: AIConfig{
			OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
			OllamaModel:     getEnv("OLLAMA_MODEL", "llama3"),
			Enabled:         getEnvAsBool("AI_SEARCH_ENABLED", true),
			Timeout:         getEnvAsDuration("AI_TIMEOUT", 30*time.Second),
			RateLimitRPS:    getEnvAsFloat("AI_RATE_LIMIT_RPS", 1),
			BreakerFailures: getEnvAsInt("AI_BREAKER_FAILURES", 3),
			BreakerCooldown: getEnvAsDuration("AI_BREAKER_COOLDOWN", 60*time.Second),
		},
		PageSize:          getEnvAsInt("PAGE_SIZE", 9),
		CommunityHourGoal: getEnvAsFloat("COMMUNITY_HOUR_GOAL", 10000),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q: use %s or %s", c.Storage, StoragePostgres, StorageMemory)
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive")
	}
	if c.AI.BreakerFailures < 1 {
		return fmt.Errorf("AI_BREAKER_FAILURES must be at least 1")
	}
	if c.AI.RateLimitRPS < 0 {
		return fmt.Errorf("AI_RATE_LIMIT_RPS must not be negative")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be at least 1")
	}
	if c.CommunityHourGoal <= 0 {
		return fmt.Errorf("COMMUNITY_HOUR_GOAL must be positive")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("invalid LOG_FORMAT %q: use json or console", c.LogFormat)
	}
	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// NewLogger builds the process logger. console selects the development encoder.
func NewLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	if format == "console" {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return config.Build()
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated value, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
