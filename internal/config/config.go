// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/etfadvisor/internal/modules/baskets"
	"github.com/aristath/etfadvisor/internal/modules/display"
	"github.com/aristath/etfadvisor/internal/scheduler"
	"github.com/joho/godotenv"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration
type Config struct {
	Port           int
	LogLevel       string
	LogPretty      bool
	DevMode        bool
	CatalogPath    string // Empty uses the embedded catalog
	KnowledgeLevel display.KnowledgeLevel
	OverlapPolicy  baskets.Policy
	SessionTTL     time.Duration
	SessionSweep   string  // Cron spec for the idle session sweep
	RateLimit      float64 // Requests per second per client, 0 disables limiting
	RateBurst      int
	CacheSize      int // Advice cache entries, 0 disables caching
	AllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	level, err := display.ParseLevel(getEnv("ADVISOR_KNOWLEDGE_LEVEL", string(display.DefaultLevel)))
	if err != nil {
		return nil, fmt.Errorf("%w: ADVISOR_KNOWLEDGE_LEVEL: %v", ErrInvalidConfig, err)
	}
	policy, err := baskets.ParsePolicy(getEnv("ADVISOR_OVERLAP_POLICY", string(baskets.PolicyUnfiltered)))
	if err != nil {
		return nil, fmt.Errorf("%w: ADVISOR_OVERLAP_POLICY: %v", ErrInvalidConfig, err)
	}

	rateLimit := getEnvAsFloat("ADVISOR_RATE_LIMIT", 20)
	cfg := &Config{
		Port:           getEnvAsInt("ADVISOR_PORT", 8001),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      getEnvAsBool("LOG_PRETTY", true),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		CatalogPath:    getEnv("ADVISOR_CATALOG_PATH", ""),
		KnowledgeLevel: level,
		OverlapPolicy:  policy,
		SessionTTL:     time.Duration(getEnvAsInt("ADVISOR_SESSION_TTL_MINUTES", 60)) * time.Minute,
		SessionSweep:   getEnv("ADVISOR_SESSION_SWEEP", "@every 5m"),
		RateLimit:      rateLimit,
		RateBurst:      getEnvAsInt("ADVISOR_RATE_BURST", int(rateLimit*2)),
		CacheSize:      getEnvAsInt("ADVISOR_CACHE_SIZE", 256),
		AllowedOrigins: getEnvAsList("ADVISOR_ALLOWED_ORIGINS", []string{"*"}),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration holds usable values
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if _, err := display.Lookup(c.KnowledgeLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := baskets.ParsePolicy(string(c.OverlapPolicy)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: session ttl must be positive", ErrInvalidConfig)
	}
	if err := scheduler.ValidateSchedule(c.SessionSweep); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidConfig)
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("%w: rate burst must be at least 1", ErrInvalidConfig)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: cache size must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
