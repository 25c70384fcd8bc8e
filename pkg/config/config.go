package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/protocheck/pkg/cache"
)

// Config holds process-level configuration. Rule configuration lives in
// the project config file loaded by the linter package.
type Config struct {
	// Check run configuration
	Runtime RuntimeConfig

	// Parse cache configuration
	Cache cache.Config

	// Watch mode configuration
	Watch WatchConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// RuntimeConfig bounds a single check run
type RuntimeConfig struct {
	Workers int
	// Timeout of zero means no deadline
	Timeout time.Duration
}

// WatchConfig configures watch mode
type WatchConfig struct {
	Debounce        time.Duration
	ShutdownTimeout time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string

	// Address of the metrics and health server in watch mode; empty
	// disables it
	MetricsAddr string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Runtime:       loadRuntimeConfig(),
		Cache:         loadCacheConfig(),
		Watch:         loadWatchConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Workers: getEnvInt("PROTOCHECK_WORKERS", runtime.GOMAXPROCS(0)),
		Timeout: getEnvDuration("PROTOCHECK_TIMEOUT", 0),
	}
}

func loadCacheConfig() cache.Config {
	cfg := *cache.DefaultConfig()
	if size := getEnvInt("PROTOCHECK_CACHE_SIZE", 0); size > 0 {
		cfg.MaxEntries = size
	}
	cfg.TTL = getEnvDuration("PROTOCHECK_CACHE_TTL", cfg.TTL)
	return cfg
}

func loadWatchConfig() WatchConfig {
	return WatchConfig{
		Debounce:        getEnvDuration("PROTOCHECK_WATCH_DEBOUNCE", 200*time.Millisecond),
		ShutdownTimeout: getEnvDuration("PROTOCHECK_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:    strings.ToLower(getEnv("PROTOCHECK_LOG_LEVEL", "warn")),
		LogFormat:   strings.ToLower(getEnv("PROTOCHECK_LOG_FORMAT", "text")),
		MetricsAddr: getEnv("PROTOCHECK_METRICS_ADDR", ""),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Runtime.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Runtime.Workers)
	}
	if c.Runtime.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache TTL must not be negative")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must not be negative")
	}

	if _, err := logrus.ParseLevel(c.Observability.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Observability.LogLevel)
	}
	switch c.Observability.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Observability.LogFormat)
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
