package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("PROTOCHECK_TEST_VAR", "custom")

	assert.Equal(t, "custom", getEnv("PROTOCHECK_TEST_VAR", "default"))
	assert.Equal(t, "default", getEnv("PROTOCHECK_TEST_VAR_NOT_SET", "default"))
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     int
	}{
		{name: "valid", envValue: "42", want: 42},
		{name: "invalid falls back", envValue: "many", want: 7},
		{name: "unset falls back", envValue: "", want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PROTOCHECK_TEST_INT", tt.envValue)
			assert.Equal(t, tt.want, getEnvInt("PROTOCHECK_TEST_INT", 7))
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     time.Duration
	}{
		{name: "valid", envValue: "5s", want: 5 * time.Second},
		{name: "invalid falls back", envValue: "soon", want: time.Minute},
		{name: "unset falls back", envValue: "", want: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PROTOCHECK_TEST_DURATION", tt.envValue)
			assert.Equal(t, tt.want, getEnvDuration("PROTOCHECK_TEST_DURATION", time.Minute))
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, cfg.Runtime.Workers, 1)
	assert.Zero(t, cfg.Runtime.Timeout)
	assert.Equal(t, 1024, cfg.Cache.MaxEntries)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 200*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, "warn", cfg.Observability.LogLevel)
	assert.Equal(t, "text", cfg.Observability.LogFormat)
	assert.Empty(t, cfg.Observability.MetricsAddr)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PROTOCHECK_WORKERS", "3")
	t.Setenv("PROTOCHECK_TIMEOUT", "30s")
	t.Setenv("PROTOCHECK_CACHE_SIZE", "16")
	t.Setenv("PROTOCHECK_CACHE_TTL", "0")
	t.Setenv("PROTOCHECK_LOG_LEVEL", "DEBUG")
	t.Setenv("PROTOCHECK_LOG_FORMAT", "json")
	t.Setenv("PROTOCHECK_METRICS_ADDR", ":9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Runtime.Workers)
	assert.Equal(t, 30*time.Second, cfg.Runtime.Timeout)
	assert.Equal(t, 16, cfg.Cache.MaxEntries)
	assert.Zero(t, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Equal(t, "json", cfg.Observability.LogFormat)
	assert.Equal(t, ":9090", cfg.Observability.MetricsAddr)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{name: "zero workers", key: "PROTOCHECK_WORKERS", value: "0", want: "workers"},
		{name: "negative timeout", key: "PROTOCHECK_TIMEOUT", value: "-1s", want: "timeout"},
		{name: "bad log level", key: "PROTOCHECK_LOG_LEVEL", value: "chatty", want: "log level"},
		{name: "bad log format", key: "PROTOCHECK_LOG_FORMAT", value: "xml", want: "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
