package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPTimeout(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"default when empty", "", 30 * time.Second},
		{"parsed from seconds", "10", 10 * time.Second},
		{"default on garbage", "ten", 30 * time.Second},
		{"default on non-positive", "0", 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{HTTPTimeoutSeconds: tt.value}
			assert.Equal(t, tt.want, cfg.GetHTTPTimeout())
		})
	}
}

func TestGetDatabasePoolConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := &Config{}
		pool := cfg.GetDatabasePoolConfig()
		assert.Equal(t, 10, pool.MaxOpenConns)
		assert.Equal(t, 5, pool.MaxIdleConns)
	})

	t.Run("environment overrides", func(t *testing.T) {
		cfg := &Config{DBMaxOpenConns: "25", DBMaxIdleConns: "8"}
		pool := cfg.GetDatabasePoolConfig()
		assert.Equal(t, 25, pool.MaxOpenConns)
		assert.Equal(t, 8, pool.MaxIdleConns)
	})

	t.Run("invalid values fall back to defaults", func(t *testing.T) {
		cfg := &Config{DBMaxOpenConns: "lots", DBMaxIdleConns: "-3"}
		pool := cfg.GetDatabasePoolConfig()
		assert.Equal(t, 10, pool.MaxOpenConns)
		assert.Equal(t, 5, pool.MaxIdleConns)
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.NotEmpty(t, cfg.CountriesAPIURL)
	assert.NotEmpty(t, cfg.ExchangeRatesAPIURL)
	assert.Equal(t, "cache/summary.png", cfg.SummaryImagePath)
}
