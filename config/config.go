package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort          string
	DatabaseURL         string
	LogLevel            string
	CountriesAPIURL     string
	ExchangeRatesAPIURL string
	SummaryImagePath    string
	HTTPTimeoutSeconds  string
	DBMaxOpenConns      string
	DBMaxIdleConns      string
}

// DatabasePoolConfig holds connection pool configuration for the record store
type DatabasePoolConfig struct {
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	PingTimeout     time.Duration `json:"ping_timeout"`
}

// DefaultDatabasePoolConfig returns the default pool sizing. Callers queue on
// the pool rather than failing when it is exhausted.
func DefaultDatabasePoolConfig() *DatabasePoolConfig {
	return &DatabasePoolConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// GetHTTPTimeout returns the upstream request timeout from environment or default
func (c *Config) GetHTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds == "" {
		return 30 * time.Second
	}

	seconds, err := strconv.Atoi(c.HTTPTimeoutSeconds)
	if err != nil || seconds <= 0 {
		logrus.Warnf("Invalid HTTP_TIMEOUT_SECONDS value: %s, using default 30 seconds", c.HTTPTimeoutSeconds)
		return 30 * time.Second
	}

	return time.Duration(seconds) * time.Second
}

// GetDatabasePoolConfig returns pool settings with environment overrides applied
func (c *Config) GetDatabasePoolConfig() *DatabasePoolConfig {
	pool := DefaultDatabasePoolConfig()

	if c.DBMaxOpenConns != "" {
		if n, err := strconv.Atoi(c.DBMaxOpenConns); err == nil && n > 0 {
			pool.MaxOpenConns = n
		} else {
			logrus.Warnf("Invalid DB_MAX_OPEN_CONNS value: %s, using default %d", c.DBMaxOpenConns, pool.MaxOpenConns)
		}
	}

	if c.DBMaxIdleConns != "" {
		if n, err := strconv.Atoi(c.DBMaxIdleConns); err == nil && n > 0 {
			pool.MaxIdleConns = n
		} else {
			logrus.Warnf("Invalid DB_MAX_IDLE_CONNS value: %s, using default %d", c.DBMaxIdleConns, pool.MaxIdleConns)
		}
	}

	return pool
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		CountriesAPIURL:     getEnv("COUNTRIES_API_URL", "https://restcountries.com/v2/all?fields=name,capital,region,population,flag,currencies"),
		ExchangeRatesAPIURL: getEnv("EXCHANGE_RATES_API_URL", "https://open.er-api.com/v6/latest/USD"),
		SummaryImagePath:    getEnv("SUMMARY_IMAGE_PATH", "cache/summary.png"),
		HTTPTimeoutSeconds:  getEnv("HTTP_TIMEOUT_SECONDS", "30"),
		DBMaxOpenConns:      getEnv("DB_MAX_OPEN_CONNS", "10"),
		DBMaxIdleConns:      getEnv("DB_MAX_IDLE_CONNS", "5"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
