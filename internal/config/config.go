package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	Addr                    string
	DBPath                  string
	LogLevel                string
	StoreBackend            string
	RedisAddr               string
	RedisDB                 int
	RedisPrefix             string
	Timezone                string
	CatalogPath             string
	RolloverIntervalSeconds int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	return Config{
		Addr:                    envOr("ADDR", ":8080"),
		DBPath:                  envOr("DB_PATH", "file:revplan.db"),
		LogLevel:                envOr("LOG_LEVEL", "INFO"),
		StoreBackend:            strings.ToLower(envOr("STORE_BACKEND", BackendSQLite)),
		RedisAddr:               envOr("REDIS_ADDR", ""),
		RedisDB:                 envIntOr("REDIS_DB", 0),
		RedisPrefix:             envOr("REDIS_PREFIX", "revplan:"),
		Timezone:                envOr("TIMEZONE", "Local"),
		CatalogPath:             envOr("CATALOG_PATH", ""),
		RolloverIntervalSeconds: envIntOr("ROLLOVER_INTERVAL_SECONDS", 60),
	}
}

// Validate checks the configuration and reports every invalid value at once.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, fmt.Errorf("ADDR cannot be empty"))
	}
	switch c.StoreBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			errs = append(errs, fmt.Errorf("DB_PATH cannot be empty"))
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, fmt.Errorf("REDIS_ADDR is required when STORE_BACKEND=redis"))
		}
		if c.RedisDB < 0 {
			errs = append(errs, fmt.Errorf("REDIS_DB must be >= 0, got %d", c.RedisDB))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendSQLite, BackendRedis, c.StoreBackend))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE %q is invalid: %w", c.Timezone, err))
	}
	if c.RolloverIntervalSeconds <= 0 {
		errs = append(errs, fmt.Errorf("ROLLOVER_INTERVAL_SECONDS must be positive, got %d", c.RolloverIntervalSeconds))
	}
	return errors.Join(errs...)
}

// Location resolves the configured time zone used for calendar-day comparisons.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// RolloverInterval is how often the server checks for a day change.
func (c Config) RolloverInterval() time.Duration {
	return time.Duration(c.RolloverIntervalSeconds) * time.Second
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
