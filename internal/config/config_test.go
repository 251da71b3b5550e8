package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/revplan/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:                    ":8080",
		DBPath:                  "test.db",
		LogLevel:                "INFO",
		StoreBackend:            config.BackendSQLite,
		RedisPrefix:             "revplan:",
		Timezone:                "UTC",
		RolloverIntervalSeconds: 60,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_RedisBackend(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		db      int
		wantErr string
	}{
		{name: "missing address", addr: "", db: 0, wantErr: "REDIS_ADDR"},
		{name: "negative db", addr: "localhost:6379", db: -1, wantErr: "REDIS_DB"},
		{name: "valid", addr: "localhost:6379", db: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.StoreBackend = config.BackendRedis
			cfg.DBPath = ""
			cfg.RedisAddr = tt.addr
			cfg.RedisDB = tt.db

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{
		StoreBackend:            "postgres",
		Timezone:                "Mars/Olympus_Mons",
		RolloverIntervalSeconds: 0,
	}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "ADDR cannot be empty")
	assert.Contains(t, errStr, "STORE_BACKEND")
	assert.Contains(t, errStr, "TIMEZONE")
	assert.Contains(t, errStr, "ROLLOVER_INTERVAL_SECONDS")
}

func TestLocation(t *testing.T) {
	cfg := validConfig()
	cfg.Timezone = "local"
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("STORE_BACKEND", "REDIS")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ROLLOVER_INTERVAL_SECONDS", "not-a-number")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, config.BackendRedis, cfg.StoreBackend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 60, cfg.RolloverIntervalSeconds)
	assert.Equal(t, time.Minute, cfg.RolloverInterval())
}
