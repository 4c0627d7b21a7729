package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var configEnv = []string{
	"WORLD_FILE", "DB_CONN_STR", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"DB_STARTUP_DELAY", "DB_APPLY_SCHEMA", "API_TOKEN", "GRPC_ADDR", "METRICS_ADDR",
	"TICK_INTERVAL", "LOG_LEVEL", "DEV_LOGGING",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.UsePostgres())
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=resourceflow sslmode=disable", cfg.DBConnString)
	assert.Equal(t, 2*time.Second, cfg.DBStartupDelay)
	assert.True(t, cfg.DBApplySchema)
	assert.Equal(t, "dev-token", cfg.APIToken)
	assert.Equal(t, ":8080", cfg.GRPCAddr)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
	assert.False(t, cfg.Development)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WORLD_FILE", "/etc/resourceflow/world.yaml")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "economy")
	t.Setenv("API_TOKEN", "secret")
	t.Setenv("TICK_INTERVAL", "250ms")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_APPLY_SCHEMA", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.UsePostgres())
	assert.Equal(t, "/etc/resourceflow/world.yaml", cfg.WorldFile)
	assert.Contains(t, cfg.DBConnString, "host=db")
	assert.Contains(t, cfg.DBConnString, "dbname=economy")
	assert.Equal(t, "secret", cfg.APIToken)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.False(t, cfg.DBApplySchema)
}

func TestDBConnString_ExplicitWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_CONN_STR", "postgres://u:p@example:5432/world")
	t.Setenv("DB_HOST", "ignored")

	assert.Equal(t, "postgres://u:p@example:5432/world", DBConnString())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "bad tick interval", key: "TICK_INTERVAL", value: "soon", wantErr: "invalid TICK_INTERVAL"},
		{name: "non-positive tick interval", key: "TICK_INTERVAL", value: "0s", wantErr: "TICK_INTERVAL must be positive"},
		{name: "bad startup delay", key: "DB_STARTUP_DELAY", value: "2", wantErr: "invalid DB_STARTUP_DELAY"},
		{name: "bad bool", key: "DB_APPLY_SCHEMA", value: "maybe", wantErr: "invalid DB_APPLY_SCHEMA"},
		{name: "bad log level", key: "LOG_LEVEL", value: "loud", wantErr: "invalid LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
