// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"
)

const (
	defaultAPIToken     = "dev-token"
	defaultGRPCAddr     = ":8080"
	defaultMetricsAddr  = ":9090"
	defaultTickInterval = time.Second
	defaultStartupDelay = 2 * time.Second
)

// Config holds every setting of the economy server
type Config struct {
	// Bootstrap source: a YAML world file when set, Postgres otherwise
	WorldFile string

	DBConnString   string
	DBStartupDelay time.Duration
	DBApplySchema  bool

	APIToken     string
	GRPCAddr     string
	MetricsAddr  string
	TickInterval time.Duration
	LogLevel     zapcore.Level
	Development  bool
}

// UsePostgres reports whether the world is bootstrapped from the database
func (c *Config) UsePostgres() bool {
	return c.WorldFile == ""
}

// Load reads the configuration from environment variables, applying defaults
// for anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		WorldFile:    os.Getenv("WORLD_FILE"),
		DBConnString: DBConnString(),
		APIToken:     getenv("API_TOKEN", defaultAPIToken),
		GRPCAddr:     getenv("GRPC_ADDR", defaultGRPCAddr),
		MetricsAddr:  getenv("METRICS_ADDR", defaultMetricsAddr),
	}

	var err error
	if cfg.TickInterval, err = durationEnv("TICK_INTERVAL", defaultTickInterval); err != nil {
		return nil, err
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("TICK_INTERVAL must be positive, got %s", cfg.TickInterval)
	}
	if cfg.DBStartupDelay, err = durationEnv("DB_STARTUP_DELAY", defaultStartupDelay); err != nil {
		return nil, err
	}
	if cfg.DBApplySchema, err = boolEnv("DB_APPLY_SCHEMA", true); err != nil {
		return nil, err
	}
	if cfg.Development, err = boolEnv("DEV_LOGGING", false); err != nil {
		return nil, err
	}

	level := getenv("LOG_LEVEL", "info")
	if cfg.LogLevel, err = zapcore.ParseLevel(level); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}

	return cfg, nil
}

// DBConnString returns DB_CONN_STR, or builds a connection string from the
// individual DB_* variables (Docker friendly).
func DBConnString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getenv("DB_HOST", "localhost"),
		getenv("DB_PORT", "5432"),
		getenv("DB_USER", "postgres"),
		getenv("DB_PASSWORD", "postgres"),
		getenv("DB_NAME", "resourceflow"),
	)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}
