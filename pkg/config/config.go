package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted in NEXTDOSE_STORE.
const (
	StoreYAML     = "yaml"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Storage
	StorageDriver string
	YAMLPath      string
	SQLitePath    string

	// Database
	DatabaseURL      string
	DatabaseMaxConns int

	// Circuit breaker around the PostgreSQL connection
	BreakerEnabled  bool
	BreakerFailures int
	BreakerTimeout  time.Duration

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return fromEnv()
}

// LoadFile loads configuration with the variables in path applied first.
// Variables already set in the environment take precedence.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "warn"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		StorageDriver: getEnv("NEXTDOSE_STORE", StoreYAML),
		YAMLPath:      getEnv("NEXTDOSE_FILE", defaultDataPath("medications.yml")),
		SQLitePath:    getEnv("SQLITE_PATH", defaultDataPath("data.db")),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DatabaseMaxConns: getIntEnv("DATABASE_MAX_CONNS", 4),

		BreakerEnabled:  getBoolEnv("DATABASE_BREAKER_ENABLED", true),
		BreakerFailures: getIntEnv("DATABASE_BREAKER_FAILURES", 5),
		BreakerTimeout:  getDurationEnv("DATABASE_BREAKER_TIMEOUT", 30*time.Second),

		MCPAddr:      getEnv("MCP_ADDR", "127.0.0.1:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the storage settings are usable.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StoreYAML:
		if c.YAMLPath == "" {
			return errors.New("NEXTDOSE_FILE must not be empty")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH must not be empty")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when NEXTDOSE_STORE=postgres")
		}
	default:
		return fmt.Errorf("unsupported NEXTDOSE_STORE %q (want yaml, sqlite or postgres)", c.StorageDriver)
	}
	if c.DatabaseMaxConns < 1 {
		return fmt.Errorf("DATABASE_MAX_CONNS must be positive, got %d", c.DatabaseMaxConns)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".nextdose", name)
	}
	return filepath.Join(home, ".nextdose", name)
}
