package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnvVars clears all nextdose-related environment variables for the test.
func clearEnvVars(t *testing.T) {
	t.Helper()
	envVars := []string{
		"APP_ENV", "LOG_LEVEL", "LOG_FORMAT",
		"NEXTDOSE_STORE", "NEXTDOSE_FILE", "SQLITE_PATH",
		"DATABASE_URL", "DATABASE_MAX_CONNS",
		"DATABASE_BREAKER_ENABLED", "DATABASE_BREAKER_FAILURES", "DATABASE_BREAKER_TIMEOUT",
		"MCP_ADDR", "MCP_AUTH_TOKEN",
	}
	for _, v := range envVars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnvVars(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)

	assert.Equal(t, StoreYAML, cfg.StorageDriver)
	assert.Equal(t, "medications.yml", filepath.Base(cfg.YAMLPath))
	assert.Equal(t, ".nextdose", filepath.Base(filepath.Dir(cfg.YAMLPath)))
	assert.Equal(t, "data.db", filepath.Base(cfg.SQLitePath))
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 4, cfg.DatabaseMaxConns)

	assert.True(t, cfg.BreakerEnabled)
	assert.Equal(t, 5, cfg.BreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)

	assert.Equal(t, "127.0.0.1:8082", cfg.MCPAddr)
	assert.Empty(t, cfg.MCPAuthToken)

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("NEXTDOSE_STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://nextdose@localhost:5432/nextdose")
	t.Setenv("DATABASE_MAX_CONNS", "10")
	t.Setenv("DATABASE_BREAKER_ENABLED", "false")
	t.Setenv("DATABASE_BREAKER_FAILURES", "2")
	t.Setenv("DATABASE_BREAKER_TIMEOUT", "5s")
	t.Setenv("MCP_ADDR", "0.0.0.0:9000")
	t.Setenv("MCP_AUTH_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, StorePostgres, cfg.StorageDriver)
	assert.Equal(t, "postgres://nextdose@localhost:5432/nextdose", cfg.DatabaseURL)
	assert.Equal(t, 10, cfg.DatabaseMaxConns)
	assert.False(t, cfg.BreakerEnabled)
	assert.Equal(t, 2, cfg.BreakerFailures)
	assert.Equal(t, 5*time.Second, cfg.BreakerTimeout)
	assert.Equal(t, "0.0.0.0:9000", cfg.MCPAddr)
	assert.Equal(t, "secret", cfg.MCPAuthToken)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("DATABASE_MAX_CONNS", "many")
	t.Setenv("DATABASE_BREAKER_TIMEOUT", "soon")
	t.Setenv("DATABASE_BREAKER_ENABLED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.DatabaseMaxConns)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)
	assert.True(t, cfg.BreakerEnabled)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"NEXTDOSE_STORE": "mongo"}},
		{"postgres without url", map[string]string{"NEXTDOSE_STORE": "postgres"}},
		{"non-positive pool", map[string]string{"DATABASE_MAX_CONNS": "0"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnvVars(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	clearEnvVars(t)

	path := filepath.Join(t.TempDir(), "nextdose.env")
	content := "NEXTDOSE_STORE=sqlite\nSQLITE_PATH=/tmp/nextdose-test.db\nLOG_LEVEL=error\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.StorageDriver)
	assert.Equal(t, "/tmp/nextdose-test.db", cfg.SQLitePath)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoadFile_Missing(t *testing.T) {
	clearEnvVars(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.env"))

	assert.Error(t, err)
}
