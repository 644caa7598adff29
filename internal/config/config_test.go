package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "~/tripdesk/data/tripdesk.db", cfg.Database.DSN)
	assert.False(t, cfg.Database.Tracing)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10.0, cfg.RateLimit.RPS)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Empty(t, cfg.Telemetry.Endpoint)
	assert.Equal(t, "tripdesk", cfg.Telemetry.ServiceName)
	assert.Nil(t, cfg.REST.ReturnBodyOnCreate)
	assert.Nil(t, cfg.REST.ReturnBodyOnUpdate)
	assert.Equal(t, 20, cfg.REST.DefaultPageSize)
	assert.Equal(t, 2000, cfg.REST.MaxPageSize)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRIPDESK_SERVER_PORT", "9090")
	t.Setenv("TRIPDESK_DATABASE_DRIVER", "pgx")
	t.Setenv("TRIPDESK_LOG_LEVEL", "debug")
	t.Setenv("TRIPDESK_REST_RETURN_BODY_ON_CREATE", "true")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.NotNil(t, cfg.REST.ReturnBodyOnCreate)
	assert.True(t, *cfg.REST.ReturnBodyOnCreate)
	assert.Nil(t, cfg.REST.ReturnBodyOnUpdate)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TRIPDESK_METRICS_PATH=/prom\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("TRIPDESK_METRICS_PATH") })

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "/prom", cfg.Metrics.Path)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := `
server:
  port: 7070
  read_timeout: 3s
database:
  dsn: /var/lib/tripdesk/tripdesk.db
cors:
  allowed_origins:
    - https://app.example.com
rest:
  return_body_on_update: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tripdesk.yaml"), []byte(yaml), 0644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "/var/lib/tripdesk/tripdesk.db", cfg.Database.DSN)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
	require.NotNil(t, cfg.REST.ReturnBodyOnUpdate)
	assert.False(t, *cfg.REST.ReturnBodyOnUpdate)

	// Environment wins over the file
	t.Setenv("TRIPDESK_SERVER_PORT", "6060")
	cfg, err = Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.Port)
}

func TestLoad_ExplicitConfigFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(viper.New(), "does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRIPDESK_SERVER_PORT", "70000")

	_, err := Load(viper.New(), "")
	assert.ErrorContains(t, err, "server.port")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:  ServerConfig{Port: 8080},
			Metrics: MetricsConfig{Path: "/metrics"},
			REST:    RESTConfig{DefaultPageSize: 20, MaxPageSize: 2000},
		}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.REST.MaxPageSize = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.RateLimit = RateLimitConfig{Enabled: true, RPS: 0, Burst: 1}
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Metrics.Path = "metrics"
	assert.Error(t, cfg.Validate())
}

func TestExpandPath(t *testing.T) {
	expanded := expandPath("~/test/path")
	assert.False(t, strings.HasPrefix(expanded, "~/"), "Expected path to be expanded, got '%s'", expanded)
	assert.True(t, strings.HasSuffix(expanded, filepath.Join("test", "path")))

	assert.Equal(t, "/absolute/path", expandPath("/absolute/path"))
	assert.Equal(t, "relative/path", expandPath("relative/path"))
}

func TestDatabaseConfig_InitializeDatabase(t *testing.T) {
	dir := t.TempDir()
	cfg := DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(dir, "nested", "test.db")}

	ds, err := cfg.InitializeDatabase(context.Background())
	require.NoError(t, err)
	defer ds.Close()

	// Database file and schema exist
	_, err = os.Stat(cfg.DSN)
	require.NoError(t, err)

	var count int
	require.NoError(t, ds.DB.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('customers', 'trips')").Scan(&count))
	assert.Equal(t, 2, count)

	var journal string
	require.NoError(t, ds.DB.QueryRow("PRAGMA journal_mode").Scan(&journal))
	assert.Equal(t, "wal", journal)

	// A second start on the same file is a no-op for migrations
	again, err := cfg.InitializeDatabase(context.Background())
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestDatabaseConfig_InitializeDatabase_InMemory(t *testing.T) {
	cfg := DatabaseConfig{Driver: "sqlite", DSN: "file:TestDatabaseConfig_InitializeDatabase_InMemory?mode=memory&cache=shared"}

	ds, err := cfg.InitializeDatabase(context.Background())
	require.NoError(t, err)
	defer ds.Close()

	var count int
	require.NoError(t, ds.DB.QueryRow("SELECT COUNT(*) FROM customers").Scan(&count))
	assert.Zero(t, count)
}

func TestDatabaseConfig_UnsupportedDriver(t *testing.T) {
	cfg := DatabaseConfig{Driver: "oracle", DSN: "whatever"}

	_, err := cfg.InitializeDatabase(context.Background())
	assert.Error(t, err)
}

func TestDatabaseConfig_Tracing(t *testing.T) {
	cfg := DatabaseConfig{Driver: "sqlite", DSN: "file:TestDatabaseConfig_Tracing?mode=memory&cache=shared", Tracing: true}

	ds, err := cfg.OpenDatastore()
	require.NoError(t, err)
	defer ds.Close()
	assert.NoError(t, ds.Ping(context.Background()))
}
