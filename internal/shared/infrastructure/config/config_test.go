package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:4200", cfg.Server.AllowedOrigins)
	assert.Equal(t, "default-dev-secret", cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Equal(t, 5*time.Minute, cfg.Triggers.DelayWindow)
	assert.Equal(t, 5*time.Minute, cfg.Triggers.NotesWindow)
	assert.Equal(t, 3*time.Second, cfg.Poller.InitialDelay)
	assert.Equal(t, 10*time.Second, cfg.Poller.Interval)
	assert.Equal(t, 100, cfg.Poller.AlertedCap)
	assert.False(t, cfg.Triggers.Enabled)
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()

	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "https://example.com")
	t.Setenv("JWT_SECRET", "my-secret")
	t.Setenv("JWT_EXPIRATION", "2h")
	t.Setenv("DB_HOST", "db-server")
	t.Setenv("DB_PORT", "13306")
	t.Setenv("DB_USER", "admin")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "production")
	t.Setenv("REDIS_HOST", "redis-server")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("TRIGGERS_ENABLED", "true")
	t.Setenv("TRIGGER_DELAY_WINDOW", "10m")
	t.Setenv("POLLER_INTERVAL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "https://example.com", cfg.Server.AllowedOrigins)
	assert.Equal(t, "my-secret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "db-server", cfg.Database.Host)
	assert.Equal(t, "13306", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, "production", cfg.Database.DBName)
	assert.Equal(t, "redis-server", cfg.Redis.Host)
	assert.Equal(t, "6380", cfg.Redis.Port)
	assert.True(t, cfg.Triggers.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Triggers.DelayWindow)
	assert.Equal(t, 30*time.Second, cfg.Poller.Interval)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	os.Clearenv()
	t.Setenv("JWT_EXPIRATION", "not-a-duration")
	t.Setenv("POLLER_INTERVAL", "-5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, 10*time.Second, cfg.Poller.Interval)
}

func TestLoad_ConfigFile(t *testing.T) {
	os.Clearenv()
	path := filepath.Join(t.TempDir(), "fms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7070\"\ndb_name: fromfile\n"), 0o600))
	t.Setenv("FMS_CONFIG", path)
	t.Setenv("DB_NAME", "fromenv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "fromenv", cfg.Database.DBName)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	os.Clearenv()
	t.Setenv("FMS_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestAppConfig_Location(t *testing.T) {
	assert.Equal(t, "Asia/Kolkata", AppConfig{Timezone: "Asia/Kolkata"}.Location().String())
	assert.Equal(t, time.UTC, AppConfig{Timezone: "Nowhere/Invalid"}.Location())
}
