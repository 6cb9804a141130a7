package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.True(t, cfg.Database.Postgres.Enabled)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)

	require.Equal(t, "file-secret", cfg.Auth.TokenSecret)
	require.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)

	require.True(t, cfg.Backup.Enabled)
	require.Equal(t, "@hourly", cfg.Backup.Schedule)
	require.Equal(t, 14, cfg.Backup.Keep)

	require.False(t, cfg.Monitoring.Prometheus.Enabled)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	require.False(t, cfg.Backup.Enabled)
	require.Equal(t, "@daily", cfg.Backup.Schedule)
	require.Equal(t, 7, cfg.Backup.Keep)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("STOWAGE_SERVER_PORT", "9999")
	t.Setenv("STOWAGE_DATABASE_DRIVER", "mysql")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 9999, cfg.Server.Port)
	require.Equal(t, "mysql", cfg.Database.Driver)
}
