package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "planward.db", cfg.DB.Path)
	require.Equal(t, "info", cfg.Log.Level)
	require.True(t, cfg.Auth.Enabled)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PLANWARD_SERVER_HOST", "127.0.0.1")
	t.Setenv("PLANWARD_SERVER_PORT", "9090")
	t.Setenv("PLANWARD_DB_PATH", "/tmp/test.db")
	t.Setenv("PLANWARD_LOG_LEVEL", "debug")
	t.Setenv("PLANWARD_AUTH_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "/tmp/test.db", cfg.DB.Path)
	require.Equal(t, "debug", cfg.Log.Level)
	require.False(t, cfg.Auth.Enabled)
}

func TestInvalidPort(t *testing.T) {
	t.Setenv("PLANWARD_SERVER_PORT", "not-a-port")
	_, err := Load()
	require.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  host: 10.0.0.1
  port: 7070
db:
  path: /var/lib/planward.db
log:
  level: warn
`), 0o644))
	t.Setenv("PLANWARD_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1", cfg.Server.Host)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "/var/lib/planward.db", cfg.DB.Path)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestEnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o644))
	t.Setenv("PLANWARD_CONFIG_PATH", path)
	t.Setenv("PLANWARD_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
}

func TestMissingConfigFile(t *testing.T) {
	t.Setenv("PLANWARD_CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	require.Error(t, err)
}
