package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastraven/fastraven/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("flattens nested mappings", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "server:\n  port: 8080\n  host: localhost\napp_name: raven\n")
		cfg, err := config.Load(path)
		require.NoError(t, err)

		require.Equal(t, 8080, cfg.GetInt("server.port", 0))
		require.Equal(t, "localhost", cfg.GetString("server.host", ""))
		require.Equal(t, "raven", cfg.GetString("app_name", ""))
	})

	t.Run("defaults lose to file values", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "server:\n  port: 8080\n")
		cfg, err := config.Load(path, config.WithDefaults(map[string]any{
			"server.port": 3000,
			"debug":       true,
		}))
		require.NoError(t, err)

		require.Equal(t, 8080, cfg.GetInt("server.port", 0))
		require.True(t, cfg.GetBool("debug", false))
	})

	t.Run("missing file returns error", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yml"))
		require.Error(t, err)
	})

	t.Run("invalid yaml returns error", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "server:\n\tport: [unclosed\n")
		_, err := config.Load(path)
		require.Error(t, err)
	})

	t.Run("empty path loads only defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.Load("", config.WithDefaults(map[string]any{"debug": false}))
		require.NoError(t, err)
		require.True(t, cfg.Has("debug"))
	})
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\ncache-dir: /tmp/cache\n")

	t.Setenv("RAVEN_SERVER_PORT", "9090")
	t.Setenv("RAVEN_CACHE_DIR", "/var/cache")

	cfg, err := config.Load(path, config.WithEnvPrefix("RAVEN"))
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.GetString("server.port", ""))
	require.Equal(t, "/var/cache", cfg.GetString("cache-dir", ""))
}
