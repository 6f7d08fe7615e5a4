package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/limbo/nexotime/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(yamlPath, []byte("API_ADDRESS: \":9000\"\nREQUEST_TIMEOUT: 3s\nREDIS_DB: 2\n"), 0o600))
	require.NoError(t, os.WriteFile(envPath, []byte("NEXOTIME_TEST_SECRET=from_env_file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("NEXOTIME_TEST_SECRET") })

	cfg, err := config.Load(envPath, yamlPath)
	require.NoError(t, err)

	t.Run("yaml defaults", func(t *testing.T) {
		assert.Equal(t, ":9000", cfg.GetString("API_ADDRESS"))
		assert.Equal(t, 3*time.Second, cfg.GetDuration("REQUEST_TIMEOUT", time.Second))
		assert.Equal(t, 2, cfg.GetInt("REDIS_DB", 0))
	})
	t.Run("env file", func(t *testing.T) {
		assert.Equal(t, "from_env_file", cfg.GetString("NEXOTIME_TEST_SECRET"))
	})
	t.Run("env overrides yaml", func(t *testing.T) {
		t.Setenv("API_ADDRESS", ":7000")
		assert.Equal(t, ":7000", cfg.GetString("API_ADDRESS"))
	})
	t.Run("fallbacks", func(t *testing.T) {
		assert.Equal(t, 5, cfg.GetInt("UNKNOWN_INT", 5))
		assert.Equal(t, time.Minute, cfg.GetDuration("UNKNOWN_DURATION", time.Minute))
		assert.Equal(t, "", cfg.GetString("UNKNOWN_STRING"))
	})
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(filepath.Join(dir, ".env"), filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.GetInt("REDIS_DB", 10))
}
