package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/diagctl/internal/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
output_dir = "/var/log/diagctl"
server_endpoint = "https://reports.example.com/ingest"
log_level = "debug"
history = true
history_db = "/path/to/history.db"
smart_cache_ttl = 60
upload_timeout = 5
`)
	configPath := filepath.Join(tempDir, "diagctl.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("DIAGCTL_CONFIG", configPath)

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "/var/log/diagctl", cfg.OutputDir, "Expected OutputDir /var/log/diagctl")
	assert.Equal(t, "https://reports.example.com/ingest", cfg.ServerEndpoint)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
	assert.True(t, cfg.History, "Expected History true")
	assert.Equal(t, "/path/to/history.db", cfg.HistoryDB)
	assert.Equal(t, 60, cfg.SmartCacheTTL, "Expected SmartCacheTTL 60")
	assert.Equal(t, 5, cfg.UploadTimeout, "Expected UploadTimeout 5")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DIAGCTL_CONFIG", "")

	cfg, err := config.Load(nil)
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, "diagnostics", cfg.OutputDir, "Expected default OutputDir diagnostics")
	assert.Empty(t, cfg.ServerEndpoint, "Expected default ServerEndpoint empty")
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
	assert.False(t, cfg.History, "Expected default History false")
	assert.Equal(t, 300, cfg.SmartCacheTTL, "Expected default SmartCacheTTL 300")
	assert.Equal(t, 10, cfg.UploadTimeout, "Expected default UploadTimeout 10")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
This is not a valid TOML file
`)
	configPath := filepath.Join(tempDir, "diagctl.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("DIAGCTL_CONFIG", configPath)

	_, err = config.Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidLogLevel(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
log_level = "invalid"
`)
	configPath := filepath.Join(tempDir, "diagctl.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("DIAGCTL_CONFIG", configPath)

	_, err = config.Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_log_level")
}

func TestLogLevelFlag(t *testing.T) {
	t.Setenv("DIAGCTL_CONFIG", "")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", config.DefaultLogLevel, "")
	require.NoError(t, flags.Parse([]string{"--log-level", "debug"}))

	cfg, err := config.Load(flags)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel to be set by flag")
}

func TestInvalidUploadTimeout(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
upload_timeout = 0
`)
	configPath := filepath.Join(tempDir, "diagctl.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("DIAGCTL_CONFIG", configPath)

	_, err = config.Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload_timeout")
}
