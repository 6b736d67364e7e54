package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return t.TempDir()
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)

	configDir, err := UserConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(configDir, "xewe.db"), cfg.StorePath)
	assert.Equal(t, "xewe", cfg.DeviceName)
	assert.Equal(t, 60*time.Second, cfg.PromptTimeout)
	assert.Equal(t, ":8080", cfg.WebAddr)
	assert.Equal(t, 30*time.Second, cfg.ReconnectInterval)
	assert.Equal(t, "xewe-os", cfg.SimNetworks["xewe-lab"])
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestYAMLFile(t *testing.T) {
	dir := isolate(t)
	write(t, filepath.Join(dir, "xewe.yaml"), `
store:
  path: /tmp/dev.db
device:
  name: bench
prompt:
  timeout: 5s
wifi:
  reconnect_interval: 2m
sim:
  networks:
    home: secret
`)

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/dev.db", cfg.StorePath)
	assert.Equal(t, "bench", cfg.DeviceName)
	assert.Equal(t, 5*time.Second, cfg.PromptTimeout)
	assert.Equal(t, 2*time.Minute, cfg.ReconnectInterval)
	assert.Equal(t, map[string]string{"home": "secret"}, cfg.SimNetworks)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := isolate(t)
	write(t, filepath.Join(dir, "xewe.yaml"), "web:\n  addr: \":9000\"\n")
	t.Setenv("XEWE_WEB_ADDR", "127.0.0.1:9100")

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9100", cfg.WebAddr)
}

func TestDotEnvFile(t *testing.T) {
	dir := isolate(t)
	write(t, filepath.Join(dir, ".env"), "XEWE_DEVICE_NAME=from-dotenv\n")
	t.Cleanup(func() { _ = os.Unsetenv("XEWE_DEVICE_NAME") })

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.DeviceName)
}

func TestInvalidValues(t *testing.T) {
	dir := isolate(t)
	write(t, filepath.Join(dir, "xewe.yaml"), "prompt:\n  timeout: 0s\n")

	_, err := Load(viper.New(), dir)
	assert.ErrorContains(t, err, KeyPromptTimeout)
}

func TestMalformedFile(t *testing.T) {
	dir := isolate(t)
	write(t, filepath.Join(dir, "xewe.yaml"), "device: [unclosed\n")

	_, err := Load(viper.New(), dir)
	assert.ErrorContains(t, err, "failed to read config")
}
