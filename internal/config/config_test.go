package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.APIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout.Std())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.NotEmpty(t, cfg.StateDir)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
api_base_url: http://localhost:9000/api
request_timeout: 5s
log_level: debug
log_format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/api", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout.Std())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `log_level: debug`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, Default().APIBaseURL, cfg.APIBaseURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `api_base_url: http://file.example/api`)
	t.Setenv("SHOPFRONT_API_URL", "http://env.example/api")
	t.Setenv("SHOPFRONT_TIMEOUT", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example/api", cfg.APIBaseURL)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout.Std())
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, `request_timeout: fast`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, `api_base_url: [`)

	_, err := Load(path)
	assert.Error(t, err)
}
