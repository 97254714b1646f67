package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mortar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.Retry.Max)
	assert.Equal(t, 100*time.Millisecond, cfg.Retry.MinDelay)
	assert.Equal(t, 5*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, 2.0, cfg.Retry.Factor)
	assert.True(t, cfg.Retry.Jitter)
	assert.Equal(t, 0.0, cfg.Rate.Limit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
	assert.Equal(t, 1024, cfg.Log.MaxPayloadBytes)
	assert.Equal(t, "X-Request-ID", cfg.TraceHeader)
	assert.False(t, cfg.W3CTrace)
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeConfigFile(t, `
base_url: https://erp.example.com/api
timeout: 10s
retry:
  max: 5
  min_delay: 50ms
  max_delay: 2s
log:
  level: debug
  payloads: true
headers:
  X-Tenant: acme
trace_header: X-Correlation-ID
w3c_trace: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://erp.example.com/api", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.Retry.Max)
	assert.Equal(t, 50*time.Millisecond, cfg.Retry.MinDelay)
	assert.Equal(t, 2*time.Second, cfg.Retry.MaxDelay)
	// Unset keys keep their defaults.
	assert.Equal(t, 2.0, cfg.Retry.Factor)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Payloads)
	assert.Equal(t, "acme", cfg.Headers["X-Tenant"])
	assert.Equal(t, "X-Correlation-ID", cfg.TraceHeader)
	assert.True(t, cfg.W3CTrace)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("MORTAR_BASE_URL", "https://env.example.com")
	t.Setenv("MORTAR_TIMEOUT", "7s")
	t.Setenv("MORTAR_RETRY__MAX", "1")
	t.Setenv("MORTAR_LOG__LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.Retry.Max)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvironmentBeatsFile(t *testing.T) {
	path := writeConfigFile(t, "base_url: https://file.example.com\n")
	t.Setenv("MORTAR_BASE_URL", "https://env.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.BaseURL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad log level", map[string]string{"MORTAR_LOG__LEVEL": "verbose"}},
		{"bad base URL", map[string]string{"MORTAR_BASE_URL": "not a url"}},
		{"partial auth", map[string]string{"MORTAR_AUTH__USERNAME": "user"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestGet(t *testing.T) {
	path := writeConfigFile(t, "custom:\n  endpoint: /v2/projects\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/v2/projects", cfg.Get("custom.endpoint"))

	var empty Config
	assert.Nil(t, empty.Get("anything"))
}
