package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets environment variables for the duration of the test.
func setupEnv(t *testing.T, envVars map[string]string) {
	t.Helper()
	for name, value := range envVars {
		t.Setenv(name, value)
	}
}

func TestLoadDefaults(t *testing.T) {
	setupEnv(t, map[string]string{
		"TRAQCHECK_API_BASE_URL":  "",
		"TRAQCHECK_POLL_INTERVAL": "",
		"TRAQCHECK_LOG_LEVEL":     "",
	})

	cfg, err := Load()

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, int64(5*1024*1024), cfg.API.MaxUploadBytes)
	assert.Equal(t, 1500*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "TraqCheck", cfg.Requests.OrgName)
	assert.Equal(t, "support@traqcheck.local", cfg.Requests.SupportEmail)
	assert.Equal(t, "auto", cfg.Requests.Channel)
	assert.False(t, cfg.Requests.SendNow)
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoadFromEnv(t *testing.T) {
	setupEnv(t, map[string]string{
		"TRAQCHECK_API_BASE_URL":         "https://api.example.com/",
		"TRAQCHECK_API_TIMEOUT":          "5s",
		"TRAQCHECK_API_MAX_UPLOAD_BYTES": "1024",
		"TRAQCHECK_POLL_INTERVAL":        "250ms",
		"TRAQCHECK_LOG_LEVEL":            "debug",
		"TRAQCHECK_LOG_FORMAT":           "text",
		"TRAQCHECK_REQUESTS_CHANNEL":     "sms",
		"TRAQCHECK_REQUESTS_SEND_NOW":    "true",
		"TRAQCHECK_BATCH_WORKERS":        "4",
		"TRAQCHECK_METRICS_ADDR":         "localhost:9090",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, int64(1024), cfg.API.MaxUploadBytes)
	assert.Equal(t, 250*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "sms", cfg.Requests.Channel)
	assert.True(t, cfg.Requests.SendNow)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, "localhost:9090", cfg.Metrics.Addr)
}

func TestLoadValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name:    "invalid base url",
			envVars: map[string]string{"TRAQCHECK_API_BASE_URL": "not a url"},
		},
		{
			name:    "invalid log level",
			envVars: map[string]string{"TRAQCHECK_LOG_LEVEL": "verbose"},
		},
		{
			name:    "invalid log format",
			envVars: map[string]string{"TRAQCHECK_LOG_FORMAT": "xml"},
		},
		{
			name:    "zero poll interval",
			envVars: map[string]string{"TRAQCHECK_POLL_INTERVAL": "0s"},
		},
		{
			name:    "invalid channel",
			envVars: map[string]string{"TRAQCHECK_REQUESTS_CHANNEL": "fax"},
		},
		{
			name:    "invalid support email",
			envVars: map[string]string{"TRAQCHECK_REQUESTS_SUPPORT_EMAIL": "nobody"},
		},
		{
			name:    "zero workers",
			envVars: map[string]string{"TRAQCHECK_BATCH_WORKERS": "0"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setupEnv(t, tc.envVars)

			cfg, err := Load()

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "validation failed")
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "traqcheck.yaml")
	content := []byte(`
api:
  base_url: http://backend.internal:8000
poll:
  interval: 2s
requests:
  org_name: Acme Hiring
  upload_url_template: https://acme.example/upload/{id}
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Run("file values applied", func(t *testing.T) {
		cfg, err := LoadFile(path)

		require.NoError(t, err)
		assert.Equal(t, "http://backend.internal:8000", cfg.API.BaseURL)
		assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
		assert.Equal(t, "Acme Hiring", cfg.Requests.OrgName)
		assert.Equal(t, "info", cfg.Log.Level, "unset keys keep their defaults")
	})

	t.Run("environment overrides file", func(t *testing.T) {
		setupEnv(t, map[string]string{"TRAQCHECK_REQUESTS_ORG_NAME": "Env Org"})

		cfg, err := LoadFile(path)

		require.NoError(t, err)
		assert.Equal(t, "Env Org", cfg.Requests.OrgName)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "absent.yaml"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})
}

func TestRequestsConfigUploadURL(t *testing.T) {
	r := RequestsConfig{UploadURLTemplate: "https://acme.example/upload/{id}?ref={id}"}

	assert.Equal(t, "https://acme.example/upload/c-1?ref=c-1", r.UploadURL("c-1"))
}
