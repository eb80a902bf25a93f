package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phux/urlscan/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.APIKey = "key"

	return cfg
}

func TestNewConfig_Defaults(t *testing.T) {
	t.Parallel()
	cfg := config.NewConfig()

	assert.Equal(t, config.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 4*time.Second, cfg.PollInterval)
	assert.Equal(t, config.FormatText, cfg.Format)
	assert.Zero(t, cfg.RequestsPerSecond(), "API calls are not paced by default")
	assert.Equal(t, config.LogFormatText, cfg.LogFormat)
	assert.Equal(t, config.XDGDataDir(), cfg.HistoryDir)
	assert.ErrorIs(t, cfg.Validate(), config.ErrMissingAPIKey)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr error
	}{
		{name: "valid", modify: func(*config.Config) {}},
		{name: "missing API key", modify: func(c *config.Config) { c.APIKey = "" }, wantErr: config.ErrMissingAPIKey},
		{name: "relative base URL", modify: func(c *config.Config) { c.BaseURL = "/api/v3" }, wantErr: config.ErrInvalidBaseURL},
		{name: "zero interval", modify: func(c *config.Config) { c.PollInterval = 0 }, wantErr: config.ErrInvalidPollInterval},
		{name: "negative rate limit", modify: func(c *config.Config) { c.RateLimit = -1 }, wantErr: config.ErrInvalidRateLimit},
		{name: "zero rate limit means unlimited", modify: func(c *config.Config) { c.RateLimit = 0 }},
		{name: "unknown log format", modify: func(c *config.Config) { c.LogFormat = "xml" }, wantErr: config.ErrUnknownLogFormat},
		{name: "json log format", modify: func(c *config.Config) { c.LogFormat = config.LogFormatJSON }},
		{name: "zero timeout", modify: func(c *config.Config) { c.Timeout = 0 }, wantErr: config.ErrInvalidTimeout},
		{name: "unknown format", modify: func(c *config.Config) { c.Format = "xml" }, wantErr: config.ErrUnknownFormat},
		{name: "markdown format", modify: func(c *config.Config) { c.Format = config.FormatMarkdown }},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestConfig_LoadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api_key: from-file
poll_interval: 10s
rate_limit: 500
format: json
log_format: json
no_history: true
headers:
  Proxy-Authorization: Basic dXNlcjpwYXNz
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	cfg := config.NewConfig()

	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.InDelta(t, 500.0, cfg.RateLimit, 1e-9)
	assert.Equal(t, config.FormatJSON, cfg.Format)
	assert.Equal(t, config.LogFormatJSON, cfg.LogFormat)
	assert.Equal(t, map[string]string{"Proxy-Authorization": "Basic dXNlcjpwYXNz"}, cfg.Headers)
	assert.True(t, cfg.NoHistory)
	assert.Equal(t, config.DefaultBaseURL, cfg.BaseURL, "unset keys keep their defaults")
}

func TestConfig_LoadFile_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	err := config.NewConfig().LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, config.ErrConfigNotFound)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("poll_interval: [\n"), 0o600))
	err = config.NewConfig().LoadFile(broken)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, config.ErrConfigNotFound)
}

// Tests touching the process environment cannot run in parallel.

func TestConfig_LoadEnv_DotenvFile(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "")
	require.NoError(t, os.Unsetenv(config.APIKeyEnv))
	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte(config.APIKeyEnv+"=from-dotenv\n"), 0o600))
	cfg := config.NewConfig()

	require.NoError(t, cfg.LoadEnv(dotenv))

	assert.Equal(t, "from-dotenv", cfg.APIKey)
}

func TestConfig_LoadEnv_EnvironmentWinsOverDotenv(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "from-env")
	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte(config.APIKeyEnv+"=from-dotenv\n"), 0o600))
	cfg := config.NewConfig()

	require.NoError(t, cfg.LoadEnv(dotenv, filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, "from-env", cfg.APIKey)
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "from-env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: from-file\nformat: markdown\n"), 0o600))

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, config.FormatMarkdown, cfg.Format)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.ErrorIs(t, err, config.ErrConfigNotFound)
}
