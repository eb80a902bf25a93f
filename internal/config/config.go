package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/phux/urlscan/app"
)

const (
	AppName = "urlscan"

	// APIKeyEnv is the environment variable holding the API key.
	APIKeyEnv = "VT_API_KEY"

	DefaultBaseURL      = app.DefaultBaseURL
	DefaultPollInterval = app.DefaultPollInterval
	// DefaultRateLimit of 0 leaves API calls unpaced so that the poll
	// interval alone decides when an analysis is fetched.
	DefaultRateLimit = 0.0
	DefaultTimeout   = 30 * time.Second
	DefaultFormat    = FormatText
	DefaultLogFormat = LogFormatText
)

const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

type Config struct {
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	PollInterval time.Duration `yaml:"poll_interval"`
	// RateLimit is the number of API requests allowed per minute, 0 for
	// no limit. The public API allows 4.
	RateLimit  float64           `yaml:"rate_limit"`
	Timeout    time.Duration     `yaml:"timeout"`
	Headers    map[string]string `yaml:"headers"`
	HistoryDir string            `yaml:"history_dir"`
	NoHistory  bool              `yaml:"no_history"`
	Format     string            `yaml:"format"`
	LogFormat  string            `yaml:"log_format"`
	Verbose    bool              `yaml:"verbose"`
}

func NewConfig() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		PollInterval: DefaultPollInterval,
		RateLimit:    DefaultRateLimit,
		Timeout:      DefaultTimeout,
		HistoryDir:   XDGDataDir(),
		Format:       DefaultFormat,
		LogFormat:    DefaultLogFormat,
	}
}

// RequestsPerSecond converts RateLimit for the API client. 0 stays 0.
func (c *Config) RequestsPerSecond() float64 {
	return c.RateLimit / 60
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
	}

	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}

	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	switch c.Format {
	case FormatText, FormatJSON, FormatMarkdown:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.Format)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogFormat, c.LogFormat)
	}

	return nil
}

// XDGDataDir is where the scan history lives, e.g. ~/.local/share/urlscan.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir is where config.yaml is looked up, e.g. ~/.config/urlscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

func DefaultConfigFile() string {
	return filepath.Join(XDGConfigDir(), "config.yaml")
}
