package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrMissingAPIKey is returned when no API key was found in any source.
	ErrMissingAPIKey = errors.New("missing API key: set VT_API_KEY, api_key in the config file or --apiKey")

	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrInvalidPollInterval is returned for a non-positive poll interval.
	// A zero interval would turn the queued poll into a busy loop.
	ErrInvalidPollInterval = errors.New("invalid poll interval: must be positive")

	ErrInvalidRateLimit = errors.New("invalid rate limit: must not be negative")

	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	ErrUnknownFormat = errors.New("unknown output format: use text, json or markdown")

	ErrUnknownLogFormat = errors.New("unknown log format: use text or json")

	// ErrConfigNotFound is returned when an explicitly named config file
	// does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
