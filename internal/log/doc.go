// Package log builds the slog loggers used by urlscan. Records pass through
// SecureHandler, which masks the API key and other credentials so they never
// reach the terminal or a shared log file, even in verbose mode.
package log
