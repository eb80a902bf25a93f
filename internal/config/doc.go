// Package config holds the urlscan configuration and the rules for
// assembling it from a YAML file, a .env file, the environment and
// command-line flags.
//
// Precedence, lowest first:
//
//	defaults < config.yaml < .env < environment < flags
//
// The API key is normally supplied as VT_API_KEY, either exported in the
// shell or written to a .env file in the working directory.
package config
