package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadFile overlays the YAML file at path onto c. A missing file is
// reported as ErrConfigNotFound.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrConfigNotFound)
		}

		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("cannot parse %s: %w", path, err)
	}

	return nil
}

// LoadEnv reads the API key from the environment after loading the given
// dotenv files into it. Variables already set in the environment win over
// dotenv files. Missing dotenv files are ignored.
func (c *Config) LoadEnv(dotenvFiles ...string) error {
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("cannot load %s: %w", file, err)
		}
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		c.APIKey = key
	}

	return nil
}

// Load assembles the configuration from the optional config file and the
// environment. An empty path falls back to DefaultConfigFile, which may be
// absent.
func Load(path string, dotenvFiles ...string) (*Config, error) {
	cfg := NewConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile()
	}

	if err := cfg.LoadFile(path); err != nil {
		if explicit || !errors.Is(err, ErrConfigNotFound) {
			return nil, err
		}
	}

	if err := cfg.LoadEnv(dotenvFiles...); err != nil {
		return nil, err
	}

	return cfg, nil
}
