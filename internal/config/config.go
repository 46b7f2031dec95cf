// Package config loads the optional mend.yaml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultHistoryPath is the journal location when none is configured.
const DefaultHistoryPath = ".mendhistory"

type Config struct {
	History HistoryConfig `yaml:"history"`
	// Color is "auto", "always" or "never".
	Color string `yaml:"color"`
}

type HistoryConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

// HistoryPath returns the configured journal path or the default.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return DefaultHistoryPath
}

// FindDefaultConfigPath returns the default config path for the current
// platform: a mend.yaml/mend.yml in the working directory wins, otherwise
// the user config directory.
func FindDefaultConfigPath() string {
	if _, err := os.Stat("mend.yaml"); err == nil {
		return "mend.yaml"
	}
	if _, err := os.Stat("mend.yml"); err == nil {
		return "mend.yml"
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "mend.yaml"
	}
	return filepath.Join(configDir, "mend", "mend.yaml")
}

// Load reads the config at path, or returns defaults when the file does not
// exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
