// Package config loads and manages pawchat configuration.
// Configuration source priority (highest to lowest):
// 1. Environment variables (PAWCHAT_SERVER_URL, PAWCHAT_STORE_PATH, PAWCHAT_TIMEOUT_SECS)
// 2. Config file path specified via --config flag
// 3. ~/.config/pawchat/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all pawchat settings.
type Config struct {
	// ServerURL is the base URL of the answering service.
	ServerURL string `yaml:"server_url"`

	// StorePath overrides the default session store location
	// (~/.config/pawchat/sessions.db).
	StorePath string `yaml:"store_path"`

	// RequestTimeoutSecs bounds a single exchange with the service.
	// 0 leaves the transport default in place.
	RequestTimeoutSecs int `yaml:"request_timeout_secs"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		ServerURL: "http://localhost:8000",
	}
}

// DefaultPath returns ~/.config/pawchat/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pawchat", "config.yaml")
}

// Load reads configuration from path (or the default location when path is
// empty). A missing file yields the defaults; an unreadable one is an
// error. Environment variables are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// No config file: defaults apply.
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PAWCHAT_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("PAWCHAT_STORE_PATH"); v != "" {
		cfg.StorePath = v
	}
	if v := os.Getenv("PAWCHAT_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RequestTimeoutSecs = n
		}
	}
}
