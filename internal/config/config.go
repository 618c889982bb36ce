// Package config provides configuration loading and validation for the
// CV renderer service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents the service configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or environment
// overrides.
type Config struct {
	Port int `json:"port,omitempty"` // HTTP listen port

	// FetchTimeoutSeconds bounds template downloads. Observed deployments
	// ran with 20s and 30s; 20 is the shipped default.
	FetchTimeoutSeconds int `json:"fetch_timeout_seconds,omitempty"`

	ValidateContext bool   `json:"validate_context,omitempty"` // strict cv_data schema validation
	WorkDir         string `json:"work_dir,omitempty"`         // base dir for render working areas
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		Port:                8080,
		FetchTimeoutSeconds: 20,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be in [0, 65535]")
	}
	if c.FetchTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'fetch_timeout_seconds' must be non-negative")
	}
	if c.WorkDir != "" {
		if info, err := os.Stat(c.WorkDir); err != nil || !info.IsDir() {
			return fmt.Errorf("config error: work_dir is not a directory: %s", c.WorkDir)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled
// from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.FetchTimeoutSeconds == 0 {
		result.FetchTimeoutSeconds = defaults.FetchTimeoutSeconds
	}
	if result.WorkDir == "" {
		result.WorkDir = defaults.WorkDir
	}
	if !result.ValidateContext {
		result.ValidateContext = defaults.ValidateContext
	}

	return result
}

// ApplyEnv overlays environment variables onto the configuration.
// PORT, FETCH_TIMEOUT_SECONDS, VALIDATE_CONTEXT and WORK_DIR are recognized.
func (c *Config) ApplyEnv() {
	if v := getEnvInt("PORT", 0); v != 0 {
		c.Port = v
	}
	if v := getEnvInt("FETCH_TIMEOUT_SECONDS", 0); v != 0 {
		c.FetchTimeoutSeconds = v
	}
	if v := os.Getenv("VALIDATE_CONTEXT"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.ValidateContext = parsed
		}
	}
	if v := os.Getenv("WORK_DIR"); v != "" {
		c.WorkDir = v
	}
}

// getEnvInt gets an environment variable as an int with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
