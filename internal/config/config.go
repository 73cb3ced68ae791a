// Package config handles resolving configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Log levels accepted in the config file.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// minSecretLen is the minimum byte length of the session signing secret.
// securecookie recommends 32 or 64 byte HMAC keys.
const minSecretLen = 32

// Config is the resolved application configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Address is the host:port the web app listens on.
	Address string `yaml:"address"`
	// DBFilepath is the path to the sqlite database file.
	DBFilepath string `yaml:"db_filepath"`
	// SessionSecret signs the session cookie. Must be at least 32 bytes.
	SessionSecret string `yaml:"session_secret"`
	// DevMode enables verbose request logging, seed data, and relaxes the
	// Secure attribute on session cookies so they work over plain http.
	DevMode bool `yaml:"dev_mode"`
}

// Default returns a version of the config with all default values populated.
// Note that this configuration is _not_ valid, as the user must set
// session_secret.
func Default() *Config {
	return &Config{
		LogLevel:      LevelInfo,
		Address:       "localhost:9990",
		DBFilepath:    filepath.Join(xdg.DataHome, "quill", "db.sqlite"),
		SessionSecret: "", // must be set by the user
		DevMode:       false,
	}
}

// Load loads a YAML configuration file from a path, merges it with defaults,
// and validates it for completeness.
func Load(path string) (*Config, error) {
	bytes, err := os.ReadFile(path) //nolint:gosec // allow the config file to be loaded from anywhere
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	if err = yaml.Unmarshal(bytes, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file at %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the config for completeness and consistency.
func (c *Config) Validate() error {
	var errs []error
	switch c.LogLevel {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
	default:
		errs = append(errs, fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel))
	}
	if c.Address == "" {
		errs = append(errs, errors.New("address must not be empty"))
	}
	if c.DBFilepath == "" {
		errs = append(errs, errors.New("db_filepath must not be empty"))
	}
	if len(c.SessionSecret) < minSecretLen {
		errs = append(errs, fmt.Errorf("session_secret must be at least %d bytes", minSecretLen))
	}
	return errors.Join(errs...)
}
