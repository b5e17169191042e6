// Package config loads the optional per-user configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	gap "github.com/muesli/go-app-paths"
	"gopkg.in/yaml.v3"

	"github.com/agentultra/deliciousbackup/internal/core"
)

// FileName is the name of the configuration file inside the config dir.
const FileName = "config.yaml"

var (
	ErrInvalidTimeout = errors.New("timeout must not be negative")
	ErrEmptyDatabase  = errors.New("database path must not be empty")
)

// Config holds the settings a backup run needs. Every field can be
// overridden from the command line.
type Config struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Endpoint string `yaml:"endpoint"`
	Database string `yaml:"database"`
	// Checkpoint is the checkpoint file; empty means ~/.deliciousbackup.
	Checkpoint       string        `yaml:"checkpoint"`
	StrictCheckpoint bool          `yaml:"strict_checkpoint"`
	Timeout          time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Endpoint: core.DefaultEndpoint,
		Database: core.DefaultDatabase,
		Timeout:  core.DefaultHTTPTimeout,
	}
}

// DefaultPath returns the per-user config file path.
func DefaultPath() (string, error) {
	scope := gap.NewScope(gap.User, core.AppName)
	p, err := scope.ConfigPath(FileName)
	if err != nil {
		return "", fmt.Errorf("getting config path: %w", err)
	}

	return p, nil
}

// Load reads the file at path over the defaults. A missing or empty file
// yields the defaults; unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values the file format cannot constrain.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.Database == "" {
		return ErrEmptyDatabase
	}
	return nil
}

// HasCredentials reports whether both username and password are set.
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}
