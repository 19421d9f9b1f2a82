// Package config loads engine configuration from the environment.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all engine configuration.
type Config struct {
	Import  ImportConfig
	Logging LogConfig
}

// ImportConfig holds import engine limits.
type ImportConfig struct {
	// MaxArchiveBytes caps accepted archive size; zero disables the cap.
	MaxArchiveBytes int64 `envconfig:"IMPORT_MAX_ARCHIVE_BYTES" default:"0"`
	// MaxParallel bounds concurrently pending traversals and write
	// branches; zero means unbounded.
	MaxParallel int `envconfig:"IMPORT_MAX_PARALLEL" default:"8"`
	// Exclude lists glob patterns dropped from every import.
	Exclude []string `envconfig:"IMPORT_EXCLUDE"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from the environment or returns the
// defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			MaxArchiveBytes: 0,
			MaxParallel:     8,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
