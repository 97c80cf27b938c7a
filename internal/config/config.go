// Package config provides configuration loading for the instal checker.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/jgrey4296/instal-stable-sub001/internal/checks"
)

// Config represents the complete checker configuration
type Config struct {
	Checks ChecksConfig `yaml:"checks"`
	// Include lists doublestar globs, relative to the checked directory,
	// selecting the CUE files to load.
	Include []string    `yaml:"include"`
	Store   StoreConfig `yaml:"store"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// ChecksConfig selects which checks run
type ChecksConfig struct {
	// Enable restricts the run to these checks (empty = all)
	Enable []string `yaml:"enable"`
	// Disable removes checks from the run
	Disable []string `yaml:"disable"`
}

// StoreConfig configures run history
type StoreConfig struct {
	// Path is the SQLite database path (empty = history disabled)
	Path string `yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Include:  []string{"**/*.cue"},
		LogLevel: "warn",
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	var unknown []string
	for _, name := range append(append([]string(nil), c.Checks.Enable...), c.Checks.Disable...) {
		if _, ok := checks.Lookup(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("checks: unknown check(s) %s (known: %s)",
			strings.Join(unknown, ", "), strings.Join(checks.Names(), ", "))
	}
	if len(c.Include) == 0 {
		return fmt.Errorf("include must list at least one glob")
	}
	for _, pattern := range c.Include {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("include: invalid glob %q", pattern)
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log_level: unknown level %q", s)
	}
}

// Merge overlays the fields set in other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if len(other.Checks.Enable) > 0 {
		c.Checks.Enable = other.Checks.Enable
	}
	if len(other.Checks.Disable) > 0 {
		c.Checks.Disable = other.Checks.Disable
	}
	if len(other.Include) > 0 {
		c.Include = other.Include
	}
	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

// LoadFromFile loads configuration from a YAML file. Fields absent from the
// file are left empty so the result can be merged over defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A relative store path is taken relative to the config file.
	if config.Store.Path != "" && !filepath.IsAbs(config.Store.Path) {
		config.Store.Path = filepath.Join(filepath.Dir(path), config.Store.Path)
	}
	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
