package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "instal.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/instal"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
	home   string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	home, _ := os.UserHomeDir()
	return &Loader{logger: logger, home: home}
}

// WithHome overrides the directory searched for the user config.
func (l *Loader) WithHome(dir string) *Loader {
	l.home = dir
	return l
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/instal/config.yaml)
// 3. Project config (instal.yaml in dir or its parents)
//
// Command-line flags are applied by the caller on top of the result.
func (l *Loader) Load(dir string) (*Config, error) {
	config := DefaultConfig()

	if userConfigPath := l.userConfigPath(); userConfigPath != "" {
		if userConfig, err := LoadFromFile(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	projectConfigPath := FindProjectConfig(dir)
	if projectConfigPath != "" {
		projectConfig, err := LoadFromFile(projectConfigPath)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
		config.Merge(projectConfig)
	} else {
		l.logger.Debug("No project config found", slog.String("dir", dir))
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (l *Loader) userConfigPath() string {
	if l.home == "" {
		return ""
	}
	return filepath.Join(l.home, UserConfigDir, UserConfigFile)
}

// FindProjectConfig searches for instal.yaml in dir and its parents. It
// returns "" when none exists.
func FindProjectConfig(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	for {
		configPath := filepath.Join(abs, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			break
		}
		abs = parent
	}
	return ""
}
