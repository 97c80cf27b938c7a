package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgrey4296/instal-stable-sub001/internal/testutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, []string{"**/*.cue"}, cfg.Include)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.Store.Path)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default config",
			modify: func(c *Config) {},
		},
		{
			name:   "known checks",
			modify: func(c *Config) { c.Checks.Enable = []string{"occurs"}; c.Checks.Disable = []string{"query"} },
		},
		{
			name:    "unknown enabled check",
			modify:  func(c *Config) { c.Checks.Enable = []string{"spelling"} },
			wantErr: "unknown check(s) spelling",
		},
		{
			name:    "unknown disabled check",
			modify:  func(c *Config) { c.Checks.Disable = []string{"grammar"} },
			wantErr: "unknown check(s) grammar",
		},
		{
			name:    "no include globs",
			modify:  func(c *Config) { c.Include = nil },
			wantErr: "include must list",
		},
		{
			name:    "bad glob",
			modify:  func(c *Config) { c.Include = []string{"[unclosed"} },
			wantErr: "invalid glob",
		},
		{
			name:    "bad level",
			modify:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: "unknown level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"":        slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ProjectConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(`
checks:
  disable: [institution-structure]
include: ["specs/**/*.cue"]
store:
  path: history.db
log_level: debug
`), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"institution-structure"}, cfg.Checks.Disable)
	assert.Equal(t, []string{"specs/**/*.cue"}, cfg.Include)
	assert.Equal(t, filepath.Join(dir, "history.db"), cfg.Store.Path)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("checks: [not, a, map]\n"), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ProjectConfigFile)
	cfg := DefaultConfig()
	cfg.Checks.Enable = []string{"events", "fluents"}

	require.NoError(t, cfg.SaveToFile(path))
	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Checks.Enable, loaded.Checks.Enable)
	assert.Equal(t, cfg.Include, loaded.Include)
}

func TestLoader_Layers(t *testing.T) {
	home := t.TempDir()
	userPath := filepath.Join(home, UserConfigDir, UserConfigFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(userPath), 0755))
	require.NoError(t, os.WriteFile(userPath, []byte("log_level: info\ninclude: [\"*.cue\"]\n"), 0644))

	project := t.TempDir()
	nested := filepath.Join(project, "specs", "library")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(project, ProjectConfigFile),
		[]byte("checks:\n  disable: [occurs]\n"), 0644))

	cfg, err := NewLoader(testutil.DiscardLogger()).WithHome(home).Load(nested)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"*.cue"}, cfg.Include)
	assert.Equal(t, []string{"occurs"}, cfg.Checks.Disable)
}

func TestLoader_NoConfig(t *testing.T) {
	cfg, err := NewLoader(testutil.DiscardLogger()).WithHome("").Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoader_InvalidProjectConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigFile),
		[]byte("checks:\n  enable: [bogus]\n"), 0644))

	_, err := NewLoader(testutil.DiscardLogger()).WithHome("").Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}
