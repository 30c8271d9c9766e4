package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".shrinkrate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3*time.Second, cfg.Budget)
	assert.Equal(t, "zstd", cfg.Algorithm)
	assert.Equal(t, ".gitignore", cfg.IgnoreFile)
	assert.Equal(t, int64(1<<30), cfg.CacheCapacity)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Separator)
	assert.True(t, cfg.History)
	assert.Greater(t, cfg.Workers, 0)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverlay(t *testing.T) {
	path := writeConfig(t, `
budget: 500ms
algorithm: gzip
workers: 2
level: 6
separator: true
ignore_file: .estimatorignore
log_level: debug
history: false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Budget)
	assert.Equal(t, "gzip", cfg.Algorithm)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 6, cfg.Level)
	assert.True(t, cfg.Separator)
	assert.Equal(t, ".estimatorignore", cfg.IgnoreFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.History, "an explicit history: false must disable recording")

	// Untouched keys keep their defaults.
	assert.Equal(t, int64(1<<30), cfg.CacheCapacity)
	assert.Equal(t, DefaultHistoryPath, cfg.HistoryPath)
}

func TestLoadConfigInvalidBudget(t *testing.T) {
	path := writeConfig(t, "budget: soon\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid budget format")
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeConfig(t, "budget: [unclosed\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero budget is valid", func(c *Config) { c.Budget = 0 }, false},
		{"negative budget", func(c *Config) { c.Budget = -time.Second }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"negative level", func(c *Config) { c.Level = -2 }, true},
		{"negative cache capacity", func(c *Config) { c.CacheCapacity = -1 }, true},
		{"unknown algorithm", func(c *Config) { c.Algorithm = "paq" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
