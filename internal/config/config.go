// Package config loads and validates shrinkrate configuration.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/shrinkrate/internal/cache"
	"github.com/harrison/shrinkrate/internal/compress"
	"github.com/harrison/shrinkrate/internal/estimator"
	"github.com/harrison/shrinkrate/internal/scanner"
)

// DefaultConfigFile is the config file looked up in the scanned root
// when no explicit path is given.
const DefaultConfigFile = ".shrinkrate.yaml"

// DefaultHistoryPath is the run history database, relative to the
// scanned root.
const DefaultHistoryPath = ".shrinkrate/history.db"

// Config represents shrinkrate configuration options
type Config struct {
	// Budget is the sampling time budget
	Budget time.Duration `yaml:"budget"`

	// Algorithm is the compression transform (zstd, gzip, lz4, brotli, snappy)
	Algorithm string `yaml:"algorithm"`

	// Workers is the transform-internal parallelism (0 = all CPUs)
	Workers int `yaml:"workers"`

	// Level is the compression-effort preset (0 = algorithm maximum)
	Level int `yaml:"level"`

	// Separator inserts a newline byte between concatenated files
	Separator bool `yaml:"separator"`

	// IgnoreFile is the per-directory ignore pattern file name
	IgnoreFile string `yaml:"ignore_file"`

	// CacheCapacity is the content cache budget in bytes
	CacheCapacity int64 `yaml:"cache_capacity"`

	// IncludeHidden disables the pruning of dot-directories
	IncludeHidden bool `yaml:"include_hidden"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// History enables recording runs to the history database
	History bool `yaml:"history"`

	// HistoryPath is the history database path, relative to the root
	HistoryPath string `yaml:"history_path"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Budget:        estimator.DefaultBudget,
		Algorithm:     string(compress.DefaultAlgorithm),
		Workers:       runtime.NumCPU(),
		Level:         0, // maximum effort
		Separator:     false,
		IgnoreFile:    scanner.DefaultIgnoreFile,
		CacheCapacity: cache.DefaultCapacity,
		IncludeHidden: false,
		LogLevel:      "info",
		History:       true,
		HistoryPath:   DefaultHistoryPath,
	}
}

// LoadConfig reads a YAML config file and overlays it onto the
// defaults. A missing file yields the defaults without error; any
// other read or parse failure is reported.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Budget is accepted as a duration string ("3s", "500ms"); bools
	// that default to true use pointers so an explicit false in the
	// file is distinguishable from an absent key.
	type yamlConfig struct {
		Budget        string `yaml:"budget"`
		Algorithm     string `yaml:"algorithm"`
		Workers       int    `yaml:"workers"`
		Level         int    `yaml:"level"`
		Separator     bool   `yaml:"separator"`
		IgnoreFile    string `yaml:"ignore_file"`
		CacheCapacity int64  `yaml:"cache_capacity"`
		IncludeHidden bool   `yaml:"include_hidden"`
		LogLevel      string `yaml:"log_level"`
		History       *bool  `yaml:"history"`
		HistoryPath   string `yaml:"history_path"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if yamlCfg.Budget != "" {
		budget, err := time.ParseDuration(yamlCfg.Budget)
		if err != nil {
			return nil, fmt.Errorf("invalid budget format %q: %w", yamlCfg.Budget, err)
		}
		cfg.Budget = budget
	}
	if yamlCfg.Algorithm != "" {
		cfg.Algorithm = yamlCfg.Algorithm
	}
	if yamlCfg.Workers != 0 {
		cfg.Workers = yamlCfg.Workers
	}
	if yamlCfg.Level != 0 {
		cfg.Level = yamlCfg.Level
	}
	if yamlCfg.Separator {
		cfg.Separator = true
	}
	if yamlCfg.IgnoreFile != "" {
		cfg.IgnoreFile = yamlCfg.IgnoreFile
	}
	if yamlCfg.CacheCapacity != 0 {
		cfg.CacheCapacity = yamlCfg.CacheCapacity
	}
	if yamlCfg.IncludeHidden {
		cfg.IncludeHidden = true
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.History != nil {
		cfg.History = *yamlCfg.History
	}
	if yamlCfg.HistoryPath != "" {
		cfg.HistoryPath = yamlCfg.HistoryPath
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Budget < 0 {
		return fmt.Errorf("budget must not be negative: %s", c.Budget)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative: %d", c.Workers)
	}
	if c.Level < 0 {
		return fmt.Errorf("level must not be negative: %d", c.Level)
	}
	if c.CacheCapacity < 0 {
		return fmt.Errorf("cache capacity must not be negative: %d", c.CacheCapacity)
	}
	if _, err := compress.ParseAlgorithm(c.Algorithm); err != nil {
		return err
	}
	return nil
}
