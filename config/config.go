// Package config loads and persists the projsweep configuration file.
//
// The configuration lives in a YAML document at the per-user config
// directory (for example ~/.config/projsweep/config.yaml). A default
// document is written on first use.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/projsweep/projsweep/cache"
	"github.com/projsweep/projsweep/classify"
	"github.com/projsweep/projsweep/errors"
)

// Config is the root configuration document.
type Config struct {
	// ScanPaths lists the root directories to scan for projects.
	ScanPaths []string `yaml:"scan_paths"`

	// Ignore configures which directories, extensions, and paths to skip.
	Ignore IgnoreConfig `yaml:"ignore"`

	// Scan configures traversal behavior.
	Scan ScanConfig `yaml:"scan"`

	// Cache configures the persistent size cache.
	Cache CacheConfig `yaml:"cache"`
}

// IgnoreConfig holds the user's ignore rules.
type IgnoreConfig struct {
	// Directories holds directory names treated as dependency directories.
	Directories []string `yaml:"directories"`

	// Extensions holds file extensions (without dot) excluded from the
	// code bucket.
	Extensions []string `yaml:"extensions"`

	// Paths holds substrings of full paths to skip during discovery.
	Paths []string `yaml:"paths"`

	// Projects holds project paths the user has manually hidden.
	Projects []string `yaml:"projects"`
}

// ScanConfig holds traversal options.
type ScanConfig struct {
	// MaxDepth bounds directory recursion; 0 means unlimited.
	MaxDepth int `yaml:"max_depth"`

	// FollowSymlinks enables following symbolic links during walks.
	FollowSymlinks bool `yaml:"follow_symlinks"`

	// ConcurrentScans bounds the worker pool of the parallel scanner.
	ConcurrentScans int `yaml:"concurrent_scans"`

	// ScanHidden enables descending into hidden directories.
	ScanHidden bool `yaml:"scan_hidden"`
}

// CacheConfig holds the size-cache options as they appear on disk.
type CacheConfig struct {
	Enabled     bool `yaml:"enabled"`
	ExpiryHours int  `yaml:"expiry_hours"`
	MaxEntries  int  `yaml:"max_entries"`
}

// ToCacheConfig converts the YAML shape into the cache package's config.
func (c CacheConfig) ToCacheConfig() cache.Config {
	return cache.Config{
		Enabled:        c.Enabled,
		ExpiryDuration: time.Duration(c.ExpiryHours) * time.Hour,
		MaxEntries:     c.MaxEntries,
	}
}

// Default returns the built-in configuration.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return Config{
		ScanPaths: []string{home},
		Ignore: IgnoreConfig{
			Directories: classify.DependencyDirNames(),
			Extensions:  extensionList(),
		},
		Scan: ScanConfig{
			MaxDepth:        10,
			FollowSymlinks:  false,
			ConcurrentScans: 4,
			ScanHidden:      false,
		},
		Cache: CacheConfig{
			Enabled:     true,
			ExpiryHours: 24,
			MaxEntries:  1000,
		},
	}
}

// Load reads the configuration from path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, errors.CodeIO, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, errors.CodeInvalidConfig, "failed to parse config file")
	}

	return cfg, nil
}

// Save writes the configuration to path, creating parent directories as
// needed.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to marshal config")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.CodeIO, "failed to create config directory")
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.CodeIO, "failed to write config file")
	}

	return nil
}

// DefaultPath returns the per-user location of the configuration file.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInvalidConfig, "failed to resolve user config directory")
	}
	return filepath.Join(dir, "projsweep", "config.yaml"), nil
}

// LoadOrCreateDefault loads the configuration from the default path,
// writing the default document first if none exists.
func LoadOrCreateDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Config{}, err
	}

	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	cfg := Default()
	if err := cfg.Save(path); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func extensionList() []string {
	exts := classify.DefaultIgnoreExtensions()
	list := make([]string, 0, len(exts))
	for ext := range exts {
		list = append(list, ext)
	}
	return list
}
