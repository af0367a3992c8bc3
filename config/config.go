// Package config handles configuration loading and management for codestats.
// Configuration is loaded from:
// 1. ~/.config/codestats/config.yaml (user-level)
// 2. .codestats/config.yaml (project-level override)
// 3. Environment variables (highest priority)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format represents a metrics output format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// OutputConfig holds settings for report output.
type OutputConfig struct {
	// Format selects the metrics file format (csv, json)
	Format Format `yaml:"format"`

	// Dir is where reports are written (default: current directory)
	Dir string `yaml:"dir"`

	// Graph enables dependency graph export alongside the metrics
	Graph bool `yaml:"graph"`
}

// CacheConfig holds settings for metric caching.
type CacheConfig struct {
	// Enabled controls whether caching is active
	Enabled bool `yaml:"enabled"`

	// Dir is the cache directory (default: .codestats/cache)
	Dir string `yaml:"dir"`

	// TTLDays is the cache TTL in days (0 = no expiry)
	TTLDays int `yaml:"ttl_days"`
}

// Config is the main configuration structure.
type Config struct {
	// Output holds report output settings
	Output OutputConfig `yaml:"output"`

	// Cache holds caching settings
	Cache CacheConfig `yaml:"cache"`

	// GrammarDir overrides the grammar shared library search path
	GrammarDir string `yaml:"grammar_dir"`

	// Languages restricts scanning to the listed languages (empty = all)
	Languages []string `yaml:"languages"`

	// Debug enables verbose logging
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: FormatCSV,
			Dir:    ".",
			Graph:  false,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     filepath.Join(".codestats", "cache"),
			TTLDays: 0, // No expiry by default
		},
		Debug: false,
	}
}

// Load reads configuration from standard locations and merges with defaults.
// Priority (highest to lowest):
// 1. Environment variables
// 2. Project config (.codestats/config.yaml)
// 3. User config (~/.config/codestats/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Try user config first
	userPath, err := userConfigPath()
	if err == nil {
		if data, err := os.ReadFile(userPath); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing user config %s: %w", userPath, err)
			}
		}
	}

	// Try project config (overrides user config)
	projectPath := filepath.Join(".codestats", "config.yaml")
	if data, err := os.ReadFile(projectPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing project config %s: %w", projectPath, err)
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFromPath reads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	switch c.Output.Format {
	case FormatCSV, FormatJSON:
	case "":
		// Will use default
	default:
		errs = append(errs, fmt.Sprintf("unknown output format: %s", c.Output.Format))
	}

	if c.Cache.TTLDays < 0 {
		errs = append(errs, "ttl_days must be non-negative")
	}

	if c.GrammarDir != "" {
		if info, err := os.Stat(c.GrammarDir); err != nil || !info.IsDir() {
			errs = append(errs, fmt.Sprintf("grammar_dir is not a directory: %s", c.GrammarDir))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// userConfigPath returns the path to the user configuration file.
func userConfigPath() (string, error) {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "codestats", "config.yaml"), nil
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".config", "codestats", "config.yaml"), nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CODESTATS_FORMAT"); v != "" {
		cfg.Output.Format = Format(strings.ToLower(v))
	}

	if v := os.Getenv("CODESTATS_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}

	if v := os.Getenv("CODESTATS_GRAMMAR_DIR"); v != "" {
		cfg.GrammarDir = v
	}

	if v := os.Getenv("CODESTATS_CACHE"); v == "0" || strings.ToLower(v) == "false" {
		cfg.Cache.Enabled = false
	}

	if v := os.Getenv("CODESTATS_DEBUG"); v == "1" || strings.ToLower(v) == "true" {
		cfg.Debug = true
	}
}

// WriteDefault creates a default config file at the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	content := "# Codestats Configuration\n\n" + string(data)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
