// Package config loads dirstat's optional YAML configuration file and
// merges it over built-in defaults. CLI flags override both.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/michaelscutari/dirstat/internal/pathutil"
)

// Default configuration values. See [Config] for field descriptions.
const (
	DefaultWorkers   = 8
	DefaultXdev      = true
	DefaultMaxErrors = 0
	DefaultRetention = 20
	DefaultLogLevel  = "info"
)

// Config contains runtime configuration for scans and history.
type Config struct {
	Workers    int      // Number of concurrent directory readers (Default 8)
	Xdev       bool     // Don't descend across filesystem boundaries (Default true)
	MaxErrors  int      // Stop after N scan errors, 0 = unlimited (Default 0)
	Exclude    []string // Regex patterns for paths to skip
	HistoryDir string   // Directory for the scan history database (Default ~/.local/share/dirstat)
	Retention  int      // Scan sessions to retain in history, 0 = unlimited (Default 20)
	LogLevel   string   // trace|debug|info|warn|error (Default info)
}

// Override uses pointer fields to distinguish between unset and zero
// values when loading partial configuration from a file.
type Override struct {
	Workers    *int     `yaml:"workers,omitempty"`
	Xdev       *bool    `yaml:"xdev,omitempty"`
	MaxErrors  *int     `yaml:"max_errors,omitempty"`
	Exclude    []string `yaml:"exclude,omitempty"`
	HistoryDir *string  `yaml:"history_dir,omitempty"`
	Retention  *int     `yaml:"retention,omitempty"`
	LogLevel   *string  `yaml:"log_level,omitempty"`
}

// Default returns a Config with all default values.
func Default() *Config {
	return &Config{
		Workers:    DefaultWorkers,
		Xdev:       DefaultXdev,
		MaxErrors:  DefaultMaxErrors,
		HistoryDir: pathutil.ExpandHome("~/.local/share/dirstat"),
		Retention:  DefaultRetention,
		LogLevel:   DefaultLogLevel,
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dirstat", "config.yaml")
	}
	return pathutil.ExpandHome("~/.config/dirstat/config.yaml")
}

// Load reads the config file at path and applies it over the defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var ov Override
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.apply(&ov)
	return cfg, nil
}

func (c *Config) apply(ov *Override) {
	if ov.Workers != nil {
		c.Workers = *ov.Workers
	}
	if ov.Xdev != nil {
		c.Xdev = *ov.Xdev
	}
	if ov.MaxErrors != nil {
		c.MaxErrors = *ov.MaxErrors
	}
	if len(ov.Exclude) > 0 {
		c.Exclude = append(c.Exclude, ov.Exclude...)
	}
	if ov.HistoryDir != nil {
		c.HistoryDir = pathutil.ExpandHome(*ov.HistoryDir)
	}
	if ov.Retention != nil {
		c.Retention = *ov.Retention
	}
	if ov.LogLevel != nil {
		c.LogLevel = *ov.LogLevel
	}
}
