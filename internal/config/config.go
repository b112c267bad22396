package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/rustybrain/internal/brainpath"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default values.
const (
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "text"
	DefaultColor         = ColorAuto
	DefaultBackupCorrupt = true
)

// Config holds the full configuration for rustybrain.
type Config struct {
	// Logging
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Output
	Color string `toml:"color"`

	// Store
	BackupCorrupt bool `toml:"backup_corrupt"`

	// File is the config file that was read, if any. Not persisted.
	File string `toml:"-"`
}

// Default returns a config with built-in defaults.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = false
	cfg.LogCaller = false
	cfg.Color = DefaultColor
	cfg.BackupCorrupt = DefaultBackupCorrupt
}

// Load loads configuration for the given home directory. A config file that
// cannot be decoded does not stop loading: the returned config still holds
// defaults and environment overrides, and the decode error is returned
// alongside it for the caller to report.
func Load(home string) (*Config, error) {
	cfg := Default()

	var fileErr error
	if path := findUserConfigFile(home); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			fileErr = fmt.Errorf("loading user config file %s: %w", path, err)
			setDefaults(cfg)
		} else {
			cfg.File = path
		}
	}

	loadFromEnv(cfg)
	cfg.normalize()

	return cfg, fileErr
}

// findUserConfigFile returns the first existing config candidate.
func findUserConfigFile(home string) string {
	if home == "" {
		return ""
	}
	for _, path := range brainpath.ConfigCandidates(home) {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// loadConfigFile loads TOML config from the given file.
func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.Color = strings.ToLower(strings.TrimSpace(c.Color))
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		c.Color = DefaultColor
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
}
