package config

import (
	"os"

	"github.com/nibzard/rustybrain/internal/utils"
)

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("RUSTYBRAIN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("RUSTYBRAIN_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("RUSTYBRAIN_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = utils.BoolFromString(v)
	}
	if v := os.Getenv("RUSTYBRAIN_LOG_CALLER"); v != "" {
		cfg.LogCaller = utils.BoolFromString(v)
	}
	if v := os.Getenv("RUSTYBRAIN_BACKUP_CORRUPT"); v != "" {
		cfg.BackupCorrupt = utils.BoolFromString(v)
	}

	// https://no-color.org: any non-empty value disables color.
	if os.Getenv("NO_COLOR") != "" {
		cfg.Color = ColorNever
	}
	if v := os.Getenv("RUSTYBRAIN_COLOR"); v != "" {
		cfg.Color = v
	}
}
