// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (TOML)
// 3. Environment variables (RUSTYBRAIN_*, NO_COLOR)
//
// Each level overrides the previous one. There are no config flags: the
// command line only carries task commands.
//
// User config locations, first existing file wins:
// - $HOME/.rustybrain.toml
// - $XDG_CONFIG_HOME/rustybrain/config.toml
// - $HOME/.config/rustybrain/config.toml
//
// Configuration covers presentation and diagnostics only. Task defaults
// (group "default", priority 3, sort by time) are fixed.
package config
