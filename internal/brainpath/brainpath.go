// Package brainpath resolves the HOME-relative files rustybrain reads and writes.
package brainpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// StoreFile is the name of the task store inside HOME.
	StoreFile = ".rustytasks"

	// ConfigFile is the preferred user config file name inside HOME.
	ConfigFile = ".rustybrain.toml"

	// AppName is the directory name used under XDG config locations.
	AppName = "rustybrain"

	// XDGConfigFile is the config file name inside the XDG app directory.
	XDGConfigFile = "config.toml"

	corruptSuffix = ".corrupt."
)

// ErrHomeNotSet is returned when the HOME environment variable is unset or empty.
var ErrHomeNotSet = errors.New("HOME environment variable is not set")

// Home returns the value of HOME.
func Home() (string, error) {
	home := os.Getenv("HOME")
	if home == "" {
		return "", ErrHomeNotSet
	}
	return home, nil
}

// StorePath returns the store file inside home, e.g. ~/.rustytasks.
func StorePath(home string) string {
	return filepath.Join(home, StoreFile)
}

// ConfigCandidates lists user config files in lookup order.
func ConfigCandidates(home string) []string {
	candidates := []string{filepath.Join(home, ConfigFile)}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, AppName, XDGConfigFile))
	}
	return append(candidates, filepath.Join(home, ".config", AppName, XDGConfigFile))
}

// CorruptBackupPath returns the path a damaged store is copied to before
// it gets overwritten, e.g. ~/.rustytasks.corrupt.1700000000.
func CorruptBackupPath(storePath string, at time.Time) string {
	return fmt.Sprintf("%s%s%d", storePath, corruptSuffix, at.Unix())
}
