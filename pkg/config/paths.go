package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// DefaultConfigPath is ~/.config/lowbatt/config.json, honoring XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ExpandHome("~/.config/lowbatt/config.json")
	}
	return filepath.Join(dir, "lowbatt", "config.json")
}

// DefaultSocketPath lives in XDG_RUNTIME_DIR, or /tmp when it is unset.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "lowbatt.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("lowbatt-%d.sock", os.Getuid()))
}

// DefaultLogPath is used when the terminal is taken by the TUI presenter.
func DefaultLogPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "lowbatt", "lowbatt.log")
	}
	return ExpandHome("~/.local/state/lowbatt/lowbatt.log")
}
