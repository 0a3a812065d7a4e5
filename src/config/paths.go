package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// GetDefaultLogPath returns the default application log file path
func GetDefaultLogPath() string {
	// XDG_STATE_HOME holds runtime state data
	return filepath.Join(xdg.StateHome, "calagent", "calagent.log")
}

// GetDefaultSessionLogDir returns the default per-session audit log directory
func GetDefaultSessionLogDir() string {
	return filepath.Join(xdg.StateHome, "calagent", "sessions")
}

// GetDefaultDataPath returns the default data directory path
func GetDefaultDataPath() string {
	return filepath.Join(xdg.DataHome, "calagent")
}
