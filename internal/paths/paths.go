// Package paths centralizes file and directory names used across the project.
// All data directory file names are defined here as the single source of truth,
// alongside the per-platform location of the Roblox log directory.
package paths

import (
	"os"
	"path/filepath"
)

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Data directory file names.
const (
	PIDFile    = "daemon.pid"
	ConfigFile = "config.toml"
	LogFile    = "daemon.log"
	BinaryName = "rbxcord"
	DataDirRel = ".rbxcord" // relative to $HOME
)

// Roblox install layout.
const (
	// RobloxLogGlob selects the client's session log files by base name.
	RobloxLogGlob = "*.log"
)

// Legacy settings written by the original tray application. Imported once on
// first run so existing users keep their preferences.
const (
	LegacySettingsDir  = "roblox_discord_presence"
	LegacySettingsFile = "settings.toml"
)

// Remote-fetched file paths (relative to repo root).
const (
	ReleaseManifest = ".release-manifest.json"
)

// ///////////////////////////////////////////////
// DataDir
// ///////////////////////////////////////////////

// DataDir provides path construction methods rooted at a data directory.
type DataDir struct {
	Root string
}

// PID returns the full path to the PID file.
func (d DataDir) PID() string { return filepath.Join(d.Root, PIDFile) }

// Config returns the full path to the config file.
func (d DataDir) Config() string { return filepath.Join(d.Root, ConfigFile) }

// Log returns the full path to the log file.
func (d DataDir) Log() string { return filepath.Join(d.Root, LogFile) }

// ///////////////////////////////////////////////
// Roblox Logs
// ///////////////////////////////////////////////

// RobloxLogs returns the directory the Roblox client writes its session logs
// to, resolved against home. The first candidate that exists on disk wins;
// when none exist the first candidate is returned so callers can still watch
// for it to appear. Returns "" when home is empty.
func RobloxLogs(home string) string {
	if home == "" {
		return ""
	}
	candidates := robloxLogCandidates()
	for _, rel := range candidates {
		p := filepath.Join(home, rel)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p
		}
	}
	return filepath.Join(home, candidates[0])
}

// LegacySettings returns the path of the original application's settings
// file under the user config directory, or "" if that directory is unknown.
func LegacySettings() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, LegacySettingsDir, LegacySettingsFile)
}
