// Package autostart registers rbxcord to launch at login.
//
// Each platform uses its native per-user mechanism: a Run registry value on
// Windows, a LaunchAgent on macOS, and an XDG autostart entry on Linux.
// Nothing requires elevated privileges.
package autostart

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrUnsupported is returned on platforms without a login-item mechanism.
var ErrUnsupported = errors.New("autostart: not supported on this platform")

// Entry describes the program launched at login.
type Entry struct {
	// ID names the registry value, plist label suffix, or .desktop file.
	ID string
	// Name is the human-readable application name.
	Name string
	// Path is the absolute path of the executable.
	Path string
	// Args are passed to the executable.
	Args []string
}

// Sync makes the login item match enabled: it is created or refreshed when
// enabled and removed otherwise. Removing an entry that does not exist is not
// an error.
func Sync(e Entry, enabled bool) error {
	if e.ID == "" || (enabled && e.Path == "") {
		return errors.New("autostart: entry needs an ID and an executable path")
	}
	if enabled {
		if err := enable(e); err != nil {
			return fmt.Errorf("enable autostart: %w", err)
		}
		slog.Debug("autostart enabled", "id", e.ID, "path", e.Path)
		return nil
	}
	if err := disable(e); err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	slog.Debug("autostart disabled", "id", e.ID)
	return nil
}

// Enabled reports whether a login item for e is currently registered.
func Enabled(e Entry) (bool, error) {
	return enabled(e)
}

// commandLine joins path and args, quoting any part that contains spaces.
func commandLine(e Entry) string {
	parts := make([]string, 0, 1+len(e.Args))
	for _, p := range append([]string{e.Path}, e.Args...) {
		if strings.ContainsAny(p, " \t") {
			p = `"` + strings.ReplaceAll(p, `"`, `\"`) + `"`
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}
