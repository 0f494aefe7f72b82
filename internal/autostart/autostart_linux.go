//go:build linux

package autostart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tools.zach/dev/rbxcord/internal/atomicfile"
)

// desktopFile returns ~/.config/autostart/<id>.desktop, honoring
// XDG_CONFIG_HOME.
func desktopFile(e Entry) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "autostart", e.ID+".desktop"), nil
}

func desktopEntry(e Entry) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", e.Name)
	fmt.Fprintf(&b, "Exec=%s\n", commandLine(e))
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}

func enable(e Entry) error {
	path, err := desktopFile(e)
	if err != nil {
		return err
	}
	return atomicfile.Write(path, []byte(desktopEntry(e)), 0o644)
}

func disable(e Entry) error {
	path, err := desktopFile(e)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func enabled(e Entry) (bool, error) {
	path, err := desktopFile(e)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
