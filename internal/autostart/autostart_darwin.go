//go:build darwin

package autostart

import (
	"bytes"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"

	"tools.zach/dev/rbxcord/internal/atomicfile"
)

// labelPrefix namespaces the LaunchAgent label.
const labelPrefix = "dev.zach."

func plistFile(e Entry) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "LaunchAgents", labelPrefix+e.ID+".plist"), nil
}

func plist(e Entry) []byte {
	var b bytes.Buffer
	str := func(s string) {
		b.WriteString("\t\t<string>")
		xml.EscapeText(&b, []byte(s))
		b.WriteString("</string>\n")
	}

	b.WriteString(xml.Header)
	b.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	b.WriteString("<plist version=\"1.0\">\n<dict>\n")
	b.WriteString("\t<key>Label</key>\n")
	str(labelPrefix + e.ID)
	b.WriteString("\t<key>ProgramArguments</key>\n\t<array>\n")
	str(e.Path)
	for _, a := range e.Args {
		str(a)
	}
	b.WriteString("\t</array>\n")
	b.WriteString("\t<key>RunAtLoad</key>\n\t<true/>\n")
	b.WriteString("</dict>\n</plist>\n")
	return b.Bytes()
}

func enable(e Entry) error {
	path, err := plistFile(e)
	if err != nil {
		return err
	}
	return atomicfile.Write(path, plist(e), 0o644)
}

func disable(e Entry) error {
	path, err := plistFile(e)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func enabled(e Entry) (bool, error) {
	path, err := plistFile(e)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
