package logtail

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// ///////////////////////////////////////////////
// Monitor
// ///////////////////////////////////////////////

// binding pairs the selected log path with the reader opened on it. A
// binding is replaced wholesale when the selection changes.
type binding struct {
	path   string
	reader *Reader
}

// Monitor follows the most recently modified log file in a directory.
type Monitor struct {
	// dir is the directory scanned for log files.
	dir string
	// glob filters directory entries by base name (e.g. "*.log").
	glob string
	// bound is the current file binding, or nil before the first poll and
	// after [Monitor.Clear].
	bound *binding
}

// NewMonitor creates a Monitor for log files in dir whose base name matches
// the doublestar pattern glob.
func NewMonitor(dir, glob string) *Monitor {
	return &Monitor{dir: dir, glob: glob}
}

// Dir returns the directory being monitored.
func (m *Monitor) Dir() string { return m.dir }

// BoundPath returns the path of the currently bound log file, or "".
func (m *Monitor) BoundPath() string {
	if m.bound == nil {
		return ""
	}
	return m.bound.path
}

// CheckLatest rebinds to the newest log file if the selection changed, reads
// the lines appended since the previous call, and returns the first place
// identifier among them. Later identifiers in the same batch are dropped, so
// one poll surfaces at most one change.
func (m *Monitor) CheckLatest() (string, bool) {
	latest, ok := LatestLog(m.dir, m.glob)
	if !ok {
		return "", false
	}

	if m.bound == nil || m.bound.path != latest {
		slog.Info("switching log file", "file", filepath.Base(latest))
		m.Clear()
		r, err := Open(latest)
		if err != nil {
			slog.Warn("failed to open log", "error", err)
			return "", false
		}
		m.bound = &binding{path: latest, reader: r}
	}

	lines := m.bound.reader.NewLines()
	if err := m.bound.reader.Err(); err != nil {
		slog.Debug("log read failed, retrying next poll", "error", err)
		return "", false
	}
	for _, line := range lines {
		if id, ok := ExtractPlaceID(line); ok {
			return id, true
		}
	}
	return "", false
}

// Clear drops the current binding, closing its file and discarding any
// buffered partial line. The next [Monitor.CheckLatest] selects afresh.
func (m *Monitor) Clear() {
	if m.bound == nil {
		return
	}
	if err := m.bound.reader.Close(); err != nil {
		slog.Debug("closing log reader", "path", m.bound.path, "error", err)
	}
	m.bound = nil
}

// ///////////////////////////////////////////////
// Log Discovery
// ///////////////////////////////////////////////

// LatestLog returns the regular file directly inside dir whose base name
// matches glob and whose modification time is greatest. Ties keep the entry
// that sorts first by name. ok is false when dir is missing or holds no
// matching files.
func LatestLog(dir, glob string) (path string, ok bool) {
	if dir == "" {
		return "", false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	var latestMod time.Time
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if matched, _ := doublestar.Match(glob, e.Name()); !matched {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if path == "" || info.ModTime().After(latestMod) {
			latestMod = info.ModTime()
			path = filepath.Join(dir, e.Name())
		}
	}
	return path, path != ""
}
