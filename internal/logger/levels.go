// Package logger is the rbxcord log sink: a line-oriented slog handler
// writing to a rotating file.
//
// Each record is one line:
//
//	2006-01-02T15:04:05.000Z [LEVEL] message | key=value, key2="two words"
package logger

import (
	"log/slog"
	"strings"
)

// LevelTrace sits below debug and covers per-poll chatter such as "no place
// yet" on every log check.
const LevelTrace slog.Level = slog.LevelDebug - 4

var levelNames = []struct {
	name  string
	level slog.Level
}{
	{"TRACE", LevelTrace},
	{"DEBUG", slog.LevelDebug},
	{"INFO", slog.LevelInfo},
	{"WARN", slog.LevelWarn},
	{"ERROR", slog.LevelError},
}

// levelName returns the label for the highest named level not above l.
func levelName(l slog.Level) string {
	name := levelNames[0].name
	for _, n := range levelNames {
		if l >= n.level {
			name = n.name
		}
	}
	return name
}

// ParseLevel maps a config level name to a slog level, case-insensitively.
// "warning" is accepted for warn. Unknown names read as info.
func ParseLevel(s string) slog.Level {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "WARNING" {
		s = "WARN"
	}
	for _, n := range levelNames {
		if n.name == s {
			return n.level
		}
	}
	return slog.LevelInfo
}
