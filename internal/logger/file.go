package logger

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ///////////////////////////////////////////////
// Rotating File
// ///////////////////////////////////////////////

// Rotation limits for daemon.log beyond the configured size.
const (
	maxBackups = 3
	maxAgeDays = 28
)

// Options configures [NewLogger].
type Options struct {
	// Path is the log file. Its directory is created if missing.
	Path string
	// Level is the minimum severity written; nil means info.
	Level slog.Leveler
	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int
	// Console, when non-nil, receives a copy of every line.
	Console io.Writer
}

// NewLogger returns a logger writing to a rotating file and, optionally, a
// console. Close the returned io.Closer on shutdown.
func NewLogger(opts Options) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	file := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	var w io.Writer = file
	if opts.Console != nil {
		w = io.MultiWriter(file, opts.Console)
	}
	return slog.New(NewHandler(w, opts.Level)), file, nil
}

// ///////////////////////////////////////////////
// Tail
// ///////////////////////////////////////////////

// tailChunk is how far each backwards read steps.
const tailChunk = 8 << 10

// ReadTail returns the last n lines of the file at path, oldest first,
// without a trailing newline. It reads backwards from the end so large logs
// cost only what is returned.
func ReadTail(path string, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return "", fmt.Errorf("seeking log file: %w", err)
	}

	var tail []byte
	pos := end
	for pos > 0 {
		step := min(int64(tailChunk), pos)
		pos -= step
		chunk := make([]byte, step)
		if _, err := f.ReadAt(chunk, pos); err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading log file: %w", err)
		}
		tail = append(chunk, tail...)
		// One extra newline marks the start of the oldest wanted line.
		if bytes.Count(bytes.TrimRight(tail, "\r\n"), []byte("\n")) >= n {
			break
		}
	}

	tail = bytes.TrimRight(tail, "\r\n")
	if len(tail) == 0 {
		return "", nil
	}
	lines := bytes.Split(tail, []byte("\n"))
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for i, l := range lines {
		lines[i] = bytes.TrimSuffix(l, []byte("\r"))
	}
	return string(bytes.Join(lines, []byte("\n"))), nil
}
