package logtail

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
)

// chunkSize is the read buffer size used when draining appended bytes.
const chunkSize = 32 << 10

// Reader yields lines appended to a single log file since the previous call.
// The file handle's cursor is the only position tracked: the file is never
// reopened or rewound.
type Reader struct {
	// path is the file the handle was opened from.
	path string
	// file is the shared-read handle; its cursor marks consumed bytes.
	file *os.File
	// pending holds bytes read past the last newline.
	pending []byte
	// chunk is the reusable read buffer, allocated on first read.
	chunk []byte
	// err is the failure from the most recent read, if any.
	err error
}

// Open opens path for shared reading. It returns an [*OpenError] when the
// file cannot be opened.
func Open(path string) (*Reader, error) {
	f, err := openShared(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	return &Reader{path: path, file: f}, nil
}

// Path returns the file the reader is bound to.
func (r *Reader) Path() string { return r.path }

// Err returns the [*ReadError] from the most recent [Reader.NewLines] call,
// or nil if that call read successfully.
func (r *Reader) Err() error { return r.err }

// NewLines reads everything appended since the previous call and returns the
// complete lines in order, each trimmed of surrounding whitespace. Invalid
// UTF-8 is replaced rather than rejected. A trailing partial line stays
// buffered until its newline arrives. On a read failure it returns nil and
// records the error for [Reader.Err]; the buffered bytes are kept.
func (r *Reader) NewLines() []string {
	if err := r.fill(); err != nil {
		r.err = err
		return nil
	}
	r.err = nil

	if bytes.IndexByte(r.pending, '\n') < 0 {
		return nil
	}

	var lines []string
	start := 0
	for {
		i := bytes.IndexByte(r.pending[start:], '\n')
		if i < 0 {
			break
		}
		lines = append(lines, decodeLine(r.pending[start:start+i]))
		start += i + 1
	}
	r.pending = append(r.pending[:0], r.pending[start:]...)
	return lines
}

// Close releases the file handle and drops any buffered partial line.
func (r *Reader) Close() error {
	r.pending = nil
	return r.file.Close()
}

// fill drains the handle up to EOF into pending.
func (r *Reader) fill() error {
	if r.chunk == nil {
		r.chunk = make([]byte, chunkSize)
	}
	for {
		n, err := r.file.Read(r.chunk)
		if n > 0 {
			r.pending = append(r.pending, r.chunk[:n]...)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &ReadError{Path: r.path, Err: err}
		}
		if n == 0 {
			return nil
		}
	}
}

// decodeLine converts raw line bytes to trimmed text, replacing invalid
// UTF-8 sequences with U+FFFD.
func decodeLine(b []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(b), "\uFFFD"))
}
