// Tests for [Reader]: incremental line delivery, partial-line buffering,
// decoding, and open failures.
package logtail

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ///////////////////////////////////////////////
// Test Helpers
// ///////////////////////////////////////////////

// appendFile appends s to the file at path, creating it if needed.
func appendFile(t *testing.T, path, s string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	if _, err := f.WriteString(s); err != nil {
		f.Close()
		t.Fatalf("write %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

func openReader(t *testing.T, path string) *Reader {
	t.Helper()
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

// ///////////////////////////////////////////////
// Reader.NewLines
// ///////////////////////////////////////////////

func TestReaderPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	appendFile(t, path, "abc\ndef")
	r := openReader(t, path)

	if diff := cmp.Diff([]string{"abc"}, r.NewLines()); diff != "" {
		t.Errorf("first read (-want +got):\n%s", diff)
	}

	appendFile(t, path, "ghi\n")
	if diff := cmp.Diff([]string{"defghi"}, r.NewLines()); diff != "" {
		t.Errorf("second read (-want +got):\n%s", diff)
	}

	if got := r.NewLines(); got != nil {
		t.Errorf("third read = %q, want nil", got)
	}
}

func TestReaderNoNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	appendFile(t, path, "no newline yet")
	r := openReader(t, path)

	if got := r.NewLines(); got != nil {
		t.Errorf("NewLines = %q, want nil", got)
	}
	appendFile(t, path, "\n")
	if diff := cmp.Diff([]string{"no newline yet"}, r.NewLines()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestReaderTrimsAndKeepsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	appendFile(t, path, "  padded \r\n\n\tx\n")
	r := openReader(t, path)

	want := []string{"padded", "", "x"}
	if diff := cmp.Diff(want, r.NewLines()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestReaderInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	appendFile(t, path, "bad \xff byte placeid:9\n")
	r := openReader(t, path)

	lines := r.NewLines()
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if want := "bad \uFFFD byte placeid:9"; lines[0] != want {
		t.Errorf("line = %q, want %q", lines[0], want)
	}
	if id, ok := ExtractPlaceID(lines[0]); !ok || id != "9" {
		t.Errorf("ExtractPlaceID = (%q, %v), want (\"9\", true)", id, ok)
	}
}

func TestReaderLargeAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	appendFile(t, path, "")
	r := openReader(t, path)

	long := strings.Repeat("x", 3*chunkSize) + " placeId:55"
	appendFile(t, path, "head\n"+long+"\ntail")
	want := []string{"head", long}
	if diff := cmp.Diff(want, r.NewLines()); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	appendFile(t, path, "")
	r := openReader(t, path)
	if r.Path() != path {
		t.Errorf("Path() = %q, want %q", r.Path(), path)
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

// ///////////////////////////////////////////////
// Open
// ///////////////////////////////////////////////

func TestOpenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.log")
	_, err := Open(path)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var oe *OpenError
	if !errors.As(err, &oe) {
		t.Fatalf("error type = %T, want *OpenError", err)
	}
	if oe.Path != path {
		t.Errorf("OpenError.Path = %q, want %q", oe.Path, path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("errors.Is(err, os.ErrNotExist) = false for %v", err)
	}
}
