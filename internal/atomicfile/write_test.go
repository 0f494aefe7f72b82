package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestWrite(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, path string)
		data  string
	}{
		{
			name: "new file",
			data: "version = 2\n",
		},
		{
			name: "overwrite",
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("version = 1\n"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
			data: "version = 2\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if tt.setup != nil {
				tt.setup(t, path)
			}
			if err := Write(path, []byte(tt.data), 0o644); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if string(got) != tt.data {
				t.Errorf("content = %q, want %q", got, tt.data)
			}
			assertNoTemps(t, filepath.Dir(path))
		})
	}
}

func TestWriteCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".config", "autostart", "rbxcord.desktop")
	if err := Write(path, []byte("[Desktop Entry]\n"), 0o644); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestWritePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rbxcord.pid")
	if err := Write(path, []byte("1234"), 0o600); err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	// Windows only honors the owner write bit.
	if info.Mode().Perm()&0o600 == 0 {
		t.Errorf("permissions = %o, want owner rw", info.Mode().Perm())
	}
}

func TestWriteConcurrentDistinctFiles(t *testing.T) {
	dir := t.TempDir()
	const n = 20

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path := filepath.Join(dir, fmt.Sprintf("file-%d.txt", i))
			if err := Write(path, []byte(fmt.Sprintf("writer-%d", i)), 0o644); err != nil {
				t.Errorf("Write %d: %v", i, err)
			}
		}()
	}
	wg.Wait()

	for i := range n {
		got, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf("file-%d.txt", i)))
		if err != nil {
			t.Errorf("ReadFile %d: %v", i, err)
			continue
		}
		if want := fmt.Sprintf("writer-%d", i); string(got) != want {
			t.Errorf("file %d = %q, want %q", i, got, want)
		}
	}
	assertNoTemps(t, dir)
}

func TestWriteFailureLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory at the target path makes the rename fail.
	target := filepath.Join(dir, "config.toml")
	if err := os.MkdirAll(filepath.Join(target, "child"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := Write(target, []byte("data"), 0o644); err == nil {
		t.Fatal("expected error when target is a directory")
	}
	assertNoTemps(t, dir)
}

func assertNoTemps(t *testing.T, dir string) {
	t.Helper()
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if matched, _ := filepath.Match("*.tmp.*", e.Name()); matched {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
