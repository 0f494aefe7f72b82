// Package atomicfile writes config, autostart entries, and lock metadata so
// that readers never observe a half-written file.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// renameAttempts bounds retries of the final rename on Windows, where a
// reader holding the target open fails the rename with a sharing violation.
const renameAttempts = 5

// Write replaces path with data through a temp file in the same directory
// and a rename. Missing parent directories are created. On failure the temp
// file is removed and path is left as it was.
func Write(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if err := fill(f, data); err != nil {
		return err
	}
	if err := os.Chmod(tmp, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := replace(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// fill writes, syncs, and closes f.
func fill(f *os.File, data []byte) error {
	_, werr := f.Write(data)
	if werr == nil {
		werr = f.Sync()
	}
	cerr := f.Close()
	switch {
	case werr != nil:
		return fmt.Errorf("write temp file: %w", werr)
	case cerr != nil:
		return fmt.Errorf("close temp file: %w", cerr)
	}
	return nil
}

func replace(tmp, path string) error {
	var err error
	for i := range renameAttempts {
		if err = os.Rename(tmp, path); err == nil || runtime.GOOS != "windows" {
			return err
		}
		time.Sleep(time.Duration(i+1) * 20 * time.Millisecond)
	}
	return err
}
