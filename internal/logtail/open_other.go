//go:build !windows

package logtail

import "os"

// openShared opens path read-only. Unix file locks are advisory, so a plain
// open never blocks the writer.
func openShared(path string) (*os.File, error) {
	return os.Open(path)
}
