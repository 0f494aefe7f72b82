// WSL2 cannot reach Windows named pipes directly. A relay such as
//
//	socat UNIX-LISTEN:/tmp/discord-ipc-0,fork EXEC:"npiperelay.exe -ep -s //./pipe/discord-ipc-0"
//
// exposes the pipe as a Unix socket, which the paths below cover.

//go:build linux

package discord

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

var wslOnce = sync.OnceValue(func() bool {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "microsoft")
})

// isWSL reports whether the process runs inside WSL.
func isWSL() bool { return wslOnce() }

// wslSocketPaths returns relay socket locations when running under WSL.
func wslSocketPaths() []string {
	if !isWSL() {
		return nil
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return nil
	}
	var paths []string
	for i := range ipcSlots {
		paths = append(paths, home+"/.discord-ipc-"+strconv.Itoa(i))
	}
	return paths
}
