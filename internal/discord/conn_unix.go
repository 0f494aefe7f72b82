//go:build !windows

package discord

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// dialTimeout bounds each socket connect attempt.
const dialTimeout = 2 * time.Second

// socketNames are the per-build socket prefixes (stable, Canary, PTB).
var socketNames = []string{"discord-ipc", "discordcanary-ipc", "discordptb-ipc"}

// packagedDirs are the runtime subdirectories used by sandboxed Discord
// installs, relative to /run/user/<uid>.
var packagedDirs = []string{
	"snap.discord",
	"snap.discord-canary",
	"snap.discord-ptb",
	"app/com.discordapp.Discord",
	"app/com.discordapp.DiscordCanary",
	"app/com.discordapp.DiscordPTB",
	".flatpak/dev.vencord.Vesktop/xdg-run",
}

// socketCandidates lists every socket path worth dialing, in preference
// order. runtimeDir is $XDG_RUNTIME_DIR (or $TMPDIR on macOS) and may be
// empty.
func socketCandidates(runtimeDir, tmpDir string, uid int) []string {
	var paths []string
	add := func(dir string) {
		for _, name := range socketNames {
			for i := range ipcSlots {
				paths = append(paths, filepath.Join(dir, name+"-"+strconv.Itoa(i)))
			}
		}
	}

	if runtimeDir != "" {
		add(runtimeDir)
	}
	if tmpDir != "" && tmpDir != runtimeDir {
		add(tmpDir)
	}
	if tmpDir != "/tmp" {
		add("/tmp")
	}

	userRun := filepath.Join("/run/user", strconv.Itoa(uid))
	for _, sub := range packagedDirs {
		for i := range ipcSlots {
			paths = append(paths, filepath.Join(userRun, sub, "discord-ipc-"+strconv.Itoa(i)))
		}
	}
	return append(paths, wslSocketPaths()...)
}

// connectToDiscord dials the first reachable IPC socket.
func connectToDiscord() (net.Conn, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	tmpDir := os.Getenv("TMPDIR")
	for _, path := range socketCandidates(runtimeDir, tmpDir, os.Getuid()) {
		conn, err := net.DialTimeout("unix", path, dialTimeout)
		if err == nil {
			return conn, nil
		}
	}
	if isWSL() {
		return nil, fmt.Errorf("%w: running under WSL, a socat + npiperelay.exe relay to the Windows pipe is required", ErrIPCNotAvailable)
	}
	return nil, ErrIPCNotAvailable
}
