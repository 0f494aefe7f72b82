//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals stop the daemon gracefully. SIGTERM is what launchd and
// systemd send on logout.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
