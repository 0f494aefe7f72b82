//go:build windows

package main

import "os"

// shutdownSignals stop the daemon gracefully. The runtime maps Ctrl+C,
// Ctrl+Break, and console close to os.Interrupt.
var shutdownSignals = []os.Signal{os.Interrupt}
