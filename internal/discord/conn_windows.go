//go:build windows

package discord

import (
	"net"
	"strconv"
	"time"

	"github.com/Microsoft/go-winio"
)

// dialTimeout bounds each named pipe connect attempt.
const dialTimeout = 2 * time.Second

// connectToDiscord dials the first reachable \\.\pipe\discord-ipc-N.
func connectToDiscord() (net.Conn, error) {
	timeout := dialTimeout
	for i := range ipcSlots {
		conn, err := winio.DialPipe(`\\.\pipe\discord-ipc-`+strconv.Itoa(i), &timeout)
		if err == nil {
			return conn, nil
		}
	}
	return nil, ErrIPCNotAvailable
}
