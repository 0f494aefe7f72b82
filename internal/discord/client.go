// Package discord talks to the local Discord client over its IPC socket and
// publishes Rich Presence activities.
//
// [Client] is the low-level connection: handshake, command framing, and a
// background reader that answers pings and notices disconnects. [Presence]
// sits on top and gives the daemon a best-effort publisher that connects
// lazily, suppresses duplicate updates, and re-delivers after Discord
// restarts.
package discord

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"sync"
)

// ///////////////////////////////////////////////
// Sentinel Errors
// ///////////////////////////////////////////////

// ErrNotConnected is returned by commands issued without a live connection.
var ErrNotConnected = errors.New("not connected")

// ///////////////////////////////////////////////
// Activity
// ///////////////////////////////////////////////

// Button is a clickable link shown under the activity. Discord accepts at
// most two.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Timestamps drives the elapsed-time counter.
type Timestamps struct {
	Start int64 `json:"start,omitempty"`
}

// Assets holds image keys or URLs and their hover text.
type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

// Activity is the Rich Presence payload for SET_ACTIVITY.
type Activity struct {
	Details    string      `json:"details,omitempty"`
	State      string      `json:"state,omitempty"`
	Timestamps *Timestamps `json:"timestamps,omitempty"`
	Assets     *Assets     `json:"assets,omitempty"`
	Buttons    []Button    `json:"buttons,omitempty"`
}

// Hash returns a hex SHA-256 digest of the activity's JSON form, or "" for
// nil.
func (a *Activity) Hash() string {
	if a == nil {
		return ""
	}
	data, err := json.Marshal(a)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// ///////////////////////////////////////////////
// Client
// ///////////////////////////////////////////////

// DialFunc opens a raw IPC connection to Discord.
type DialFunc func() (net.Conn, error)

// Client is a single IPC connection to Discord. It is safe for concurrent
// use.
type Client struct {
	appID string
	dial  DialFunc

	// mu guards conn, nonce, and user.
	mu    sync.Mutex
	conn  net.Conn
	nonce uint64
	// user is the Discord username reported in the READY event.
	user string
}

// NewClient creates a client for the given Discord application ID using the
// platform's IPC endpoints.
func NewClient(appID string) *Client {
	return &Client{appID: appID, dial: connectToDiscord}
}

// NewClientWithDialer creates a client that opens connections through dial.
func NewClientWithDialer(appID string, dial DialFunc) *Client {
	return &Client{appID: appID, dial: dial}
}

// AppID returns the application ID sent in the handshake.
func (c *Client) AppID() string { return c.appID }

// Connect dials Discord and performs the handshake, replacing any existing
// connection.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropLocked()

	conn, err := c.dial()
	if err != nil {
		return err
	}
	c.conn = conn

	if err := c.handshake(); err != nil {
		c.dropLocked()
		return err
	}
	go c.readLoop(conn)
	return nil
}

// SetActivity replaces the current activity.
func (c *Client) SetActivity(activity *Activity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setActivityLocked(activity)
}

// ClearActivity removes the current activity.
func (c *Client) ClearActivity() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setActivityLocked(nil)
}

// Disconnect closes the connection without clearing the activity. Discord
// removes the activity on its own once the socket closes.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked()
}

// Close clears the activity and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	_ = c.setActivityLocked(nil)
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Connected reports whether a connection is open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// User returns the username from the last successful handshake.
func (c *Client) User() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// ///////////////////////////////////////////////
// Internals
// ///////////////////////////////////////////////

// readyEvent is the subset of the handshake reply that matters.
type readyEvent struct {
	Cmd  string `json:"cmd"`
	Evt  string `json:"evt"`
	Data struct {
		Message string `json:"message"`
		User    struct {
			Username string `json:"username"`
		} `json:"user"`
	} `json:"data"`
}

// handshake sends the version handshake and waits for READY. The caller must
// hold c.mu.
func (c *Client) handshake() error {
	payload, err := json.Marshal(map[string]any{
		"v":         1,
		"client_id": c.appID,
	})
	if err != nil {
		return fmt.Errorf("marshaling handshake: %w", err)
	}
	if err := WriteFrame(c.conn, OpHandshake, payload); err != nil {
		return fmt.Errorf("writing handshake: %w", err)
	}

	op, data, err := DecodeFrame(c.conn)
	if err != nil {
		return fmt.Errorf("reading handshake response: %w", err)
	}
	if op == OpClose {
		var ev readyEvent
		_ = json.Unmarshal(data, &ev)
		return fmt.Errorf("handshake closed by discord: %s", ev.Data.Message)
	}
	if op != OpFrame {
		return fmt.Errorf("unexpected handshake response opcode: %d", op)
	}

	var ev readyEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("parsing handshake response: %w", err)
	}
	if ev.Evt == "ERROR" {
		return fmt.Errorf("handshake rejected: %s", ev.Data.Message)
	}
	c.user = ev.Data.User.Username
	return nil
}

// setActivityLocked sends SET_ACTIVITY. The caller must hold c.mu.
func (c *Client) setActivityLocked(activity *Activity) error {
	args := map[string]any{"pid": os.Getpid(), "activity": nil}
	if activity != nil {
		args["activity"] = activity
	}
	return c.sendCommand("SET_ACTIVITY", args)
}

// sendCommand writes one command frame. The caller must hold c.mu.
func (c *Client) sendCommand(cmd string, args map[string]any) error {
	if c.conn == nil {
		return ErrNotConnected
	}

	c.nonce++
	payload, err := json.Marshal(map[string]any{
		"cmd":   cmd,
		"args":  args,
		"nonce": strconv.FormatUint(c.nonce, 10),
	})
	if err != nil {
		return fmt.Errorf("marshaling command: %w", err)
	}
	if err := WriteFrame(c.conn, OpFrame, payload); err != nil {
		return fmt.Errorf("writing command: %w", err)
	}
	return nil
}

// dropLocked closes the current connection, if any. The caller must hold
// c.mu.
func (c *Client) dropLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// readLoop drains frames from conn until it fails. Pings are answered,
// command errors are logged, and a close frame or read error drops the
// connection if it is still current.
func (c *Client) readLoop(conn net.Conn) {
	for {
		op, data, err := DecodeFrame(conn)
		if err != nil {
			c.forget(conn, err)
			return
		}
		switch op {
		case OpPing:
			c.mu.Lock()
			if c.conn == conn {
				_ = WriteFrame(conn, OpPong, data)
			}
			c.mu.Unlock()
		case OpClose:
			c.forget(conn, errors.New("closed by discord"))
			return
		case OpFrame:
			var ev readyEvent
			if json.Unmarshal(data, &ev) == nil && ev.Evt == "ERROR" {
				slog.Warn("discord rejected command", "cmd", ev.Cmd, "message", ev.Data.Message)
			}
		}
	}
}

// forget drops conn if it is still the active connection.
func (c *Client) forget(conn net.Conn, reason error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn {
		return
	}
	slog.Debug("discord connection lost", "reason", reason)
	c.conn.Close()
	c.conn = nil
}
