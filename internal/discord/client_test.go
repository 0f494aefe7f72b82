// Tests for [Client] and [Presence] against an in-memory Discord peer.
package discord

import (
	"encoding/json"
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// ///////////////////////////////////////////////
// Test Helpers
// ///////////////////////////////////////////////

// received is one frame read by the fake peer.
type received struct {
	op   Opcode
	body map[string]any
}

// flakyConn fails writes on demand.
type flakyConn struct {
	net.Conn
	fail atomic.Bool
}

func (c *flakyConn) Write(b []byte) (int, error) {
	if c.fail.Load() {
		return 0, errors.New("broken pipe")
	}
	return c.Conn.Write(b)
}

// fakeDiscord plays the Discord side of the IPC protocol over net.Pipe.
type fakeDiscord struct {
	t *testing.T
	// reject makes the handshake answer with an ERROR event.
	reject string

	mu       sync.Mutex
	dials    int
	failDial bool
	servers  []net.Conn
	clients  []*flakyConn

	frames chan received
}

func newFakeDiscord(t *testing.T) *fakeDiscord {
	f := &fakeDiscord{t: t, frames: make(chan received, 64)}
	t.Cleanup(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, s := range f.servers {
			s.Close()
		}
	})
	return f
}

func (f *fakeDiscord) dial() (net.Conn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dials++
	if f.failDial {
		return nil, ErrIPCNotAvailable
	}
	server, client := net.Pipe()
	fc := &flakyConn{Conn: client}
	f.servers = append(f.servers, server)
	f.clients = append(f.clients, fc)
	go f.serve(server)
	return fc, nil
}

func (f *fakeDiscord) setFailDial(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failDial = v
}

func (f *fakeDiscord) dialCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dials
}

func (f *fakeDiscord) lastClient() *flakyConn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clients[len(f.clients)-1]
}

func (f *fakeDiscord) lastServer() net.Conn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.servers[len(f.servers)-1]
}

func (f *fakeDiscord) serve(conn net.Conn) {
	defer conn.Close()
	first := true
	for {
		op, data, err := DecodeFrame(conn)
		if err != nil {
			return
		}
		var body map[string]any
		_ = json.Unmarshal(data, &body)
		f.frames <- received{op: op, body: body}

		if first {
			first = false
			reply := map[string]any{
				"cmd": "DISPATCH",
				"evt": "READY",
				"data": map[string]any{
					"user": map[string]any{"username": "tester"},
				},
			}
			if f.reject != "" {
				reply = map[string]any{"evt": "ERROR", "data": map[string]any{"message": f.reject}}
			}
			payload, _ := json.Marshal(reply)
			if err := WriteFrame(conn, OpFrame, payload); err != nil {
				return
			}
		}
	}
}

// next returns the next frame the peer received.
func (f *fakeDiscord) next(t *testing.T) received {
	t.Helper()
	select {
	case r := <-f.frames:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for frame")
		return received{}
	}
}

// expectNone asserts no frame arrives within a short window.
func (f *fakeDiscord) expectNone(t *testing.T) {
	t.Helper()
	select {
	case r := <-f.frames:
		t.Fatalf("unexpected frame: op=%d body=%v", r.op, r.body)
	case <-time.After(50 * time.Millisecond):
	}
}

// activityOf extracts args.activity from a SET_ACTIVITY frame.
func activityOf(t *testing.T, r received) map[string]any {
	t.Helper()
	if r.op != OpFrame || r.body["cmd"] != "SET_ACTIVITY" {
		t.Fatalf("frame = op %d cmd %v, want SET_ACTIVITY", r.op, r.body["cmd"])
	}
	args, ok := r.body["args"].(map[string]any)
	if !ok {
		t.Fatalf("args = %T, want object", r.body["args"])
	}
	if pid, _ := args["pid"].(float64); int(pid) != os.Getpid() {
		t.Errorf("pid = %v, want %d", args["pid"], os.Getpid())
	}
	act, _ := args["activity"].(map[string]any)
	return act
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func connectedClient(t *testing.T, f *fakeDiscord) *Client {
	t.Helper()
	c := NewClientWithDialer("1442858852730277890", f.dial)
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	f.next(t) // handshake
	return c
}

// ///////////////////////////////////////////////
// Client
// ///////////////////////////////////////////////

func TestClientConnectHandshake(t *testing.T) {
	f := newFakeDiscord(t)
	c := NewClientWithDialer("1442858852730277890", f.dial)

	if c.Connected() {
		t.Fatal("Connected() = true before Connect")
	}
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	hs := f.next(t)
	if hs.op != OpHandshake {
		t.Fatalf("opcode = %d, want %d", hs.op, OpHandshake)
	}
	if v, _ := hs.body["v"].(float64); v != 1 {
		t.Errorf("v = %v, want 1", hs.body["v"])
	}
	if hs.body["client_id"] != "1442858852730277890" {
		t.Errorf("client_id = %v", hs.body["client_id"])
	}
	if !c.Connected() {
		t.Error("Connected() = false after Connect")
	}
	if c.User() != "tester" {
		t.Errorf("User() = %q, want tester", c.User())
	}
	if c.AppID() != "1442858852730277890" {
		t.Errorf("AppID() = %q", c.AppID())
	}
}

func TestClientHandshakeRejected(t *testing.T) {
	f := newFakeDiscord(t)
	f.reject = "Invalid Client ID"
	c := NewClientWithDialer("bogus", f.dial)

	err := c.Connect()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if c.Connected() {
		t.Error("Connected() = true after rejected handshake")
	}
}

func TestClientDialFailure(t *testing.T) {
	f := newFakeDiscord(t)
	f.setFailDial(true)
	c := NewClientWithDialer("1", f.dial)

	if err := c.Connect(); !errors.Is(err, ErrIPCNotAvailable) {
		t.Errorf("err = %v, want ErrIPCNotAvailable", err)
	}
}

func TestClientSetAndClearActivity(t *testing.T) {
	f := newFakeDiscord(t)
	c := connectedClient(t, f)

	err := c.SetActivity(&Activity{
		Details:    "Jailbreak",
		State:      "by Badimo",
		Timestamps: &Timestamps{Start: 1700000000},
		Assets:     &Assets{LargeImage: "https://tr.rbxcdn.com/icon.png", SmallImage: "roblox_logo"},
		Buttons:    []Button{{Label: "View Game", URL: "https://www.roblox.com/games/606849621"}},
	})
	if err != nil {
		t.Fatalf("SetActivity: %v", err)
	}
	r := f.next(t)
	act := activityOf(t, r)
	if act["details"] != "Jailbreak" || act["state"] != "by Badimo" {
		t.Errorf("activity = %v", act)
	}
	if buttons, _ := act["buttons"].([]any); len(buttons) != 1 {
		t.Errorf("buttons = %v, want 1 entry", act["buttons"])
	}
	nonce1, _ := r.body["nonce"].(string)

	if err := c.ClearActivity(); err != nil {
		t.Fatalf("ClearActivity: %v", err)
	}
	r = f.next(t)
	if act := activityOf(t, r); act != nil {
		t.Errorf("cleared activity = %v, want null", act)
	}
	if nonce2, _ := r.body["nonce"].(string); nonce2 == "" || nonce2 == nonce1 {
		t.Errorf("nonces %q and %q should be distinct and non-empty", nonce1, nonce2)
	}
}

func TestClientNotConnected(t *testing.T) {
	c := NewClientWithDialer("1", nil)
	if err := c.SetActivity(&Activity{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SetActivity err = %v, want ErrNotConnected", err)
	}
	if err := c.ClearActivity(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("ClearActivity err = %v, want ErrNotConnected", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close on idle client: %v", err)
	}
}

func TestClientAnswersPing(t *testing.T) {
	f := newFakeDiscord(t)
	connectedClient(t, f)

	if err := WriteFrame(f.lastServer(), OpPing, []byte(`{"n":7}`)); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	r := f.next(t)
	if r.op != OpPong {
		t.Fatalf("opcode = %d, want %d", r.op, OpPong)
	}
	if n, _ := r.body["n"].(float64); n != 7 {
		t.Errorf("pong payload = %v, want echo of ping", r.body)
	}
}

func TestClientServerClose(t *testing.T) {
	f := newFakeDiscord(t)
	c := connectedClient(t, f)

	if err := WriteFrame(f.lastServer(), OpClose, []byte(`{"code":1000}`)); err != nil {
		t.Fatalf("write close: %v", err)
	}
	waitFor(t, func() bool { return !c.Connected() })
}

func TestClientCloseClears(t *testing.T) {
	f := newFakeDiscord(t)
	c := connectedClient(t, f)

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if act := activityOf(t, f.next(t)); act != nil {
		t.Errorf("Close sent activity %v, want null", act)
	}
	if c.Connected() {
		t.Error("Connected() = true after Close")
	}
}

func TestActivityHash(t *testing.T) {
	var nilAct *Activity
	if nilAct.Hash() != "" {
		t.Error("nil activity should hash to empty string")
	}
	a := &Activity{Details: "a"}
	b := &Activity{Details: "a"}
	c := &Activity{Details: "a", State: "b"}
	if a.Hash() != b.Hash() {
		t.Error("equal activities hash differently")
	}
	if a.Hash() == c.Hash() {
		t.Error("different activities hash equally")
	}
}
