package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ///////////////////////////////////////////////
// Publish Errors
// ///////////////////////////////////////////////

// PublishError reports a failed presence write. The connection has already
// been reset when it is returned.
type PublishError struct {
	// Op is "set" or "clear".
	Op  string
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("discord %s activity: %v", e.Op, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// ///////////////////////////////////////////////
// Presence
// ///////////////////////////////////////////////

// Presence is a best-effort activity publisher. Every call connects first if
// needed; when Discord is unreachable the call is a silent no-op and the
// desired activity is remembered for [Presence.Run] to deliver later.
type Presence struct {
	client *Client
	// retry is the minimum gap between connect attempts.
	retry time.Duration
	now   func() time.Time

	mu sync.Mutex
	// want is the activity that should be showing; nil means none.
	want *Activity
	// delivered is true once want has reached Discord.
	delivered bool
	// lastHash is the hash of the last activity Discord accepted.
	lastHash    string
	lastAttempt time.Time
}

// NewPresence wraps client. retry throttles reconnect attempts; zero retries
// on every call.
func NewPresence(client *Client, retry time.Duration) *Presence {
	return &Presence{client: client, retry: retry, now: time.Now, delivered: true}
}

// Publish shows activity, skipping the write when Discord already shows an
// identical one.
func (p *Presence) Publish(activity *Activity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.want = activity
	p.delivered = false
	return p.deliverLocked(true)
}

// Clear removes the activity.
func (p *Presence) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.want = nil
	p.delivered = false
	return p.deliverLocked(true)
}

// Run re-delivers the wanted activity every interval while it is
// undelivered or the connection has dropped, until ctx ends. It then clears
// the presence and closes the connection.
func (p *Presence) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.Close()
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.want != nil && (!p.delivered || !p.client.Connected()) {
				if err := p.deliverLocked(false); err != nil {
					slog.Warn("presence retry failed", "error", err)
				}
			}
			p.mu.Unlock()
		}
	}
}

// Close clears the activity and disconnects.
func (p *Presence) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.client.Close(); err != nil {
		slog.Debug("closing discord connection", "error", err)
	}
	p.lastHash = ""
}

// deliverLocked pushes want to Discord. force bypasses the reconnect
// throttle. The caller must hold p.mu.
func (p *Presence) deliverLocked(force bool) error {
	if !p.client.Connected() {
		if !force && p.now().Sub(p.lastAttempt) < p.retry {
			return nil
		}
		p.lastAttempt = p.now()
		if err := p.client.Connect(); err != nil {
			slog.Debug("discord unavailable", "error", err)
			// A closed socket shows nothing, so a clear is already satisfied.
			p.delivered = p.want == nil
			return nil
		}
		slog.Info("connected to discord", "user", p.client.User())
		p.lastHash = ""
	}

	if p.want == nil {
		if err := p.client.ClearActivity(); err != nil {
			return p.reset("clear", err)
		}
		p.lastHash = ""
		p.delivered = true
		slog.Debug("presence cleared")
		return nil
	}

	hash := p.want.Hash()
	if hash == p.lastHash {
		p.delivered = true
		return nil
	}
	if err := p.client.SetActivity(p.want); err != nil {
		return p.reset("set", err)
	}
	p.lastHash = hash
	p.delivered = true
	slog.Debug("presence updated", "details", p.want.Details, "state", p.want.State)
	return nil
}

// reset drops the connection after a failed write. The caller must hold p.mu.
func (p *Presence) reset(op string, err error) error {
	p.client.Disconnect()
	p.lastHash = ""
	p.delivered = false
	return &PublishError{Op: op, Err: err}
}
