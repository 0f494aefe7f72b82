// Package notify delivers short user-facing messages such as lookup
// failures and update announcements.
package notify

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Notifier shows a message to the user. Implementations must return
// promptly; delivery happens in the background and failures are only
// logged.
type Notifier interface {
	Notify(title, message string)
}

// ///////////////////////////////////////////////
// Desktop
// ///////////////////////////////////////////////

// AppName labels notifications where the platform supports it.
const AppName = "rbxcord"

// deliveryTimeout bounds one notification helper process.
const deliveryTimeout = 10 * time.Second

// command is a helper process invocation. Title and message travel in the
// environment so no quoting is needed.
type command struct {
	name string
	args []string
	env  []string
}

// runFunc executes a helper command.
type runFunc func(ctx context.Context, c command) error

func execRun(ctx context.Context, c command) error {
	cmd := exec.CommandContext(ctx, c.name, c.args...)
	cmd.Env = append(os.Environ(), c.env...)
	hideWindow(cmd)
	return cmd.Run()
}

// Desktop shows native desktop notifications through the platform's helper
// program (notify-send, osascript, or PowerShell).
type Desktop struct {
	run runFunc
	wg  sync.WaitGroup
}

// NewDesktop creates a desktop notifier.
func NewDesktop() *Desktop {
	return &Desktop{run: execRun}
}

// Notify starts the helper in the background.
func (d *Desktop) Notify(title, message string) {
	c := desktopCommand(title, message)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		if err := d.run(ctx, c); err != nil {
			slog.Debug("desktop notification failed", "helper", c.name, "error", err)
		}
	}()
}

// Wait blocks until every started notification has finished.
func (d *Desktop) Wait() { d.wg.Wait() }

// ///////////////////////////////////////////////
// Log
// ///////////////////////////////////////////////

// Log writes notifications to the default logger.
type Log struct{}

func (Log) Notify(title, message string) {
	slog.Info("notification", "title", title, "message", message)
}

// ///////////////////////////////////////////////
// Multi
// ///////////////////////////////////////////////

// Multi fans each notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(title, message string) {
	for _, n := range m {
		n.Notify(title, message)
	}
}

// ///////////////////////////////////////////////
// Switch
// ///////////////////////////////////////////////

// Switch forwards to a notifier only while enabled. It lets configuration
// reloads mute desktop popups without rebuilding the notifier chain.
type Switch struct {
	mu      sync.RWMutex
	enabled bool
	next    Notifier
}

// NewSwitch wraps next.
func NewSwitch(next Notifier, enabled bool) *Switch {
	return &Switch{next: next, enabled: enabled}
}

// SetEnabled turns forwarding on or off.
func (s *Switch) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}

func (s *Switch) Notify(title, message string) {
	s.mu.RLock()
	on := s.enabled
	s.mu.RUnlock()
	if on {
		s.next.Notify(title, message)
	}
}
