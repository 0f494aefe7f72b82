// Package procwatch polls the OS process table and reports when the Roblox
// player or Roblox Studio starts, stops, or switches between the two.
package procwatch

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// ///////////////////////////////////////////////
// Variant
// ///////////////////////////////////////////////

// Variant identifies which Roblox application is running.
type Variant int

const (
	// None means neither application is running.
	None Variant = iota
	// Player is the Roblox client.
	Player
	// Studio is Roblox Studio, the editor.
	Studio
)

func (v Variant) String() string {
	switch v {
	case Player:
		return "player"
	case Studio:
		return "studio"
	default:
		return "none"
	}
}

// Rules holds the lowercase process-name substrings that identify each
// variant.
type Rules struct {
	Player string
	Studio string
}

// DefaultRules matches the stock executable names on every platform.
var DefaultRules = Rules{Player: "robloxplayer", Studio: "robloxstudio"}

// Classify returns the variant indicated by a set of process names. Matching
// is a case-insensitive substring test; Studio wins when both are present.
// An empty rule never matches.
func Classify(names []string, rules Rules) Variant {
	studio := strings.ToLower(rules.Studio)
	player := strings.ToLower(rules.Player)

	found := None
	for _, name := range names {
		n := strings.ToLower(name)
		if studio != "" && strings.Contains(n, studio) {
			return Studio
		}
		if player != "" && strings.Contains(n, player) {
			found = Player
		}
	}
	return found
}

// ///////////////////////////////////////////////
// Events
// ///////////////////////////////////////////////

// EventKind distinguishes session start from session end.
type EventKind int

const (
	// Started reports that a variant began running. It is also emitted when
	// the running variant changes directly from one to the other.
	Started EventKind = iota + 1
	// Closed reports that no variant is running any more.
	Closed
)

func (k EventKind) String() string {
	switch k {
	case Started:
		return "started"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is a classification edge emitted by the [Watcher].
type Event struct {
	Kind EventKind
	// Variant is the newly running variant for Started and None for Closed.
	Variant Variant
}

// Transition returns the event for a classification change from prev to cur.
// ok is false when nothing changed.
func Transition(prev, cur Variant) (ev Event, ok bool) {
	if prev == cur {
		return Event{}, false
	}
	if cur == None {
		return Event{Kind: Closed, Variant: None}, true
	}
	return Event{Kind: Started, Variant: cur}, true
}

// ///////////////////////////////////////////////
// Watcher
// ///////////////////////////////////////////////

// Lister returns the names of all running processes.
type Lister interface {
	ProcessNames(ctx context.Context) ([]string, error)
}

// DefaultInterval is the process table polling interval.
const DefaultInterval = time.Second

// Watcher polls a [Lister] on a fixed interval and emits an [Event] each time
// the classification changes.
type Watcher struct {
	lister   Lister
	rules    Rules
	interval time.Duration
}

// NewWatcher creates a Watcher. A non-positive interval uses
// [DefaultInterval].
func NewWatcher(lister Lister, rules Rules, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{lister: lister, rules: rules, interval: interval}
}

// Run scans immediately and then once per interval until ctx is cancelled,
// sending edges to out. Sends block until the consumer receives them or ctx
// ends, so no edge is dropped while the consumer is busy. Run closes out on
// return. A failed scan is logged and treated as unchanged.
func (w *Watcher) Run(ctx context.Context, out chan<- Event) {
	defer close(out)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	prev := None
	for {
		names, err := w.lister.ProcessNames(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Debug("process scan failed", "error", err)
		} else {
			cur := Classify(names, w.rules)
			if ev, ok := Transition(prev, cur); ok {
				slog.Info("roblox process change", "from", prev, "to", cur)
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
				prev = cur
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
