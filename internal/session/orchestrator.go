// Package session runs the presence state machine.
//
// The [Orchestrator] consumes process watcher events and periodic log polls,
// keeps the single [State] for the running Roblox session, resolves place
// identifiers through a [Resolver], and publishes the resulting card through
// a [Publisher]. It is the only writer of session state and is driven from a
// single goroutine by [Orchestrator.Run].
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tools.zach/dev/rbxcord/internal/config"
	"tools.zach/dev/rbxcord/internal/discord"
	"tools.zach/dev/rbxcord/internal/logger"
	"tools.zach/dev/rbxcord/internal/notify"
	"tools.zach/dev/rbxcord/internal/procwatch"
	"tools.zach/dev/rbxcord/internal/roblox"
)

// ErrWatcherStopped is returned by [Orchestrator.Run] when the process
// watcher's event channel closes.
var ErrWatcherStopped = errors.New("session: process watcher stopped")

// Notification text for a failed game lookup.
const lookupErrorTitle = "Game Details Error"

// ///////////////////////////////////////////////
// Collaborators
// ///////////////////////////////////////////////

// Publisher delivers presence cards. Implemented by [discord.Presence].
type Publisher interface {
	Publish(activity *discord.Activity) error
	Clear() error
}

// Resolver turns a place identifier into game details. Implemented by
// [roblox.Client].
type Resolver interface {
	Resolve(ctx context.Context, placeID string) (*roblox.GameDetails, error)
}

// LogSource yields place identifiers from the Roblox log. Implemented by
// [logtail.Monitor].
type LogSource interface {
	CheckLatest() (string, bool)
	Clear()
}

// ///////////////////////////////////////////////
// State
// ///////////////////////////////////////////////

// State is the session as the orchestrator sees it.
type State struct {
	// Variant is the running application, or [procwatch.None].
	Variant procwatch.Variant
	// LastPlaceID is the most recent identifier taken from the log. It is
	// empty whenever Variant is None and at the start of every session.
	LastPlaceID string
	// Started is when the current variant was detected.
	Started time.Time
	// CardStart is when the current card was first published.
	CardStart time.Time
	// Details holds the last resolved game. It is nil while loading and for
	// an ignored place, and is left untouched by a failed lookup so the card
	// on screen and the state agree.
	Details *roblox.GameDetails
}

// Active reports whether a Roblox application is running.
func (s State) Active() bool { return s.Variant != procwatch.None }

// ///////////////////////////////////////////////
// Orchestrator
// ///////////////////////////////////////////////

// Options wires an [Orchestrator] to its collaborators.
type Options struct {
	Config    *config.Config
	Logs      LogSource
	Resolver  Resolver
	Publisher Publisher
	// Notifier receives lookup failures. Nil disables notifications.
	Notifier notify.Notifier
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Orchestrator owns the session state machine.
type Orchestrator struct {
	cfg       *config.Config
	logs      LogSource
	resolver  Resolver
	publisher Publisher
	notifier  notify.Notifier
	now       func() time.Time

	state State
}

// New creates an idle Orchestrator.
func New(opts Options) *Orchestrator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		cfg:       opts.Config,
		logs:      opts.Logs,
		resolver:  opts.Resolver,
		publisher: opts.Publisher,
		notifier:  opts.Notifier,
		now:       now,
	}
}

// State returns a copy of the current session state. It must only be called
// from the goroutine driving the orchestrator.
func (o *Orchestrator) State() State { return o.state }

// Run drives the orchestrator until ctx is done or events closes. Log polls
// run every log_poll_seconds while a session is active; a slow poll skips
// ticks rather than queueing them. Each config received on reloads replaces
// the display settings and re-publishes the current card. Run returns nil on
// cancellation and [ErrWatcherStopped] when events closes.
func (o *Orchestrator) Run(ctx context.Context, events <-chan procwatch.Event, reloads <-chan *config.Config) error {
	interval := o.cfg.LogPoll()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return ErrWatcherStopped
			}
			o.HandleEvent(ev)
		case <-ticker.C:
			o.Poll(ctx)
		case cfg := <-reloads:
			if cfg == nil {
				continue
			}
			o.Reload(cfg)
			if next := cfg.LogPoll(); next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

// HandleEvent applies a process watcher transition. Started always begins a
// fresh session and shows the loading card; Closed ends the session, drops
// the log binding, and clears the presence.
func (o *Orchestrator) HandleEvent(ev procwatch.Event) {
	switch ev.Kind {
	case procwatch.Started:
		now := o.now()
		o.state = State{Variant: ev.Variant, Started: now, CardStart: now}
		slog.Info("roblox started", "variant", ev.Variant)
		o.publish()
	case procwatch.Closed:
		slog.Info("roblox closed", "variant", o.state.Variant)
		o.state = State{}
		o.logs.Clear()
		if err := o.publisher.Clear(); err != nil {
			slog.Warn("failed to clear presence", "error", err)
		}
	}
}

// Poll checks the log for a new place while a session is active. A new
// identifier is recorded before it is resolved, so a failed lookup is not
// retried until a different place appears.
func (o *Orchestrator) Poll(ctx context.Context) {
	if !o.state.Active() {
		return
	}
	id, ok := o.logs.CheckLatest()
	if !ok || id == o.state.LastPlaceID {
		slog.Log(ctx, logger.LevelTrace, "no new place", "variant", o.state.Variant)
		return
	}

	o.state.LastPlaceID = id

	if o.cfg.IsIgnored(id) {
		o.state.Details = nil
		slog.Info("place hidden by privacy settings", "place_id", id)
		o.state.CardStart = o.now()
		o.publish()
		return
	}

	slog.Info("place detected", "place_id", id, "variant", o.state.Variant)
	details, err := o.resolver.Resolve(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Warn("game lookup failed", "place_id", id, "error", err)
		if o.notifier != nil {
			o.notifier.Notify(lookupErrorTitle, "Failed to fetch details: "+err.Error())
		}
		return
	}

	o.state.Details = details
	o.state.CardStart = o.now()
	slog.Info("game resolved", "place_id", id, "name", details.Name, "creator", details.Creator)
	o.publish()
}

// Reload swaps in a new configuration and re-publishes the current card.
func (o *Orchestrator) Reload(cfg *config.Config) {
	o.cfg = cfg
	if o.state.Active() {
		o.publish()
	}
}

func (o *Orchestrator) publish() {
	activity := BuildActivity(o.state, o.cfg)
	if activity == nil {
		return
	}
	if err := o.publisher.Publish(activity); err != nil {
		slog.Warn("failed to publish presence", "error", err)
	}
}
