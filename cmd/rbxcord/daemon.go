package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"tools.zach/dev/rbxcord/internal/autostart"
	"tools.zach/dev/rbxcord/internal/config"
	"tools.zach/dev/rbxcord/internal/discord"
	"tools.zach/dev/rbxcord/internal/logger"
	"tools.zach/dev/rbxcord/internal/logtail"
	"tools.zach/dev/rbxcord/internal/notify"
	"tools.zach/dev/rbxcord/internal/paths"
	"tools.zach/dev/rbxcord/internal/procwatch"
	"tools.zach/dev/rbxcord/internal/roblox"
	"tools.zach/dev/rbxcord/internal/session"
	"tools.zach/dev/rbxcord/internal/update"
)

// appName is shown in login item entries.
const appName = "Roblox Discord Presence"

// ///////////////////////////////////////////////
// Daemon
// ///////////////////////////////////////////////

// daemon wires the process watcher, the session orchestrator, the Discord
// presence, and config hot reload together.
type daemon struct {
	paths   paths.DataDir
	cfg     *config.Config
	level   interface{ Set(slog.Level) }
	version string

	desktop *notify.Desktop
	// popups gates desktop notifications on behavior.notify_errors.
	popups *notify.Switch
}

func newDaemon(dp paths.DataDir, cfg *config.Config, level interface{ Set(slog.Level) }, version string) *daemon {
	desktop := notify.NewDesktop()
	return &daemon{
		paths:   dp,
		cfg:     cfg,
		level:   level,
		version: version,
		desktop: desktop,
		popups:  notify.NewSwitch(desktop, cfg.Behavior.NotifyErrors),
	}
}

// run blocks until ctx ends or a component fails. Presence is cleared on the
// way out.
func (d *daemon) run(ctx context.Context) error {
	defer d.desktop.Wait()

	cfg := d.cfg
	d.syncAutostart(cfg)

	home, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("home directory unknown", "error", err)
	}
	logDir := cfg.LogDir(home)
	if logDir == "" {
		return errors.New("cannot locate the Roblox log directory; set roblox.log_dir")
	}
	slog.Info("watching roblox logs", "dir", logDir, "glob", cfg.Roblox.LogGlob)

	client := discord.NewClient(cfg.Discord.AppID)
	presence := discord.NewPresence(client, cfg.ReconnectInterval())
	defer presence.Close()

	watcher := procwatch.NewWatcher(procwatch.SystemLister{}, processRules(cfg), cfg.ProcessPoll())
	orch := session.New(session.Options{
		Config:    cfg,
		Logs:      logtail.NewMonitor(logDir, cfg.Roblox.LogGlob),
		Resolver:  roblox.NewClient(robloxOptions(cfg)),
		Publisher: presence,
		Notifier:  notify.Multi{notify.Log{}, d.popups},
	})

	events := make(chan procwatch.Event)
	reloads := make(chan *config.Config)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		watcher.Run(gctx, events)
		return nil
	})
	g.Go(func() error {
		return orch.Run(gctx, events, reloads)
	})
	g.Go(func() error {
		presence.Run(gctx, cfg.ReconnectInterval())
		return nil
	})
	g.Go(func() error {
		return d.watchConfig(gctx, reloads)
	})
	if cfg.Behavior.CheckUpdates {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("update check panic", "error", r)
				}
			}()
			update.NewChecker(update.ManifestURL(), d.desktop).Check(gctx, d.version)
			return nil
		})
	}

	err = g.Wait()
	if ctx.Err() != nil {
		slog.Info("received shutdown signal")
		return nil
	}
	return err
}

// watchConfig reloads config.toml whenever it changes and forwards each
// valid config to the orchestrator. An invalid file is logged and the
// previous config stays in effect.
func (d *daemon) watchConfig(ctx context.Context, reloads chan<- *config.Config) error {
	w, err := config.NewWatcher(d.paths.Config())
	if err != nil {
		slog.Warn("config hot reload disabled", "error", err)
		return nil
	}
	defer w.Close()
	if w.Polling() {
		slog.Info("using polling mode for config changes")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Events():
			cfg, err := config.Load(d.paths.Root)
			if err != nil {
				slog.Warn("config reload failed, keeping previous settings", "error", err)
				continue
			}
			d.apply(cfg)
			select {
			case reloads <- cfg:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// apply updates the daemon-level settings that can change while running.
func (d *daemon) apply(cfg *config.Config) {
	if changed := restartRequired(d.cfg, cfg); len(changed) > 0 {
		slog.Warn("some settings take effect after a restart", "keys", strings.Join(changed, ","))
	}
	if cfg.Behavior.AutoStart != d.cfg.Behavior.AutoStart {
		d.syncAutostart(cfg)
	}
	d.level.Set(logger.ParseLevel(cfg.Log.Level))
	d.popups.SetEnabled(cfg.Behavior.NotifyErrors)
	d.cfg = cfg
	slog.Info("config reloaded")
}

func (d *daemon) syncAutostart(cfg *config.Config) {
	exe, err := os.Executable()
	if err != nil {
		slog.Warn("cannot resolve executable for autostart", "error", err)
		return
	}
	entry := autostart.Entry{ID: paths.BinaryName, Name: appName, Path: exe}
	if d.paths.Root != defaultDataDir() {
		entry.Args = []string{"-data-dir", d.paths.Root}
	}
	if err := autostart.Sync(entry, cfg.Behavior.AutoStart); err != nil {
		slog.Warn("autostart sync failed", "enabled", cfg.Behavior.AutoStart, "error", err)
	}
}

// ///////////////////////////////////////////////
// Config Mapping
// ///////////////////////////////////////////////

func processRules(cfg *config.Config) procwatch.Rules {
	return procwatch.Rules{Player: cfg.Roblox.PlayerProcess, Studio: cfg.Roblox.StudioProcess}
}

// robloxOptions maps the api section onto the lookup client. retries = 0
// in the config means no retries.
func robloxOptions(cfg *config.Config) roblox.Options {
	retries := cfg.API.Retries
	if retries == 0 {
		retries = -1
	}
	return roblox.Options{
		Timeout:           cfg.APITimeout(),
		Retries:           retries,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	}
}

// restartRequired lists the changed keys that are only read at startup.
func restartRequired(old, cur *config.Config) []string {
	var changed []string
	check := func(key string, a, b any) {
		if a != b {
			changed = append(changed, key)
		}
	}
	check("discord.app_id", old.Discord.AppID, cur.Discord.AppID)
	check("roblox.log_dir", old.Roblox.LogDir, cur.Roblox.LogDir)
	check("roblox.log_glob", old.Roblox.LogGlob, cur.Roblox.LogGlob)
	check("roblox.player_process", old.Roblox.PlayerProcess, cur.Roblox.PlayerProcess)
	check("roblox.studio_process", old.Roblox.StudioProcess, cur.Roblox.StudioProcess)
	check("api", old.API, cur.API)
	check("behavior.process_poll_ms", old.Behavior.ProcessPollMs, cur.Behavior.ProcessPollMs)
	check("behavior.reconnect_interval_seconds", old.Behavior.ReconnectIntervalSeconds, cur.Behavior.ReconnectIntervalSeconds)
	check("behavior.show_console", old.Behavior.ShowConsole, cur.Behavior.ShowConsole)
	check("log.max_size_mb", old.Log.MaxSizeMB, cur.Log.MaxSizeMB)
	return changed
}
