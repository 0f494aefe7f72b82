// Package main implements the rbxcord daemon, which watches for the Roblox
// client or Roblox Studio and mirrors the current experience to Discord Rich
// Presence.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"

	rootpkg "tools.zach/dev/rbxcord"
	"tools.zach/dev/rbxcord/internal/atomicfile"
	"tools.zach/dev/rbxcord/internal/config"
	"tools.zach/dev/rbxcord/internal/logger"
	"tools.zach/dev/rbxcord/internal/paths"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time via -X main.version=... When unset, the VCS
// revision embedded by the toolchain is used instead.
var version = "dev"

func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// defaultDataDir returns ~/.rbxcord, or ./.rbxcord without a home directory.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", paths.DataDirRel)
	}
	return filepath.Join(home, paths.DataDirRel)
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet(paths.BinaryName, flag.ContinueOnError)
	dataDir := fs.String("data-dir", defaultDataDir(), "Data directory for config, PID file, and logs")
	tail := fs.Int("logs", 0, "Print the last `N` lines of the daemon log and exit")
	showVersion := fs.Bool("version", false, "Print the version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	dp := paths.DataDir{Root: *dataDir}
	ver := resolveVersion()

	switch {
	case *showVersion:
		fmt.Println(ver)
		return 0
	case *tail > 0:
		out, err := logger.ReadTail(dp.Log(), *tail)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read log: %v\n", err)
			return 1
		}
		if out != "" {
			fmt.Println(out)
		}
		return 0
	}

	if err := os.MkdirAll(dp.Root, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: create data dir: %v\n", err)
		return 1
	}
	if alive, pid := runningInstance(dp); alive {
		fmt.Fprintf(os.Stderr, "rbxcord already running (pid %d)\n", pid)
		return 1
	}

	seedConfig(dp, paths.LegacySettings())

	cfg, err := config.Load(dp.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: load config: %v\n", err)
		return 1
	}

	var level slog.LevelVar
	level.Set(logger.ParseLevel(cfg.Log.Level))
	logOpts := logger.Options{Path: dp.Log(), Level: &level, MaxSizeMB: cfg.Log.MaxSizeMB}
	if cfg.Behavior.ShowConsole {
		logOpts.Console = os.Stderr
	}
	log, logCloser, err := logger.NewLogger(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: init logger: %v\n", err)
		return 1
	}
	defer logCloser.Close()
	slog.SetDefault(log)

	slog.Info("rbxcord starting", "version", ver, "data_dir", dp.Root)

	token := pidToken()
	pidFile, err := writePID(dp, token)
	if err != nil {
		slog.Error("failed to write PID file", "error", err)
		return 1
	}
	defer removePID(dp, token, pidFile)

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	d := newDaemon(dp, cfg, &level, ver)
	if err := d.run(ctx); err != nil {
		slog.Error("daemon stopped", "error", err)
		return 1
	}
	slog.Info("rbxcord stopped")
	return 0
}

// seedConfig makes sure config.toml exists: the legacy tray app's settings
// are imported when present, otherwise the annotated defaults are written.
func seedConfig(dp paths.DataDir, legacy string) {
	imported, err := config.ImportLegacy(legacy, dp.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: import legacy settings: %v\n", err)
	}
	if imported {
		return
	}
	if _, err := os.Stat(dp.Config()); errors.Is(err, os.ErrNotExist) {
		if err := atomicfile.Write(dp.Config(), rootpkg.DefaultConfigTOML, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "warning: write default config: %v\n", err)
		}
	}
}
