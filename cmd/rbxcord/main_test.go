package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	rootpkg "tools.zach/dev/rbxcord"
	"tools.zach/dev/rbxcord/internal/config"
	"tools.zach/dev/rbxcord/internal/notify"
	"tools.zach/dev/rbxcord/internal/paths"
	"tools.zach/dev/rbxcord/internal/roblox"
)

// ///////////////////////////////////////////////
// resolveVersion Tests
// ///////////////////////////////////////////////

func TestResolveVersionWithLdflags(t *testing.T) {
	original := version
	defer func() { version = original }()

	version = "1.2.3"
	if got := resolveVersion(); got != "1.2.3" {
		t.Errorf("resolveVersion() = %q, want %q", got, "1.2.3")
	}
}

func TestResolveVersionDev(t *testing.T) {
	original := version
	defer func() { version = original }()

	// Test binaries may or may not carry VCS info.
	version = "dev"
	got := resolveVersion()
	if !strings.HasPrefix(got, "dev") {
		t.Errorf("resolveVersion() = %q, expected to start with 'dev'", got)
	}
}

func TestDefaultDataDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	want := filepath.Join(home, paths.DataDirRel)
	if got := defaultDataDir(); got != want {
		t.Errorf("defaultDataDir() = %q, want %q", got, want)
	}
}

// ///////////////////////////////////////////////
// PID Tests
// ///////////////////////////////////////////////

func TestWritePID(t *testing.T) {
	dp := paths.DataDir{Root: t.TempDir()}
	f, err := writePID(dp, "tok")
	if err != nil {
		t.Fatalf("writePID: %v", err)
	}
	defer removePID(dp, "tok", f)

	data, err := os.ReadFile(dp.PID())
	if err != nil {
		t.Fatal(err)
	}
	want := strconv.Itoa(os.Getpid()) + ":tok"
	if string(data) != want {
		t.Errorf("PID file = %q, want %q", data, want)
	}
}

func TestRunningInstance(t *testing.T) {
	t.Run("no PID file", func(t *testing.T) {
		dp := paths.DataDir{Root: t.TempDir()}
		if alive, _ := runningInstance(dp); alive {
			t.Error("alive = true with no PID file")
		}
	})

	t.Run("locked by live instance", func(t *testing.T) {
		dp := paths.DataDir{Root: t.TempDir()}
		f, err := writePID(dp, "tok")
		if err != nil {
			t.Fatalf("writePID: %v", err)
		}
		defer removePID(dp, "tok", f)

		alive, pid := runningInstance(dp)
		if !alive {
			t.Fatal("alive = false while the lock is held")
		}
		if pid != os.Getpid() {
			t.Errorf("pid = %d, want %d", pid, os.Getpid())
		}
	})

	t.Run("stale file removed", func(t *testing.T) {
		dp := paths.DataDir{Root: t.TempDir()}
		if err := os.WriteFile(dp.PID(), []byte("99999:old"), 0o600); err != nil {
			t.Fatal(err)
		}
		if alive, _ := runningInstance(dp); alive {
			t.Error("alive = true for an unlocked PID file")
		}
		if _, err := os.Stat(dp.PID()); !os.IsNotExist(err) {
			t.Errorf("stale PID file still present: %v", err)
		}
	})
}

func TestRemovePID(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		wantGone bool
	}{
		{"matching token", "mine", true},
		{"foreign token", "theirs", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dp := paths.DataDir{Root: t.TempDir()}
			f, err := writePID(dp, "mine")
			if err != nil {
				t.Fatalf("writePID: %v", err)
			}
			removePID(dp, tt.token, f)

			_, err = os.Stat(dp.PID())
			if gone := os.IsNotExist(err); gone != tt.wantGone {
				t.Errorf("PID file removed = %v, want %v", gone, tt.wantGone)
			}
		})
	}
}

// ///////////////////////////////////////////////
// seedConfig Tests
// ///////////////////////////////////////////////

func TestSeedConfig(t *testing.T) {
	t.Run("writes defaults", func(t *testing.T) {
		dp := paths.DataDir{Root: t.TempDir()}
		seedConfig(dp, filepath.Join(t.TempDir(), "missing.toml"))

		data, err := os.ReadFile(dp.Config())
		if err != nil {
			t.Fatalf("config not written: %v", err)
		}
		if string(data) != string(rootpkg.DefaultConfigTOML) {
			t.Error("seeded config differs from the embedded defaults")
		}
		cfg, err := config.Load(dp.Root)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if diff := cmp.Diff(config.ExampleConfig(), cfg); diff != "" {
			t.Errorf("seeded config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("imports legacy settings", func(t *testing.T) {
		dp := paths.DataDir{Root: t.TempDir()}
		legacy := filepath.Join(t.TempDir(), "settings.toml")
		if err := os.WriteFile(legacy, []byte("auto_start = true\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		seedConfig(dp, legacy)

		cfg, err := config.Load(dp.Root)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if !cfg.Behavior.AutoStart {
			t.Error("legacy auto_start not imported")
		}
	})

	t.Run("keeps existing config", func(t *testing.T) {
		dp := paths.DataDir{Root: t.TempDir()}
		existing := []byte("version = 2\n[log]\nlevel = \"debug\"\n")
		if err := os.WriteFile(dp.Config(), existing, 0o644); err != nil {
			t.Fatal(err)
		}
		seedConfig(dp, "")

		data, err := os.ReadFile(dp.Config())
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != string(existing) {
			t.Errorf("config overwritten: %q", data)
		}
	})
}

// ///////////////////////////////////////////////
// Config Mapping Tests
// ///////////////////////////////////////////////

func TestRobloxOptions(t *testing.T) {
	tests := []struct {
		name    string
		retries int
		want    roblox.Options
	}{
		{"zero disables retries", 0, roblox.Options{Timeout: 10 * time.Second, Retries: -1, RequestsPerSecond: 2}},
		{"positive kept", 3, roblox.Options{Timeout: 10 * time.Second, Retries: 3, RequestsPerSecond: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.API.TimeoutSeconds = 10
			cfg.API.RequestsPerSecond = 2
			cfg.API.Retries = tt.retries
			if diff := cmp.Diff(tt.want, robloxOptions(cfg)); diff != "" {
				t.Errorf("robloxOptions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRestartRequired(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *config.Config)
		want   []string
	}{
		{"no change", func(*config.Config) {}, nil},
		{"hot settings only", func(c *config.Config) {
			c.Log.Level = "debug"
			c.Behavior.NotifyErrors = !c.Behavior.NotifyErrors
			c.Display.Player.Details = "x"
			c.Behavior.LogPollSeconds = 9
		}, nil},
		{"app id", func(c *config.Config) { c.Discord.AppID = "42" }, []string{"discord.app_id"}},
		{"roblox and api", func(c *config.Config) {
			c.Roblox.StudioProcess = "studio"
			c.API.Retries = 5
		}, []string{"roblox.studio_process", "api"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old, cur := config.DefaultConfig(), config.DefaultConfig()
			tt.modify(cur)
			if diff := cmp.Diff(tt.want, restartRequired(old, cur)); diff != "" {
				t.Errorf("restartRequired mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Reload Tests
// ///////////////////////////////////////////////

type countingNotifier struct{ n int }

func (c *countingNotifier) Notify(string, string) { c.n++ }

func TestApplyReload(t *testing.T) {
	old := config.DefaultConfig()
	old.Behavior.NotifyErrors = true

	var level slog.LevelVar
	sink := &countingNotifier{}
	d := &daemon{
		paths:  paths.DataDir{Root: t.TempDir()},
		cfg:    old,
		level:  &level,
		popups: notify.NewSwitch(sink, true),
	}

	cur := config.DefaultConfig()
	cur.Behavior.NotifyErrors = false
	cur.Log.Level = "error"
	d.apply(cur)

	if level.Level() != slog.LevelError {
		t.Errorf("level = %v, want %v", level.Level(), slog.LevelError)
	}
	if d.cfg != cur {
		t.Error("daemon config not replaced")
	}
	d.popups.Notify("title", "body")
	if sink.n != 0 {
		t.Errorf("notifications delivered = %d after disabling, want 0", sink.n)
	}
}

// ///////////////////////////////////////////////
// run Tests
// ///////////////////////////////////////////////

func TestRunFlags(t *testing.T) {
	dir := t.TempDir()
	dp := paths.DataDir{Root: dir}
	if err := os.WriteFile(dp.Log(), []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"version", []string{"-version"}, 0},
		{"log tail", []string{"-data-dir", dir, "-logs", "2"}, 0},
		{"log tail missing file", []string{"-data-dir", t.TempDir(), "-logs", "2"}, 1},
		{"unknown flag", []string{"-bogus"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}
