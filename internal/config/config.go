// Package config loads, validates, and saves the rbxcord configuration.
//
// Configuration lives in config.toml inside the data directory. Missing keys
// fall back to [DefaultConfig], older schema versions are upgraded through
// the migrate registry, and the file can be hot-reloaded with [Watcher].
package config

//go:generate go run ../../cmd/genconfig

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"tools.zach/dev/rbxcord/internal/atomicfile"
	"tools.zach/dev/rbxcord/internal/migrate"
	"tools.zach/dev/rbxcord/internal/paths"
)

// DefaultDiscordAppID is the Discord application that owns the default
// image assets (roblox_logo, roblox_studio).
const DefaultDiscordAppID = "1442858852730277890"

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config is the top-level configuration.
type Config struct {
	// Version is the schema version used for migrations.
	Version  int            `toml:"version"`
	Discord  DiscordConfig  `toml:"discord"`
	Display  DisplayConfig  `toml:"display"`
	Privacy  PrivacyConfig  `toml:"privacy"`
	Roblox   RobloxConfig   `toml:"roblox"`
	API      APIConfig      `toml:"api"`
	Behavior BehaviorConfig `toml:"behavior"`
	Log      LogConfig      `toml:"log"`
}

// DiscordConfig holds Discord connection settings.
type DiscordConfig struct {
	AppID string `toml:"app_id"`
}

// DisplayConfig controls what the presence card shows.
type DisplayConfig struct {
	// Player is shown once a game has been resolved in the Roblox client.
	Player PresenceTemplate `toml:"player"`
	// Studio is shown once a place has been resolved in Roblox Studio.
	Studio PresenceTemplate `toml:"studio"`
	// PlayerLoading is shown between client start and the first place.
	PlayerLoading PresenceTemplate `toml:"player_loading"`
	// StudioLoading is shown between Studio start and the first place.
	StudioLoading PresenceTemplate `toml:"studio_loading"`

	Buttons    ButtonsConfig    `toml:"buttons"`
	Timestamps TimestampsConfig `toml:"timestamps"`
	Format     FormatConfig     `toml:"format"`
}

// PresenceTemplate is one card layout. Every field is a template; see
// [TemplateVars] for the placeholders.
type PresenceTemplate struct {
	Details    string `toml:"details"`
	State      string `toml:"state"`
	LargeImage string `toml:"large_image"`
	LargeText  string `toml:"large_text"`
	SmallImage string `toml:"small_image"`
	SmallText  string `toml:"small_text"`
}

// ButtonsConfig controls the card's link button.
type ButtonsConfig struct {
	ShowGameButton  bool   `toml:"show_game_button"`
	GameButtonLabel string `toml:"game_button_label"`
	// GameButtonURL is a template; {place_id} is the usual placeholder.
	GameButtonURL string `toml:"game_button_url"`
}

// TimestampsConfig selects the elapsed-time origin.
type TimestampsConfig struct {
	// Mode is "game" (restart on every update), "session" (since the Roblox
	// process was detected), or "none".
	Mode string `toml:"mode"`
}

// FormatConfig controls number formatting in templates.
type FormatConfig struct {
	// Numbers is "commas" (12,345), "short" (12.3K), or "raw" (12345).
	Numbers string `toml:"numbers"`
}

// PrivacyConfig hides selected places.
type PrivacyConfig struct {
	// Ignore holds doublestar globs matched against the place ID.
	Ignore []string `toml:"ignore"`
	// HiddenDetails and HiddenState replace the card text for ignored places.
	HiddenDetails string `toml:"hidden_details"`
	HiddenState   string `toml:"hidden_state"`
}

// RobloxConfig locates the Roblox installation.
type RobloxConfig struct {
	// LogDir overrides the platform default log directory when set.
	LogDir string `toml:"log_dir"`
	// LogGlob selects log files by base name.
	LogGlob string `toml:"log_glob"`
	// PlayerProcess and StudioProcess are case-insensitive process name
	// substrings.
	PlayerProcess string `toml:"player_process"`
	StudioProcess string `toml:"studio_process"`
}

// APIConfig tunes the Roblox web API client.
type APIConfig struct {
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	Retries           int     `toml:"retries"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// BehaviorConfig holds daemon behavior settings.
type BehaviorConfig struct {
	AutoStart                bool `toml:"auto_start"`
	ShowConsole              bool `toml:"show_console"`
	NotifyErrors             bool `toml:"notify_errors"`
	CheckUpdates             bool `toml:"check_updates"`
	ProcessPollMs            int  `toml:"process_poll_ms"`
	LogPollSeconds           int  `toml:"log_poll_seconds"`
	ReconnectIntervalSeconds int  `toml:"reconnect_interval_seconds"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum level: trace, debug, info, warn, or error.
	Level     string `toml:"level"`
	MaxSizeMB int    `toml:"max_size_mb"`
}

// ///////////////////////////////////////////////
// Defaults
// ///////////////////////////////////////////////

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: migrate.Config.CurrentVersion,
		Discord: DiscordConfig{AppID: DefaultDiscordAppID},
		Display: DisplayConfig{
			Player: PresenceTemplate{
				Details:    "{name}",
				State:      "by {creator}",
				LargeImage: "{thumbnail}",
				LargeText:  "{name}",
				SmallImage: "roblox_logo",
				SmallText:  "Playing: {playing} | Capacity: {max}",
			},
			Studio: PresenceTemplate{
				Details:    "{name}",
				State:      "Editing",
				LargeImage: "{thumbnail}",
				LargeText:  "{name}",
				SmallImage: "roblox_logo",
				SmallText:  "Developing",
			},
			PlayerLoading: PresenceTemplate{
				Details:    "Roblox",
				State:      "Loading",
				LargeImage: "roblox_logo",
				LargeText:  "Roblox",
			},
			StudioLoading: PresenceTemplate{
				Details:    "Roblox Studio",
				State:      "Developing",
				LargeImage: "roblox_studio",
				LargeText:  "Roblox Studio",
			},
			Buttons: ButtonsConfig{
				ShowGameButton:  false,
				GameButtonLabel: "View Game",
				GameButtonURL:   "https://www.roblox.com/games/{place_id}",
			},
			Timestamps: TimestampsConfig{Mode: "game"},
			Format:     FormatConfig{Numbers: "commas"},
		},
		Privacy: PrivacyConfig{
			Ignore:        []string{},
			HiddenDetails: "Playing Roblox",
			HiddenState:   "In a private experience",
		},
		Roblox: RobloxConfig{
			LogGlob:       paths.RobloxLogGlob,
			PlayerProcess: "robloxplayer",
			StudioProcess: "robloxstudio",
		},
		API: APIConfig{
			TimeoutSeconds:    10,
			Retries:           2,
			RequestsPerSecond: 5,
		},
		Behavior: BehaviorConfig{
			AutoStart:                false,
			ShowConsole:              false,
			NotifyErrors:             true,
			CheckUpdates:             true,
			ProcessPollMs:            1000,
			LogPollSeconds:           2,
			ReconnectIntervalSeconds: 15,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// ExampleConfig returns the Config rendered into config.default.toml. The
// defaults double as the example.
func ExampleConfig() *Config {
	return DefaultConfig()
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// PeekVersion reads only the version field from raw TOML. A missing or zero
// version, or unparseable input, reads as 1.
func PeekVersion(data []byte) int {
	var v struct {
		Version int `toml:"version"`
	}
	if err := toml.Unmarshal(data, &v); err != nil || v.Version == 0 {
		return 1
	}
	return v.Version
}

// Load reads dataDir/config.toml. A missing file yields [DefaultConfig]. An
// older schema is migrated, a backup of the original is written next to it,
// and the upgraded file is saved back.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, paths.ConfigFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	version := PeekVersion(data)
	migrated := migrate.Config.NeedsMigration(version)
	if migrated {
		if err := os.WriteFile(path+".bak", data, 0o644); err != nil {
			slog.Warn("failed to write config backup", "error", err)
		}
		data, _, err = migrate.Config.Run(data, version)
		if err != nil {
			return nil, fmt.Errorf("migrate config: %w", err)
		}
	} else if migrate.Config.Newer(version) {
		slog.Warn("config written by a newer rbxcord; unknown keys are ignored", "version", version)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Version = migrate.Config.CurrentVersion

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if migrated {
		if err := cfg.Save(path); err != nil {
			slog.Warn("failed to save migrated config", "error", err)
		}
	}
	return cfg, nil
}

// Save writes the config to path atomically.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicfile.Write(path, buf.Bytes(), 0o644)
}

// ImportLegacy copies the original tray application's settings file into
// dataDir as config.toml when no config exists yet. The next [Load]
// migrates it. It reports whether a file was imported.
func ImportLegacy(legacyPath, dataDir string) (bool, error) {
	if legacyPath == "" {
		return false, nil
	}
	dst := filepath.Join(dataDir, paths.ConfigFile)
	if _, err := os.Stat(dst); err == nil {
		return false, nil
	}
	data, err := os.ReadFile(legacyPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read legacy settings: %w", err)
	}
	if err := atomicfile.Write(dst, data, 0o644); err != nil {
		return false, fmt.Errorf("write imported config: %w", err)
	}
	return true, nil
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

// Validate checks enums and ranges.
func (c *Config) Validate() error {
	if c.Discord.AppID == "" {
		return errors.New("discord.app_id must not be empty")
	}

	switch c.Display.Timestamps.Mode {
	case "game", "session", "none":
	default:
		return fmt.Errorf("invalid timestamps.mode %q: must be game, session, or none", c.Display.Timestamps.Mode)
	}

	switch c.Display.Format.Numbers {
	case "commas", "short", "raw":
	default:
		return fmt.Errorf("invalid format.numbers %q: must be commas, short, or raw", c.Display.Format.Numbers)
	}

	if c.Display.Buttons.ShowGameButton {
		if c.Display.Buttons.GameButtonLabel == "" || c.Display.Buttons.GameButtonURL == "" {
			return errors.New("buttons.game_button_label and game_button_url are required when show_game_button is true")
		}
	}

	for _, p := range c.Privacy.Ignore {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid privacy.ignore pattern %q", p)
		}
	}

	if c.Roblox.LogGlob == "" || !doublestar.ValidatePattern(c.Roblox.LogGlob) {
		return fmt.Errorf("invalid roblox.log_glob %q", c.Roblox.LogGlob)
	}
	if c.Roblox.PlayerProcess == "" && c.Roblox.StudioProcess == "" {
		return errors.New("roblox.player_process and roblox.studio_process cannot both be empty")
	}

	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be > 0, got %d", c.API.TimeoutSeconds)
	}
	if c.API.Retries < 0 {
		return fmt.Errorf("api.retries must be >= 0, got %d", c.API.Retries)
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api.requests_per_second must be >= 0, got %g", c.API.RequestsPerSecond)
	}

	if c.Behavior.ProcessPollMs < 100 {
		return fmt.Errorf("process_poll_ms must be >= 100, got %d", c.Behavior.ProcessPollMs)
	}
	if c.Behavior.LogPollSeconds <= 0 {
		return fmt.Errorf("log_poll_seconds must be > 0, got %d", c.Behavior.LogPollSeconds)
	}
	if c.Behavior.ReconnectIntervalSeconds <= 0 {
		return fmt.Errorf("reconnect_interval_seconds must be > 0, got %d", c.Behavior.ReconnectIntervalSeconds)
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}
	return nil
}

// ///////////////////////////////////////////////
// Derived Settings
// ///////////////////////////////////////////////

// ProcessPoll returns the process watcher interval.
func (c *Config) ProcessPoll() time.Duration {
	return time.Duration(c.Behavior.ProcessPollMs) * time.Millisecond
}

// LogPoll returns the log poll interval.
func (c *Config) LogPoll() time.Duration {
	return time.Duration(c.Behavior.LogPollSeconds) * time.Second
}

// ReconnectInterval returns the minimum gap between Discord connect attempts.
func (c *Config) ReconnectInterval() time.Duration {
	return time.Duration(c.Behavior.ReconnectIntervalSeconds) * time.Second
}

// APITimeout returns the per-request HTTP timeout.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// LogDir returns the configured Roblox log directory, or the platform
// default under home.
func (c *Config) LogDir(home string) string {
	if c.Roblox.LogDir != "" {
		return c.Roblox.LogDir
	}
	return paths.RobloxLogs(home)
}

// IsIgnored reports whether placeID matches any privacy ignore pattern.
func (c *Config) IsIgnored(placeID string) bool {
	for _, pattern := range c.Privacy.Ignore {
		matched, err := doublestar.Match(pattern, placeID)
		if err != nil {
			slog.Warn("invalid glob pattern", "pattern", pattern, "error", err)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
