package config

// ///////////////////////////////////////////////
// Documentation Types
// ///////////////////////////////////////////////

// FieldDoc annotates one field in the generated config.default.toml.
type FieldDoc struct {
	// Comment is written above the field.
	Comment string
	// Alternatives are written as commented-out lines below the field.
	Alternatives []string
}

// templateHelp is shared by the four card layouts.
const templateHelp = "Card layout. Every field is a template.\n" +
	"Variables: {name}, {creator}, {playing}, {max}, {place_id}, {universe_id}, {thumbnail}\n" +
	"details = top line, state = second line. Images are Discord asset keys or URLs."

// ConfigDocs maps dotted TOML paths to their documentation.
var ConfigDocs = map[string]FieldDoc{
	"version": {
		Comment: "Config schema version. Do not edit.",
	},

	// Discord
	"discord.app_id": {
		Comment: "Discord application ID. Use your own app for custom image assets.",
	},

	// Display
	"display.player.details": {
		Comment: "Shown while playing a resolved game.\n" + templateHelp,
	},
	"display.player.state":       {},
	"display.player.large_image": {},
	"display.player.large_text":  {},
	"display.player.small_image": {},
	"display.player.small_text":  {},
	"display.studio.details": {
		Comment: "Shown while editing a resolved place in Roblox Studio.",
	},
	"display.studio.state":       {},
	"display.studio.large_image": {},
	"display.studio.large_text":  {},
	"display.studio.small_image": {},
	"display.studio.small_text":  {},
	"display.player_loading.details": {
		Comment: "Shown after the Roblox client starts, before a game is known.",
	},
	"display.player_loading.state":       {},
	"display.player_loading.large_image": {},
	"display.player_loading.large_text":  {},
	"display.player_loading.small_image": {},
	"display.player_loading.small_text":  {},
	"display.studio_loading.details": {
		Comment: "Shown after Roblox Studio starts, before a place is known.",
	},
	"display.studio_loading.state":       {},
	"display.studio_loading.large_image": {},
	"display.studio_loading.large_text":  {},
	"display.studio_loading.small_image": {},
	"display.studio_loading.small_text":  {},
	"display.buttons.show_game_button": {
		Comment: "Add a button linking to the game page.",
	},
	"display.buttons.game_button_label": {},
	"display.buttons.game_button_url": {
		Comment: "Button target. {place_id} is substituted.",
	},
	"display.timestamps.mode": {
		Comment: "Elapsed timer origin. Options: \"game\", \"session\", \"none\"\n" +
			"  game:    restarts whenever the card changes\n" +
			"  session: counts from when Roblox was detected\n" +
			"  none:    no timer",
		Alternatives: []string{
			`mode = "session"`,
			`mode = "none"`,
		},
	},
	"display.format.numbers": {
		Comment: "Formatting for {playing} and {max}. Options: \"commas\", \"short\", \"raw\"\n" +
			"  commas: 12,345\n  short:  12.3K\n  raw:    12345",
		Alternatives: []string{
			`numbers = "short"`,
		},
	},

	// Privacy
	"privacy.ignore": {
		Comment: "Place IDs to keep private (glob patterns). Matching places show the hidden text\n" +
			"instead and are never looked up.",
		Alternatives: []string{
			`ignore = ["606849621", "1234*"]`,
		},
	},
	"privacy.hidden_details": {
		Comment: "Card text for ignored places.",
	},
	"privacy.hidden_state": {},

	// Roblox
	"roblox.log_dir": {
		Comment: "Roblox log directory. Empty uses the platform default.",
		Alternatives: []string{
			`log_dir = "C:/Users/me/AppData/Local/Roblox/logs"`,
		},
	},
	"roblox.log_glob": {
		Comment: "Which files in log_dir are session logs.",
	},
	"roblox.player_process": {
		Comment: "Case-insensitive process name substrings. Studio wins when both run.",
	},
	"roblox.studio_process": {},

	// API
	"api.timeout_seconds": {
		Comment: "Roblox web API client: per-request timeout, retries, and rate limit (0 = unlimited).",
	},
	"api.retries":             {},
	"api.requests_per_second": {},

	// Behavior
	"behavior.auto_start": {
		Comment: "Launch rbxcord when you log in.",
	},
	"behavior.show_console": {
		Comment: "Mirror the log to the console.",
	},
	"behavior.notify_errors": {
		Comment: "Show a desktop notification when a game lookup fails.",
	},
	"behavior.check_updates": {
		Comment: "Check for a newer release at startup.",
	},
	"behavior.process_poll_ms": {
		Comment: "How often to scan for Roblox processes (milliseconds, min 100).",
	},
	"behavior.log_poll_seconds": {
		Comment: "How often to read new lines from the Roblox log.",
	},
	"behavior.reconnect_interval_seconds": {
		Comment: "Minimum gap between Discord reconnect attempts.",
	},

	// Log
	"log.level": {
		Comment: "Log level. Options: \"trace\", \"debug\", \"info\", \"warn\", \"error\"",
		Alternatives: []string{
			`level = "debug"`,
		},
	},
	"log.max_size_mb": {
		Comment: "Rotate daemon.log after this many megabytes.",
	},
}
