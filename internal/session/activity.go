package session

import (
	"time"

	"tools.zach/dev/rbxcord/internal/config"
	"tools.zach/dev/rbxcord/internal/discord"
	"tools.zach/dev/rbxcord/internal/procwatch"
	"tools.zach/dev/rbxcord/internal/roblox"
)

// ///////////////////////////////////////////////
// Activity Building
// ///////////////////////////////////////////////

// BuildActivity renders the presence card for s. It returns nil when no
// variant is active. Before a place is resolved the variant's loading card is
// shown; a place matching a privacy ignore pattern shows the hidden card.
func BuildActivity(s State, cfg *config.Config) *discord.Activity {
	if s.Variant == procwatch.None {
		return nil
	}

	display := cfg.Display
	loading, resolved := display.PlayerLoading, display.Player
	if s.Variant == procwatch.Studio {
		loading, resolved = display.StudioLoading, display.Studio
	}

	var a *discord.Activity
	switch {
	case s.LastPlaceID != "" && cfg.IsIgnored(s.LastPlaceID):
		a = render(loading, config.TemplateVars{}, display.Format.Numbers)
		a.Details = cfg.Privacy.HiddenDetails
		a.State = cfg.Privacy.HiddenState
	case s.Details == nil:
		a = render(loading, config.TemplateVars{PlaceID: s.LastPlaceID}, display.Format.Numbers)
	default:
		vars := templateVars(s.Details)
		a = render(resolved, vars, display.Format.Numbers)
		a.Buttons = buttons(display.Buttons, vars, display.Format.Numbers)
	}

	a.Timestamps = timestamps(display.Timestamps.Mode, s)
	return a
}

// templateVars maps resolved game details onto template placeholders.
func templateVars(d *roblox.GameDetails) config.TemplateVars {
	return config.TemplateVars{
		Name:       d.Name,
		Creator:    d.Creator,
		Thumbnail:  d.ThumbnailURL,
		PlaceID:    d.PlaceID,
		UniverseID: d.UniverseID,
		Playing:    d.Playing,
		MaxPlayers: d.MaxPlayers,
	}
}

// render fills one card layout. The small image is only shown alongside
// small text, and an empty large image falls back to the Roblox logo.
func render(t config.PresenceTemplate, vars config.TemplateVars, numbers string) *discord.Activity {
	assets := &discord.Assets{
		LargeImage: config.Render(t.LargeImage, vars, numbers),
		LargeText:  config.Render(t.LargeText, vars, numbers),
		SmallText:  config.Render(t.SmallText, vars, numbers),
	}
	if assets.LargeImage == "" {
		assets.LargeImage = roblox.FallbackIcon
	}
	if assets.SmallText != "" {
		assets.SmallImage = config.Render(t.SmallImage, vars, numbers)
	}
	return &discord.Activity{
		Details: config.Render(t.Details, vars, numbers),
		State:   config.Render(t.State, vars, numbers),
		Assets:  assets,
	}
}

func buttons(b config.ButtonsConfig, vars config.TemplateVars, numbers string) []discord.Button {
	if !b.ShowGameButton {
		return nil
	}
	label := config.Render(b.GameButtonLabel, vars, numbers)
	url := config.Render(b.GameButtonURL, vars, numbers)
	if label == "" || url == "" {
		return nil
	}
	return []discord.Button{{Label: label, URL: url}}
}

// timestamps picks the elapsed-timer origin for mode.
func timestamps(mode string, s State) *discord.Timestamps {
	var start time.Time
	switch mode {
	case "none":
		return nil
	case "session":
		start = s.Started
	default: // "game"
		start = s.CardStart
	}
	if start.IsZero() {
		return nil
	}
	return &discord.Timestamps{Start: start.Unix()}
}
