package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ///////////////////////////////////////////////
// Templates
// ///////////////////////////////////////////////

// TemplateVars are the values substituted into [PresenceTemplate] fields.
type TemplateVars struct {
	Name       string // {name}
	Creator    string // {creator}
	Thumbnail  string // {thumbnail}
	PlaceID    string // {place_id}
	UniverseID uint64 // {universe_id}
	Playing    uint64 // {playing}
	MaxPlayers uint64 // {max}
}

// discordMaxLen is Discord's limit for text fields.
const discordMaxLen = 128

// Render substitutes vars into tmpl. Counts use numberFormat. The result is
// trimmed and truncated to Discord's field limit.
func Render(tmpl string, vars TemplateVars, numberFormat string) string {
	if !strings.Contains(tmpl, "{") {
		return truncate(tmpl)
	}
	r := strings.NewReplacer(
		"{name}", vars.Name,
		"{creator}", vars.Creator,
		"{thumbnail}", vars.Thumbnail,
		"{place_id}", vars.PlaceID,
		"{universe_id}", strconv.FormatUint(vars.UniverseID, 10),
		"{playing}", FormatNumber(vars.Playing, numberFormat),
		"{max}", FormatNumber(vars.MaxPlayers, numberFormat),
	)
	return truncate(strings.TrimSpace(r.Replace(tmpl)))
}

// truncate cuts s to discordMaxLen runes.
func truncate(s string) string {
	if len(s) <= discordMaxLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= discordMaxLen {
		return s
	}
	return string(runes[:discordMaxLen-1]) + "…"
}

// ///////////////////////////////////////////////
// Numbers
// ///////////////////////////////////////////////

// FormatNumber formats n in the named style: commas, short, or raw.
func FormatNumber(n uint64, style string) string {
	switch style {
	case "raw":
		return strconv.FormatUint(n, 10)
	case "short":
		return FormatShort(n)
	default: // "commas"
		return FormatWithCommas(n)
	}
}

// FormatWithCommas groups digits in threes: 1,500,000.
func FormatWithCommas(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// FormatShort abbreviates large counts: 1.5M, 12.3K, 999.
func FormatShort(n uint64) string {
	switch {
	case n >= 1_000_000_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1e9)) + "B"
	case n >= 1_000_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1e6)) + "M"
	case n >= 1_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1e3)) + "K"
	default:
		return strconv.FormatUint(n, 10)
	}
}

// trimZero drops a trailing ".0".
func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
