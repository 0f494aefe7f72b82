// Package logtail follows the Roblox client's session log and pulls the
// identifier of the place currently loaded out of newly appended lines.
//
// The package is split into three layers:
//
//   - [ExtractPlaceID]: a pure matcher over a single log line.
//   - [Reader]: an incremental reader bound to one open file that yields
//     complete lines appended since the previous call.
//   - [Monitor]: picks the most recently modified log in a directory, keeps
//     exactly one [Reader] bound to it, and rebinds when a newer file appears.
//
// None of the types are safe for concurrent use except [ExtractPlaceID]; the
// session orchestrator drives them from a single goroutine.
package logtail

import "regexp"

// ///////////////////////////////////////////////
// Place ID Extraction
// ///////////////////////////////////////////////

// placeIDRules is the ordered rule set. Each rule has exactly one capturing
// group holding a decimal place identifier. Key casing differs per rule and
// must stay as written.
var placeIDRules = []*regexp.Regexp{
	regexp.MustCompile(`Launching experience at (\d+)`),
	regexp.MustCompile(`! Joining game .* place (\d+)`),
	regexp.MustCompile(`Joining game .* place (\d+)`),
	regexp.MustCompile(`placeid:(\d+)`),
	regexp.MustCompile(`placeId:(\d+)`),
	regexp.MustCompile(`PlaceId=(\d+)`),
	regexp.MustCompile(`universeId:(\d+)`),
}

// ExtractPlaceID returns the place identifier mentioned in line. Rules are
// evaluated in priority order and the first match wins; the captured digits
// are returned unmodified. ok is false when no rule matches.
func ExtractPlaceID(line string) (id string, ok bool) {
	for _, re := range placeIDRules {
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}
