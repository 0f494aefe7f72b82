// color.go parses "#RRGGBB" and "#RRGGBBAA" colors.

package main

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
)

// ParseHexColor parses a hex color; the leading "#" is optional and alpha
// defaults to opaque.
func ParseHexColor(s string) (color.NRGBA, error) {
	digits := strings.TrimPrefix(s, "#")
	if len(digits) != 6 && len(digits) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: want 6 or 8 hex digits", s)
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	c := color.NRGBA{R: b[0], G: b[1], B: b[2], A: 0xFF}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}
