// config.go loads data/assets.json, which lists the Discord image assets the
// default presence templates reference and how each badge is drawn.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Style is the look of one badge. Zero fields inherit from the defaults.
type Style struct {
	BgColor  string `json:"bg_color,omitempty"`
	FgColor  string `json:"fg_color,omitempty"`
	Size     int    `json:"size,omitempty"`
	FontSize int    `json:"font_size,omitempty"`
}

// Asset is one Discord asset key.
type Asset struct {
	// Label is drawn centered on the badge, usually one or two letters.
	Label string `json:"label"`
	Style
}

// AssetData is the decoded assets.json.
type AssetData struct {
	// Font is a local font path relative to the repo root.
	Font string `json:"font,omitempty"`
	// FontFallback is a "google:FAMILY:WEIGHT" spec used when Font is missing.
	FontFallback string           `json:"font_fallback,omitempty"`
	Defaults     Style            `json:"defaults"`
	Assets       map[string]Asset `json:"assets"`
}

// Keys returns the asset keys in sorted order.
func (d *AssetData) Keys() []string {
	keys := make([]string, 0, len(d.Assets))
	for k := range d.Assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolved returns key's style with the defaults applied.
func (d *AssetData) Resolved(key string) Style {
	s := d.Defaults
	a := d.Assets[key].Style
	if a.BgColor != "" {
		s.BgColor = a.BgColor
	}
	if a.FgColor != "" {
		s.FgColor = a.FgColor
	}
	if a.Size != 0 {
		s.Size = a.Size
	}
	if a.FontSize != 0 {
		s.FontSize = a.FontSize
	}
	return s
}

// LoadAssetData reads and checks an assets.json file.
func LoadAssetData(path string) (*AssetData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ad AssetData
	if err := json.Unmarshal(data, &ad); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(ad.Assets) == 0 {
		return nil, fmt.Errorf("%s: no assets defined", path)
	}
	for key, a := range ad.Assets {
		if a.Label == "" {
			return nil, fmt.Errorf("%s: asset %q has no label", path, key)
		}
	}
	return &ad, nil
}
