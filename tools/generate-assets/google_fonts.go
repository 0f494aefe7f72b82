// google_fonts.go downloads fonts through the Google Fonts CSS API and caches
// them as SFNT under the font cache directory.

package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// fontURLRe pulls the font file URL out of the CSS response.
var fontURLRe = regexp.MustCompile(`url\((https?://[^)]+)\)`)

// ParseGoogleFontSpec splits "google:Family:Weight".
func ParseGoogleFontSpec(spec string) (family, weight string, ok bool) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 || parts[0] != "google" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

type fontFetcher struct {
	client   *http.Client
	cacheDir string
	// cssBase defaults to the public CSS API.
	cssBase string
}

// Fetch returns the font for spec, from cache when present.
func (f *fontFetcher) Fetch(spec string) ([]byte, error) {
	family, weight, ok := ParseGoogleFontSpec(spec)
	if !ok {
		return nil, fmt.Errorf("invalid google font spec %q: expected google:FAMILY:WEIGHT", spec)
	}
	cacheFile := filepath.Join(f.cacheDir, fmt.Sprintf("%s-%s.ttf", strings.ReplaceAll(family, " ", "_"), weight))
	if data, err := os.ReadFile(cacheFile); err == nil {
		return data, nil
	}
	fmt.Printf("  font: %s wght@%s (Google Fonts)\n", family, weight)

	base := f.cssBase
	if base == "" {
		base = "https://fonts.googleapis.com/css2"
	}
	css, err := f.get(fmt.Sprintf("%s?family=%s:wght@%s", base, url.QueryEscape(family), weight), 1<<20)
	if err != nil {
		return nil, fmt.Errorf("fetch CSS: %w", err)
	}
	m := fontURLRe.FindSubmatch(css)
	if m == nil {
		return nil, fmt.Errorf("no font URL in CSS for %s wght@%s", family, weight)
	}
	fontURL := string(m[1])
	data, err := f.get(fontURL, 10<<20)
	if err != nil {
		return nil, fmt.Errorf("download font: %w", err)
	}
	if data, err = toSFNT(fontURL, data); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create font cache dir: %w", err)
	}
	if err := os.WriteFile(cacheFile, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "  warning: failed to cache font: %v\n", err)
	}
	return data, nil
}

func (f *fontFetcher) get(u string, limit int64) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	// A modern agent gets WOFF2, which toSFNT converts.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", u, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}
