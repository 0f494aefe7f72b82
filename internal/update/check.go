// Package update checks for newer rbxcord releases via the release manifest
// published in the project repository.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"tools.zach/dev/rbxcord/internal/notify"
	"tools.zach/dev/rbxcord/internal/paths"
)

// Set at build time via:
//
//	-X tools.zach/dev/rbxcord/internal/update.owner=...
//	-X tools.zach/dev/rbxcord/internal/update.repo=...
var (
	owner string
	repo  string
)

// maxManifestBytes caps the manifest response body.
const maxManifestBytes = 64 << 10

// ManifestURL returns the raw GitHub URL of the release manifest on the main
// branch, or "" when the build carries no repository coordinates.
func ManifestURL() string {
	if owner == "" || repo == "" {
		return ""
	}
	return "https://raw.githubusercontent.com/" + owner + "/" + repo + "/main/" + paths.ReleaseManifest
}

// ///////////////////////////////////////////////
// Checker
// ///////////////////////////////////////////////

// Checker compares the running version against the release manifest.
type Checker struct {
	url      string
	client   *retryablehttp.Client
	notifier notify.Notifier
}

// NewChecker creates a Checker for the manifest at url. A newer release is
// reported to n when n is non-nil.
func NewChecker(url string, n notify.Notifier) *Checker {
	client := retryablehttp.NewClient()
	client.RetryMax = 1
	client.HTTPClient.Timeout = 5 * time.Second
	client.Logger = nil
	return &Checker{url: url, client: client, notifier: n}
}

// Latest fetches the manifest and returns the version stored under the "."
// key, which is the latest stable release.
func (c *Checker) Latest(ctx context.Context) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: status %d", c.url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	return ParseManifest(body)
}

// ParseManifest returns the root (".") version of a release manifest, the
// JSON object release tooling keeps at the repository root. A manifest
// without a root entry yields "".
func ParseManifest(data []byte) (string, error) {
	var manifest map[string]string
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", fmt.Errorf("parsing manifest: %w", err)
	}
	return manifest["."], nil
}

// Check logs and notifies when a release newer than current exists. It
// reports whether one was found. Failures are logged at debug and never
// returned.
func (c *Checker) Check(ctx context.Context, current string) bool {
	if c.url == "" {
		slog.Debug("skipping version check: no remote URL configured")
		return false
	}
	latest, err := c.Latest(ctx)
	if err != nil {
		slog.Debug("version check failed", "error", err)
		return false
	}
	if latest == "" || !semverLess(current, latest) {
		return false
	}
	slog.Info("new version available", "current", current, "latest", latest)
	if c.notifier != nil {
		c.notifier.Notify("Update Available", fmt.Sprintf("rbxcord %s is available (running %s)", latest, current))
	}
	return true
}

// ///////////////////////////////////////////////
// Versions
// ///////////////////////////////////////////////

// semverLess reports whether a < b. Only major.minor.patch are compared
// numerically; a pre-release sorts before the same release ("0.1.0-dev" <
// "0.1.0"). Strings that are not semver never compare less.
func semverLess(a, b string) bool {
	pa, pb := parseSemver(a), parseSemver(b)
	if pa == nil || pb == nil {
		return false
	}
	for i := range 3 {
		if pa[i] != pb[i] {
			return pa[i] < pb[i]
		}
	}
	return hasPreRelease(a) && !hasPreRelease(b)
}

func hasPreRelease(s string) bool {
	return strings.Contains(strings.TrimPrefix(s, "v"), "-")
}

// parseSemver splits "v1.2.3" or "0.1.0-dev+abc" into [major, minor, patch].
// It returns nil for anything else.
func parseSemver(s string) []int {
	parts := strings.SplitN(strings.TrimPrefix(s, "v"), ".", 3)
	if len(parts) != 3 {
		return nil
	}
	out := make([]int, 3)
	for i, p := range parts {
		if idx := strings.IndexAny(p, "-+"); idx >= 0 {
			p = p[:idx]
		}
		if p == "" {
			return nil
		}
		n := 0
		for _, c := range p {
			if c < '0' || c > '9' {
				return nil
			}
			n = n*10 + int(c-'0')
		}
		out[i] = n
	}
	return out
}
