// Package main prints the rbxcord build version for -X main.version.
//
// The base comes from the release manifest; git decides the suffix:
//
//	on tag v1.2.0:        1.2.0
//	2 commits past it:    1.2.0-dev.2+g1a2b3c4
//	no tags:              1.2.0-dev+1a2b3c4
//
// Any dirty tree appends ".dirty" to the build metadata.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"tools.zach/dev/rbxcord/internal/paths"
	"tools.zach/dev/rbxcord/internal/update"
)

// gitFunc runs git with args and returns trimmed stdout.
type gitFunc func(args ...string) (string, error)

func execGit(args ...string) (string, error) {
	out, err := exec.Command("git", args...).Output()
	return strings.TrimSpace(string(out)), err
}

func main() {
	manifest := flag.String("manifest", paths.ReleaseManifest, "release manifest path")
	flag.Parse()
	fmt.Print(buildVersion(baseVersion(*manifest), execGit))
}

// buildVersion prefers git describe against v* tags and falls back to the
// short commit hash. Without git it returns base-dev.
func buildVersion(base string, git gitFunc) string {
	if desc, err := git("describe", "--tags", "--match", "v*", "--dirty"); err == nil && desc != "" {
		return fromDescribe(desc)
	}
	hash, err := git("rev-parse", "--short=7", "HEAD")
	if err != nil || hash == "" {
		return base + "-dev"
	}
	if status, err := git("status", "--porcelain"); err == nil && status != "" {
		hash += ".dirty"
	}
	return base + "-dev+" + hash
}

// fromDescribe rewrites "v1.2.0-2-g1a2b3c4-dirty" style output as SemVer.
func fromDescribe(desc string) string {
	desc, dirty := strings.CutSuffix(strings.TrimPrefix(desc, "v"), "-dirty")

	parts := strings.Split(desc, "-")
	if n := len(parts); n >= 3 && strings.HasPrefix(parts[n-1], "g") && isDigits(parts[n-2]) {
		meta := parts[n-1]
		if dirty {
			meta += ".dirty"
		}
		return fmt.Sprintf("%s-dev.%s+%s", strings.Join(parts[:n-2], "-"), parts[n-2], meta)
	}
	if dirty {
		return desc + "-dirty"
	}
	return desc
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// baseVersion returns the manifest's root version, or 0.0.0.
func baseVersion(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "0.0.0"
	}
	v, err := update.ParseManifest(data)
	if err != nil || v == "" {
		return "0.0.0"
	}
	return v
}
