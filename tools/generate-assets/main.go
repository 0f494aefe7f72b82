// gen-assets renders the badge images uploaded to the rbxcord Discord
// application, one PNG per asset key in data/assets.json.
//
// Font resolution:
//  1. Local file from the "font" field
//  2. Google Fonts download from "font_fallback" (e.g. "google:Inter:800")
//
// Usage:
//
//	cd tools/generate-assets && go run .
//	cd tools/generate-assets && go run . -assets ../../data/assets.json -out ../../assets/discord
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tdewolff/font"
	"golang.org/x/image/font/opentype"
)

func main() {
	assetsFile := flag.String("assets", "../../data/assets.json", "Path to assets.json")
	outDir := flag.String("out", "../../assets/discord", "Output directory for {key}.png")
	flag.Parse()

	if err := run(*assetsFile, *outDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(assetsFile, outDir string) error {
	repoRoot, err := filepath.Abs(filepath.Join(filepath.Dir(assetsFile), ".."))
	if err != nil {
		return fmt.Errorf("resolve repo root: %w", err)
	}
	ad, err := LoadAssetData(assetsFile)
	if err != nil {
		return fmt.Errorf("load assets: %w", err)
	}

	fonts := &fontFetcher{
		client:   &http.Client{Timeout: 15 * time.Second},
		cacheDir: filepath.Join(repoRoot, "assets", "fonts", ".cache"),
	}
	fontBytes, err := resolveFont(ad, repoRoot, fonts)
	if err != nil {
		return err
	}
	otFont, err := opentype.Parse(fontBytes)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, key := range ad.Keys() {
		label := ad.Assets[key].Label
		pngData, err := RenderBadge(ad.Resolved(key), label, otFont)
		if err != nil {
			return fmt.Errorf("render %s: %w", key, err)
		}
		outPath := filepath.Join(outDir, key+".png")
		if err := os.WriteFile(outPath, pngData, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		fmt.Printf("  %s.png (%s)\n", key, label)
	}
	fmt.Printf("Done. Generated %d assets.\n", len(ad.Assets))
	return nil
}

// resolveFont loads the local font, falling back to Google Fonts.
func resolveFont(ad *AssetData, repoRoot string, fonts *fontFetcher) ([]byte, error) {
	if ad.Font != "" {
		localPath := filepath.Join(repoRoot, ad.Font)
		if data, err := os.ReadFile(localPath); err == nil {
			fmt.Printf("  font: %s (local)\n", ad.Font)
			return toSFNT(localPath, data)
		}
	}
	if ad.FontFallback != "" {
		data, err := fonts.Fetch(ad.FontFallback)
		if err != nil {
			return nil, fmt.Errorf("google fonts fallback failed: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("no font configured (set \"font\" or \"font_fallback\" in assets.json)")
}

// toSFNT converts WOFF2 data to SFNT and passes other formats through.
func toSFNT(name string, data []byte) ([]byte, error) {
	if !isWOFF2(name, data) {
		return data, nil
	}
	sfnt, err := font.ToSFNT(data)
	if err != nil {
		return nil, fmt.Errorf("convert woff2 to sfnt: %w", err)
	}
	return sfnt, nil
}

// isWOFF2 checks the extension, then the "wOF2" magic.
func isWOFF2(name string, data []byte) bool {
	if strings.HasSuffix(strings.ToLower(name), ".woff2") {
		return true
	}
	return len(data) >= 4 && string(data[:4]) == "wOF2"
}
