// Package roblox resolves a place identifier to display metadata through the
// public Roblox web APIs.
//
// A lookup runs three requests in sequence: place to universe, universe to
// game info, universe to icon. Any failing stage aborts the lookup with a
// [*LookupError] naming the stage.
package roblox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Fallback values used when the API has no data for a universe.
const (
	UnknownGame    = "Unknown Game"
	UnknownCreator = "Unknown"
	// FallbackIcon is the Discord asset key shown when no thumbnail is ready.
	FallbackIcon = "roblox_logo"
)

// thumbnailCompleted is the only thumbnail state that carries a usable URL.
const thumbnailCompleted = "Completed"

// maxResponseBytes caps each API response body.
const maxResponseBytes = 1 << 20

// Default API hosts.
const (
	DefaultUniverseURL  = "https://apis.roblox.com"
	DefaultGamesURL     = "https://games.roblox.com"
	DefaultThumbnailURL = "https://thumbnails.roblox.com"
)

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// GameDetails is the resolved metadata for a place.
type GameDetails struct {
	PlaceID    string
	UniverseID uint64
	Name       string
	Creator    string
	// ThumbnailURL is an image URL, or [FallbackIcon] when none is available.
	ThumbnailURL string
	Playing      uint64
	MaxPlayers   uint64
}

// Stage names the lookup step that failed.
type Stage string

const (
	StageUniverse  Stage = "universe"
	StageGame      Stage = "game"
	StageThumbnail Stage = "thumbnail"
)

// LookupError reports a failed metadata lookup.
type LookupError struct {
	Stage   Stage
	PlaceID string
	Err     error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup place %s (%s): %v", e.PlaceID, e.Stage, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Options configures a [Client]. Zero values select the defaults.
type Options struct {
	Timeout time.Duration // per-request timeout, default 10s
	Retries int           // retries per request, default 2; negative disables
	// RequestsPerSecond limits outgoing requests; zero or negative is
	// unlimited.
	RequestsPerSecond float64

	UniverseURL  string
	GamesURL     string
	ThumbnailURL string
}

// Client performs metadata lookups. It is safe for concurrent use.
type Client struct {
	http    *retryablehttp.Client
	limiter *rate.Limiter

	universeURL  string
	gamesURL     string
	thumbnailURL string
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	hc := retryablehttp.NewClient()
	hc.RetryMax = 2
	if opts.Retries > 0 {
		hc.RetryMax = opts.Retries
	} else if opts.Retries < 0 {
		hc.RetryMax = 0
	}
	hc.RetryWaitMin = 250 * time.Millisecond
	hc.RetryWaitMax = 2 * time.Second
	hc.HTTPClient.Timeout = 10 * time.Second
	if opts.Timeout > 0 {
		hc.HTTPClient.Timeout = opts.Timeout
	}
	hc.Logger = nil

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		http:         hc,
		limiter:      limiter,
		universeURL:  orDefault(opts.UniverseURL, DefaultUniverseURL),
		gamesURL:     orDefault(opts.GamesURL, DefaultGamesURL),
		thumbnailURL: orDefault(opts.ThumbnailURL, DefaultThumbnailURL),
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ///////////////////////////////////////////////
// Public API
// ///////////////////////////////////////////////

// Resolve looks up the game a place belongs to. An empty game list yields
// placeholder details rather than an error. A thumbnail that is not ready
// falls back to [FallbackIcon].
func (c *Client) Resolve(ctx context.Context, placeID string) (*GameDetails, error) {
	universeID, err := c.universeID(ctx, placeID)
	if err != nil {
		return nil, &LookupError{Stage: StageUniverse, PlaceID: placeID, Err: err}
	}

	game, err := c.game(ctx, universeID)
	if err != nil {
		return nil, &LookupError{Stage: StageGame, PlaceID: placeID, Err: err}
	}
	if game == nil {
		return &GameDetails{
			PlaceID:      placeID,
			UniverseID:   universeID,
			Name:         UnknownGame,
			Creator:      UnknownCreator,
			ThumbnailURL: FallbackIcon,
		}, nil
	}

	thumb, err := c.thumbnail(ctx, universeID)
	if err != nil {
		return nil, &LookupError{Stage: StageThumbnail, PlaceID: placeID, Err: err}
	}

	return &GameDetails{
		PlaceID:      placeID,
		UniverseID:   universeID,
		Name:         game.Name,
		Creator:      game.Creator.Name,
		ThumbnailURL: thumb,
		Playing:      game.Playing,
		MaxPlayers:   game.MaxPlayers,
	}, nil
}

// ///////////////////////////////////////////////
// API Stages
// ///////////////////////////////////////////////

type universeResponse struct {
	UniverseID uint64 `json:"universeId"`
}

type gamesResponse struct {
	Data []gameInfo `json:"data"`
}

type gameInfo struct {
	Name       string `json:"name"`
	Playing    uint64 `json:"playing"`
	MaxPlayers uint64 `json:"maxPlayers"`
	Creator    struct {
		Name string `json:"name"`
	} `json:"creator"`
}

type thumbnailsResponse struct {
	Data []struct {
		State    string `json:"state"`
		ImageURL string `json:"imageUrl"`
	} `json:"data"`
}

func (c *Client) universeID(ctx context.Context, placeID string) (uint64, error) {
	var resp universeResponse
	u := c.universeURL + "/universes/v1/places/" + url.PathEscape(placeID) + "/universe"
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return 0, err
	}
	return resp.UniverseID, nil
}

// game returns nil when the universe has no game entry.
func (c *Client) game(ctx context.Context, universeID uint64) (*gameInfo, error) {
	var resp gamesResponse
	u := c.gamesURL + "/v1/games?universeIds=" + strconv.FormatUint(universeID, 10)
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return &resp.Data[0], nil
}

func (c *Client) thumbnail(ctx context.Context, universeID uint64) (string, error) {
	var resp thumbnailsResponse
	u := c.thumbnailURL + "/v1/games/icons?universeIds=" + strconv.FormatUint(universeID, 10) +
		"&size=512x512&format=Png&isCircular=false"
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || resp.Data[0].State != thumbnailCompleted || resp.Data[0].ImageURL == "" {
		return FallbackIcon, nil
	}
	return resp.Data[0].ImageURL, nil
}

// getJSON fetches u and decodes the JSON body into v.
func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", u, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", u, err)
	}
	if len(body) > maxResponseBytes {
		return fmt.Errorf("response from %s exceeds %d bytes", u, maxResponseBytes)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing response from %s: %w", u, err)
	}
	return nil
}
