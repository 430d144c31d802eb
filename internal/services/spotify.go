// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/time/rate"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"

	// searchPageSize caps the upstream page size regardless of the requested limit.
	searchPageSize = 50
)

// spotifyImage represents an image resource.
type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type spotifyFollowers struct {
	Total int `json:"total"`
}

type spotifyExternalURLs struct {
	Spotify string `json:"spotify"`
}

// spotifyOwner represents the owner object embedded in playlist responses.
type spotifyOwner struct {
	ID           string              `json:"id"`
	DisplayName  *string             `json:"display_name"`
	ExternalURLs spotifyExternalURLs `json:"external_urls"`
	Images       []spotifyImage      `json:"images"`
}

type spotifyPlaylistTracks struct {
	Total int `json:"total"`
}

// spotifyPlaylist represents a playlist object as returned by the search and
// playlist endpoints. Pointer fields are genuinely optional upstream: search
// result items may omit track data, the public flag, or follower counts.
type spotifyPlaylist struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	ExternalURLs spotifyExternalURLs    `json:"external_urls"`
	Images       []spotifyImage         `json:"images"`
	Owner        *spotifyOwner          `json:"owner"`
	Public       *bool                  `json:"public"`
	Tracks       *spotifyPlaylistTracks `json:"tracks"`
	Followers    *spotifyFollowers      `json:"followers"`
}

// spotifyUser represents a public user profile.
type spotifyUser struct {
	ID           string              `json:"id"`
	DisplayName  *string             `json:"display_name"`
	ExternalURLs spotifyExternalURLs `json:"external_urls"`
	Images       []spotifyImage      `json:"images"`
}

// spotifySearchResponse represents the playlist portion of a search response.
// Items can contain JSON nulls, which decode to nil pointers.
type spotifySearchResponse struct {
	Playlists struct {
		Items  []*spotifyPlaylist `json:"items"`
		Total  int                `json:"total"`
		Limit  int                `json:"limit"`
		Offset int                `json:"offset"`
	} `json:"playlists"`
}

// RetryConfig tunes the backoff applied to retryable (429/5xx) responses.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// DefaultRetryConfig returns the retry policy used when none is configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   8 * time.Second,
		Multiplier: 2,
	}
}

// delay computes the capped exponential delay for the given retry attempt.
func (c RetryConfig) delay(attempt int) time.Duration {
	d := c.BaseDelay
	for i := 0; i < attempt; i++ {
		d = time.Duration(float64(d) * c.Multiplier)
		if d >= c.MaxDelay {
			return c.MaxDelay
		}
	}
	if d > c.MaxDelay {
		return c.MaxDelay
	}
	return d
}

// ClientConfig contains construction options for [Client].
type ClientConfig struct {
	ClientID          string
	ClientSecret      string
	Market            string
	RequestsPerSecond float64
	Burst             int
	Retry             RetryConfig
	HTTPClient        *http.Client
	Logger            *log.Logger
	Now               func() time.Time
}

// Client implements [Catalog] for the Spotify Web API.
//
// All requests flow through doRequest, which applies rate limiting, bearer
// authentication, the single 401 retry, and backoff on retryable statuses.
type Client struct {
	baseURL    string
	market     string
	httpClient *http.Client
	tokens     *tokenSource
	limiter    *rate.Limiter
	retry      RetryConfig
	logger     *log.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Spotify catalog client with the given configuration.
// Missing credentials are a fatal configuration error, not a retryable one.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = shared.NewLogger(nil)
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.Retry == (RetryConfig{}) {
		cfg.Retry = DefaultRetryConfig()
	}
	if cfg.Market == "" {
		cfg.Market = "US"
	}

	tokens, err := newTokenSource(cfg.ClientID, cfg.ClientSecret, cfg.HTTPClient, cfg.Now)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:    spotifyBaseURL,
		market:     cfg.Market,
		httpClient: cfg.HTTPClient,
		tokens:     tokens,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		retry:      cfg.Retry,
		logger:     cfg.Logger,
		sleep:      sleepContext,
	}, nil
}

func (c *Client) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated GET request to the Spotify API and
// decodes the JSON response into result.
//
// Policy: wait on the rate limiter, attach a bearer token, then execute. A
// 401 clears the token slot and repeats the original request once; a second
// 401 is terminal. 429 and 5xx are retried with capped exponential backoff up
// to the configured maximum; every other non-2xx status is terminal.
func (c *Client) doRequest(ctx context.Context, endpoint string, query url.Values, result any) error {
	retried401 := false
	retries := 0

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		token, err := c.tokens.token(ctx)
		if err != nil {
			return err
		}

		apiURL := c.baseURL + endpoint
		if len(query) > 0 {
			apiURL += "?" + query.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("failed to read response: %w", readErr)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if result == nil {
				return nil
			}
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
			return nil
		}

		if resp.StatusCode == http.StatusUnauthorized {
			if retried401 {
				return fmt.Errorf("%w: request rejected twice with status 401", shared.ErrAuthFailed)
			}
			retried401 = true
			c.tokens.Invalidate()
			c.logger.Debug("token rejected, re-authenticating", "endpoint", endpoint)
			continue
		}

		statusErr := newStatusError(resp.StatusCode, body)

		if shared.Retryable(statusErr) && retries < c.retry.MaxRetries {
			delay := c.retry.delay(retries)
			retries++
			c.logger.Warn("retrying request", "endpoint", endpoint, "status", resp.StatusCode, "attempt", retries, "delay", delay)
			if err := c.sleep(ctx, delay); err != nil {
				return err
			}
			continue
		}

		return fmt.Errorf("spotify API error: %w", statusErr)
	}
}

// newStatusError builds a [shared.StatusError] from a non-2xx response body.
func newStatusError(status int, body []byte) *shared.StatusError {
	var failure struct {
		Error struct {
			Status  int    `json:"status"`
			Message string `json:"message"`
		} `json:"error"`
	}

	detail := ""
	if json.Unmarshal(body, &failure) == nil {
		detail = failure.Error.Message
	}

	return &shared.StatusError{Status: status, Detail: detail}
}

// sleepContext sleeps for d or until the context is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SearchPlaylists performs a raw playlist search with the given query string.
func (c *Client) SearchPlaylists(ctx context.Context, query string, limit, offset int) (*spotifySearchResponse, error) {
	if limit <= 0 || limit > searchPageSize {
		limit = searchPageSize
	}

	params := url.Values{
		"q":      {query},
		"type":   {"playlist"},
		"market": {c.market},
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}

	var response spotifySearchResponse
	if err := c.doRequest(ctx, "/search", params, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// SearchPlaylistsByGenre searches for playlists matching a single genre label.
//
// The query uses Spotify's field filter syntax (genre:"rock"). Malformed
// items in the response are dropped by the safe adapter rather than failing
// the whole page.
func (c *Client) SearchPlaylistsByGenre(ctx context.Context, genre string, limit int) ([]models.Playlist, error) {
	query := fmt.Sprintf("genre:%q", genre)

	response, err := c.SearchPlaylists(ctx, query, limit, 0)
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(response.Playlists.Items))
	for _, item := range response.Playlists.Items {
		if playlist, ok := AdaptPlaylistSafe(item, []string{genre}, c.logger); ok {
			playlists = append(playlists, playlist)
		}
	}

	return playlists, nil
}

// Playlist retrieves a playlist by ID.
func (c *Client) Playlist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	var sp spotifyPlaylist
	endpoint := fmt.Sprintf("/playlists/%s", playlistID)
	if err := c.doRequest(ctx, endpoint, nil, &sp); err != nil {
		return nil, err
	}

	playlist := adaptPlaylist(&sp, nil)
	return &playlist, nil
}

// User retrieves a user's public profile by ID.
func (c *Client) User(ctx context.Context, userID string) (*models.PlaylistOwner, error) {
	var su spotifyUser
	endpoint := fmt.Sprintf("/users/%s", userID)
	if err := c.doRequest(ctx, endpoint, nil, &su); err != nil {
		return nil, err
	}

	owner := adaptOwner(&spotifyOwner{
		ID:           su.ID,
		DisplayName:  su.DisplayName,
		ExternalURLs: su.ExternalURLs,
		Images:       su.Images,
	})
	return &owner, nil
}

// GenreSeeds retrieves the available genre seed labels.
//
// The endpoint is deprecated upstream, so callers should treat failures as
// routine and fall back to a curated list.
func (c *Client) GenreSeeds(ctx context.Context) ([]string, error) {
	var response struct {
		Genres []string `json:"genres"`
	}
	if err := c.doRequest(ctx, "/recommendations/available-genre-seeds", nil, &response); err != nil {
		return nil, err
	}

	return response.Genres, nil
}
