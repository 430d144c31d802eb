package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/crate/internal/shared"
	itesting "github.com/desertthunder/crate/internal/testing"
)

const searchPage = `{
	"playlists": {
		"items": [
			{
				"id": "p1",
				"name": "Rock Classics",
				"description": "All the hits",
				"external_urls": {"spotify": "https://open.spotify.com/playlist/p1"},
				"images": [{"url": "https://img.example/p1.jpg"}],
				"owner": {"id": "u1", "display_name": "Curator", "external_urls": {"spotify": "https://open.spotify.com/user/u1"}},
				"public": true,
				"tracks": {"total": 42},
				"followers": {"total": 1200}
			}
		],
		"total": 1,
		"limit": 50,
		"offset": 0
	}
}`

// routedTransport sends token requests to the grant counter and everything
// else to the API sequence.
type routedTransport struct {
	tokens *countingTokenTransport
	api    *itesting.SequenceRoundTripper
}

func (r *routedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Host == "accounts.spotify.com" {
		return r.tokens.RoundTrip(req)
	}
	return r.api.RoundTrip(req)
}

func newTestClient(t *testing.T, api *itesting.SequenceRoundTripper, retry RetryConfig) (*Client, *countingTokenTransport) {
	t.Helper()

	tokens := &countingTokenTransport{expiresIn: 3600}
	client, err := NewClient(ClientConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		HTTPClient:   &http.Client{Transport: &routedTransport{tokens: tokens, api: api}},
		Retry:        retry,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	// No real waiting in tests.
	client.sleep = func(context.Context, time.Duration) error { return nil }

	return client, tokens
}

func TestClient(t *testing.T) {
	t.Run("NewClient", func(t *testing.T) {
		t.Run("missing credentials", func(t *testing.T) {
			_, err := NewClient(ClientConfig{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("implements catalog interface", func(t *testing.T) {
			client, _ := newTestClient(t, itesting.NewSequenceRoundTripper(), DefaultRetryConfig())
			var _ Catalog = client

			if client.Name() != "Spotify" {
				t.Errorf("expected name 'Spotify', got %s", client.Name())
			}
		})
	})

	t.Run("SearchPlaylistsByGenre", func(t *testing.T) {
		t.Run("builds field filter query", func(t *testing.T) {
			api := itesting.NewSequenceRoundTripper(itesting.JSONResponse(http.StatusOK, searchPage))
			client, _ := newTestClient(t, api, DefaultRetryConfig())

			playlists, err := client.SearchPlaylistsByGenre(context.Background(), "rock", 25)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			req := api.Requests[0]
			if req.URL.Path != "/v1/search" {
				t.Errorf("expected search path, got %s", req.URL.Path)
			}

			query := req.URL.Query()
			if got := query.Get("q"); got != `genre:"rock"` {
				t.Errorf("expected field filter query, got %q", got)
			}
			if query.Get("type") != "playlist" {
				t.Errorf("expected type=playlist, got %s", query.Get("type"))
			}
			if query.Get("limit") != "25" {
				t.Errorf("expected limit=25, got %s", query.Get("limit"))
			}
			if query.Get("market") != "US" {
				t.Errorf("expected default market US, got %s", query.Get("market"))
			}

			if len(playlists) != 1 {
				t.Fatalf("expected 1 playlist, got %d", len(playlists))
			}
			if playlists[0].ID != "p1" || playlists[0].Followers != 1200 {
				t.Errorf("unexpected playlist: %+v", playlists[0])
			}
			if len(playlists[0].Genres) != 1 || playlists[0].Genres[0] != "rock" {
				t.Errorf("expected context genre 'rock', got %v", playlists[0].Genres)
			}
		})

		t.Run("sends bearer token", func(t *testing.T) {
			api := itesting.NewSequenceRoundTripper(itesting.JSONResponse(http.StatusOK, searchPage))
			client, _ := newTestClient(t, api, DefaultRetryConfig())

			if _, err := client.SearchPlaylistsByGenre(context.Background(), "rock", 10); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if got := api.Requests[0].Header.Get("Authorization"); got != "Bearer tok1" {
				t.Errorf("expected bearer token, got %q", got)
			}
		})

		t.Run("clamps page size", func(t *testing.T) {
			api := itesting.NewSequenceRoundTripper(itesting.JSONResponse(http.StatusOK, searchPage))
			client, _ := newTestClient(t, api, DefaultRetryConfig())

			if _, err := client.SearchPlaylistsByGenre(context.Background(), "rock", 500); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if got := api.Requests[0].URL.Query().Get("limit"); got != "50" {
				t.Errorf("expected page size clamped to 50, got %s", got)
			}
		})

		t.Run("drops malformed items", func(t *testing.T) {
			page := `{
				"playlists": {
					"items": [
						null,
						{"id": "", "name": "no id"},
						{
							"id": "ok",
							"name": "Valid",
							"external_urls": {"spotify": "https://open.spotify.com/playlist/ok"},
							"owner": {"id": "u2", "external_urls": {"spotify": ""}},
							"public": false,
							"followers": {"total": 10}
						}
					]
				}
			}`
			api := itesting.NewSequenceRoundTripper(itesting.JSONResponse(http.StatusOK, page))
			client, _ := newTestClient(t, api, DefaultRetryConfig())

			playlists, err := client.SearchPlaylistsByGenre(context.Background(), "jazz", 10)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(playlists) != 1 {
				t.Fatalf("expected only the valid item, got %d", len(playlists))
			}
			if playlists[0].ID != "ok" {
				t.Errorf("expected playlist 'ok', got %s", playlists[0].ID)
			}
		})
	})

	t.Run("request policy", func(t *testing.T) {
		t.Run("retries once on 401 with fresh token", func(t *testing.T) {
			api := itesting.NewSequenceRoundTripper(
				itesting.JSONResponse(http.StatusUnauthorized, `{"error":{"status":401,"message":"The access token expired"}}`),
				itesting.JSONResponse(http.StatusOK, searchPage),
			)
			client, tokens := newTestClient(t, api, DefaultRetryConfig())

			playlists, err := client.SearchPlaylistsByGenre(context.Background(), "rock", 10)
			if err != nil {
				t.Fatalf("expected success after token refresh, got %v", err)
			}
			if len(playlists) != 1 {
				t.Errorf("expected 1 playlist, got %d", len(playlists))
			}

			if tokens.count != 2 {
				t.Errorf("expected 2 token exchanges, got %d", tokens.count)
			}
			if got := api.Requests[1].Header.Get("Authorization"); got != "Bearer tok2" {
				t.Errorf("expected retried request to carry fresh token, got %q", got)
			}
		})

		t.Run("second 401 is terminal", func(t *testing.T) {
			api := itesting.NewSequenceRoundTripper(
				itesting.JSONResponse(http.StatusUnauthorized, `{"error":{"status":401,"message":"bad token"}}`),
				itesting.JSONResponse(http.StatusUnauthorized, `{"error":{"status":401,"message":"bad token"}}`),
			)
			client, _ := newTestClient(t, api, DefaultRetryConfig())

			_, err := client.SearchPlaylistsByGenre(context.Background(), "rock", 10)
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
			if api.Count() != 2 {
				t.Errorf("expected exactly 2 API requests, got %d", api.Count())
			}
		})

		t.Run("backs off on 429 then succeeds", func(t *testing.T) {
			api := itesting.NewSequenceRoundTripper(
				itesting.JSONResponse(http.StatusTooManyRequests, `{"error":{"status":429,"message":"rate limited"}}`),
				itesting.JSONResponse(http.StatusOK, searchPage),
			)
			client, _ := newTestClient(t, api, DefaultRetryConfig())

			var delays []time.Duration
			client.sleep = func(_ context.Context, d time.Duration) error {
				delays = append(delays, d)
				return nil
			}

			playlists, err := client.SearchPlaylistsByGenre(context.Background(), "rock", 10)
			if err != nil {
				t.Fatalf("expected success after backoff, got %v", err)
			}
			if len(playlists) != 1 {
				t.Errorf("expected 1 playlist, got %d", len(playlists))
			}

			if len(delays) != 1 {
				t.Fatalf("expected 1 backoff sleep, got %d", len(delays))
			}
			if delays[0] != 500*time.Millisecond {
				t.Errorf("expected base delay 500ms, got %v", delays[0])
			}
		})

		t.Run("gives up after max retries", func(t *testing.T) {
			failure := `{"error":{"status":503,"message":"service unavailable"}}`
			api := itesting.NewSequenceRoundTripper(
				itesting.JSONResponse(http.StatusServiceUnavailable, failure),
				itesting.JSONResponse(http.StatusServiceUnavailable, failure),
			)
			client, _ := newTestClient(t, api, RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2})

			_, err := client.SearchPlaylistsByGenre(context.Background(), "rock", 10)
			if err == nil {
				t.Fatal("expected error after exhausting retries")
			}

			var statusErr *shared.StatusError
			if !errors.As(err, &statusErr) || statusErr.Status != http.StatusServiceUnavailable {
				t.Errorf("expected 503 status error, got %v", err)
			}
			if api.Count() != 2 {
				t.Errorf("expected 2 attempts, got %d", api.Count())
			}
		})

		t.Run("non-retryable status is terminal", func(t *testing.T) {
			api := itesting.NewSequenceRoundTripper(
				itesting.JSONResponse(http.StatusNotFound, `{"error":{"status":404,"message":"Not found"}}`),
			)
			client, _ := newTestClient(t, api, DefaultRetryConfig())

			_, err := client.Playlist(context.Background(), "missing")
			var statusErr *shared.StatusError
			if !errors.As(err, &statusErr) || statusErr.Status != http.StatusNotFound {
				t.Errorf("expected 404 status error, got %v", err)
			}
			if statusErr.Detail != "Not found" {
				t.Errorf("expected upstream message, got %q", statusErr.Detail)
			}
			if api.Count() != 1 {
				t.Errorf("expected single attempt, got %d", api.Count())
			}
		})
	})

	t.Run("Playlist", func(t *testing.T) {
		body := `{
			"id": "p9",
			"name": "Focus",
			"external_urls": {"spotify": "https://open.spotify.com/playlist/p9"},
			"owner": {"id": "u3", "display_name": null, "external_urls": {"spotify": ""}},
			"tracks": {"total": 7},
			"followers": {"total": 3}
		}`
		api := itesting.NewSequenceRoundTripper(itesting.JSONResponse(http.StatusOK, body))
		client, _ := newTestClient(t, api, DefaultRetryConfig())

		playlist, err := client.Playlist(context.Background(), "p9")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if api.Requests[0].URL.Path != "/v1/playlists/p9" {
			t.Errorf("unexpected path %s", api.Requests[0].URL.Path)
		}
		if playlist.TrackCount != 7 {
			t.Errorf("expected 7 tracks, got %d", playlist.TrackCount)
		}
		if !playlist.Public {
			t.Error("expected missing public flag to default to true")
		}
		if playlist.Owner.DisplayName != "u3" {
			t.Errorf("expected display name to fall back to id, got %q", playlist.Owner.DisplayName)
		}
	})

	t.Run("User", func(t *testing.T) {
		body := `{
			"id": "u7",
			"display_name": "Seven",
			"external_urls": {"spotify": "https://open.spotify.com/user/u7"},
			"images": [{"url": "https://img.example/u7.jpg"}]
		}`
		api := itesting.NewSequenceRoundTripper(itesting.JSONResponse(http.StatusOK, body))
		client, _ := newTestClient(t, api, DefaultRetryConfig())

		owner, err := client.User(context.Background(), "u7")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if owner.DisplayName != "Seven" || owner.Username != "u7" {
			t.Errorf("unexpected owner: %+v", owner)
		}
		if owner.ImageURL != "https://img.example/u7.jpg" {
			t.Errorf("expected first image url, got %q", owner.ImageURL)
		}
	})

	t.Run("GenreSeeds", func(t *testing.T) {
		api := itesting.NewSequenceRoundTripper(itesting.JSONResponse(http.StatusOK, `{"genres":["rock","jazz"]}`))
		client, _ := newTestClient(t, api, DefaultRetryConfig())

		seeds, err := client.GenreSeeds(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(seeds) != 2 || seeds[0] != "rock" {
			t.Errorf("unexpected seeds: %v", seeds)
		}
	})
}

func TestRetryConfigDelay(t *testing.T) {
	retry := RetryConfig{BaseDelay: 500 * time.Millisecond, MaxDelay: 8 * time.Second, Multiplier: 2}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 500 * time.Millisecond},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{10, 8 * time.Second},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("attempt %d", tc.attempt), func(t *testing.T) {
			if got := retry.delay(tc.attempt); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
