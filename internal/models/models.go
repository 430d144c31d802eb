package models

import (
	"fmt"
	"strings"
	"time"
)

// Limits on search criteria accepted by the service.
const (
	MaxGenres    = 10
	MaxLimit     = 50
	DefaultLimit = 50
)

// PlaylistOwner identifies the user that owns a playlist.
type PlaylistOwner struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	ProfileURL  string `json:"profileUrl"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Playlist is the internal representation of a catalog playlist.
//
// Identity is the external id, which is stable across searches. Genres holds
// the labels of the searches that surfaced this playlist, not data from the
// catalog: the upstream API does not attach genre labels to playlist objects.
type Playlist struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url"`
	Followers   int           `json:"followers"`
	TrackCount  int           `json:"trackCount"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	Owner       PlaylistOwner `json:"owner"`
	Genres      []string      `json:"genres"`
	Public      bool          `json:"public"`
}

// SearchCriteria is the validated input for a playlist search.
type SearchCriteria struct {
	Genres       []string `json:"genres"`
	MinFollowers int      `json:"minFollowerCount"`
	Limit        int      `json:"limit"`
}

// NewSearchCriteria builds criteria with normalized genres and a defaulted limit.
func NewSearchCriteria(genres []string, minFollowers, limit int) SearchCriteria {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return SearchCriteria{
		Genres:       NormalizeGenres(genres),
		MinFollowers: minFollowers,
		Limit:        limit,
	}
}

// Validate checks range constraints on the criteria.
func (c SearchCriteria) Validate() error {
	if len(c.Genres) == 0 {
		return fmt.Errorf("at least one genre is required")
	}
	if len(c.Genres) > MaxGenres {
		return fmt.Errorf("a maximum of %d genres is allowed, got %d", MaxGenres, len(c.Genres))
	}
	if c.MinFollowers < 0 {
		return fmt.Errorf("minimum follower count must be >= 0, got %d", c.MinFollowers)
	}
	if c.Limit < 1 || c.Limit > MaxLimit {
		return fmt.Errorf("limit must be between 1 and %d, got %d", MaxLimit, c.Limit)
	}
	return nil
}

// NormalizeGenres trims and lower-cases each label, dropping empties.
func NormalizeGenres(genres []string) []string {
	normalized := make([]string, 0, len(genres))
	for _, g := range genres {
		g = strings.ToLower(strings.TrimSpace(g))
		if g != "" {
			normalized = append(normalized, g)
		}
	}
	return normalized
}

// GenreOutcome records the result of one genre's search within a fan-out.
type GenreOutcome struct {
	Genre string
	Count int
	Err   error
}

// SearchResult is the outcome of a playlist search.
//
// TotalFound always equals len(Playlists): the post-filter, post-truncate
// count, never the upstream-reported total.
type SearchResult struct {
	Playlists  []Playlist     `json:"playlists"`
	TotalFound int            `json:"totalFound"`
	Criteria   SearchCriteria `json:"searchCriteria"`
	Timestamp  time.Time      `json:"timestamp"`

	// Outcomes reports per-genre success or failure of the fan-out. It is
	// diagnostic and not part of the serialized API response.
	Outcomes []GenreOutcome `json:"-"`
}

// Succeeded returns how many of the fan-out's genre searches completed without error.
func (r *SearchResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}
