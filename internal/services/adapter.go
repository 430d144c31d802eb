package services

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
)

// adaptPlaylist maps an external playlist object to the domain shape.
//
// Defaulting rules: an empty description stays absent; the first (largest)
// image wins; a missing tracks object means a track count of 0; a missing
// public flag defaults to true. The genre labels come from the search context
// that produced the playlist, since the API does not return genres on
// playlist objects.
func adaptPlaylist(sp *spotifyPlaylist, contextGenres []string) models.Playlist {
	playlist := models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		URL:         sp.ExternalURLs.Spotify,
		Genres:      contextGenres,
		Public:      true,
	}

	if sp.Followers != nil {
		playlist.Followers = sp.Followers.Total
	}
	if sp.Tracks != nil {
		playlist.TrackCount = sp.Tracks.Total
	}
	if len(sp.Images) > 0 {
		playlist.ImageURL = sp.Images[0].URL
	}
	if sp.Public != nil {
		playlist.Public = *sp.Public
	}
	if sp.Owner != nil {
		playlist.Owner = adaptOwner(sp.Owner)
	}

	return playlist
}

// adaptOwner maps an external owner object to the domain shape.
//
// The API exposes no separate handle, so username defaults to the id, and so
// does the display name when the external one is null or empty.
func adaptOwner(o *spotifyOwner) models.PlaylistOwner {
	owner := models.PlaylistOwner{
		ID:          o.ID,
		Username:    o.ID,
		DisplayName: o.ID,
		ProfileURL:  o.ExternalURLs.Spotify,
	}

	if o.DisplayName != nil && *o.DisplayName != "" {
		owner.DisplayName = *o.DisplayName
	}
	if len(o.Images) > 0 {
		owner.ImageURL = o.Images[0].URL
	}

	return owner
}

// AdaptPlaylistSafe validates the minimal shape of an external playlist
// before adapting it.
//
// Search responses can contain null items and records missing required
// sub-objects; returning ok=false lets the caller drop one malformed record
// without failing the whole page. Rejections are logged at warn level.
func AdaptPlaylistSafe(sp *spotifyPlaylist, contextGenres []string, logger *log.Logger) (models.Playlist, bool) {
	reason := ""
	switch {
	case sp == nil:
		reason = "null playlist item"
	case sp.ID == "":
		reason = "missing id"
	case sp.Name == "":
		reason = "missing name"
	case sp.ExternalURLs.Spotify == "":
		reason = "missing external url"
	case sp.Followers == nil:
		reason = "missing follower count"
	case sp.Owner == nil || sp.Owner.ID == "":
		reason = "missing owner"
	case sp.Public == nil:
		reason = "missing public flag"
	}

	if reason != "" {
		if logger != nil {
			id := ""
			if sp != nil {
				id = sp.ID
			}
			logger.Warn("dropping malformed playlist record", "reason", reason, "id", id)
		}
		return models.Playlist{}, false
	}

	return adaptPlaylist(sp, contextGenres), true
}
