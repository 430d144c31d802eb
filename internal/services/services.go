package services

import (
	"context"

	"github.com/desertthunder/crate/internal/models"
)

// Catalog defines the interface for a music catalog provider that can search
// playlists by genre and resolve playlists, users, and genre labels.
type Catalog interface {
	// SearchPlaylistsByGenre searches the catalog for playlists matching a
	// single genre label, returning up to limit adapted playlists. Malformed
	// upstream records are dropped, not surfaced.
	SearchPlaylistsByGenre(ctx context.Context, genre string, limit int) ([]models.Playlist, error)

	// Playlist retrieves a single playlist by its external ID.
	Playlist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// User retrieves a playlist owner's public profile by ID.
	User(ctx context.Context, userID string) (*models.PlaylistOwner, error)

	// GenreSeeds retrieves the catalog's genre label taxonomy.
	GenreSeeds(ctx context.Context) ([]string, error)

	// Name returns the name of the catalog provider (e.g., "Spotify")
	Name() string
}
