package services

import (
	"testing"
)

func validSpotifyPlaylist() *spotifyPlaylist {
	public := true
	name := "Curator"
	return &spotifyPlaylist{
		ID:           "p1",
		Name:         "Rock Classics",
		Description:  "All the hits",
		ExternalURLs: spotifyExternalURLs{Spotify: "https://open.spotify.com/playlist/p1"},
		Images:       []spotifyImage{{URL: "https://img.example/p1.jpg"}},
		Owner: &spotifyOwner{
			ID:           "u1",
			DisplayName:  &name,
			ExternalURLs: spotifyExternalURLs{Spotify: "https://open.spotify.com/user/u1"},
		},
		Public:    &public,
		Tracks:    &spotifyPlaylistTracks{Total: 42},
		Followers: &spotifyFollowers{Total: 1200},
	}
}

func TestAdaptPlaylist(t *testing.T) {
	t.Run("maps all fields", func(t *testing.T) {
		playlist := adaptPlaylist(validSpotifyPlaylist(), []string{"rock"})

		if playlist.ID != "p1" || playlist.Name != "Rock Classics" {
			t.Errorf("unexpected identity: %+v", playlist)
		}
		if playlist.Followers != 1200 || playlist.TrackCount != 42 {
			t.Errorf("unexpected counts: %+v", playlist)
		}
		if playlist.ImageURL != "https://img.example/p1.jpg" {
			t.Errorf("expected first image, got %q", playlist.ImageURL)
		}
		if playlist.Owner.DisplayName != "Curator" || playlist.Owner.Username != "u1" {
			t.Errorf("unexpected owner: %+v", playlist.Owner)
		}
		if len(playlist.Genres) != 1 || playlist.Genres[0] != "rock" {
			t.Errorf("expected context genres, got %v", playlist.Genres)
		}
	})

	t.Run("defaulting rules", func(t *testing.T) {
		t.Run("missing tracks means zero", func(t *testing.T) {
			sp := validSpotifyPlaylist()
			sp.Tracks = nil

			if got := adaptPlaylist(sp, nil).TrackCount; got != 0 {
				t.Errorf("expected 0 tracks, got %d", got)
			}
		})

		t.Run("missing public flag defaults to true", func(t *testing.T) {
			sp := validSpotifyPlaylist()
			sp.Public = nil

			if !adaptPlaylist(sp, nil).Public {
				t.Error("expected public to default to true")
			}
		})

		t.Run("nil display name falls back to id", func(t *testing.T) {
			sp := validSpotifyPlaylist()
			sp.Owner.DisplayName = nil

			if got := adaptPlaylist(sp, nil).Owner.DisplayName; got != "u1" {
				t.Errorf("expected id fallback, got %q", got)
			}
		})

		t.Run("empty display name falls back to id", func(t *testing.T) {
			sp := validSpotifyPlaylist()
			empty := ""
			sp.Owner.DisplayName = &empty

			if got := adaptPlaylist(sp, nil).Owner.DisplayName; got != "u1" {
				t.Errorf("expected id fallback, got %q", got)
			}
		})

		t.Run("no images leaves url empty", func(t *testing.T) {
			sp := validSpotifyPlaylist()
			sp.Images = nil

			if got := adaptPlaylist(sp, nil).ImageURL; got != "" {
				t.Errorf("expected empty image url, got %q", got)
			}
		})
	})
}

func TestAdaptPlaylistSafe(t *testing.T) {
	t.Run("accepts complete record", func(t *testing.T) {
		playlist, ok := AdaptPlaylistSafe(validSpotifyPlaylist(), []string{"rock"}, nil)
		if !ok {
			t.Fatal("expected record to be accepted")
		}
		if playlist.ID != "p1" {
			t.Errorf("unexpected playlist: %+v", playlist)
		}
	})

	t.Run("rejects malformed records", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*spotifyPlaylist) *spotifyPlaylist
		}{
			{"nil item", func(*spotifyPlaylist) *spotifyPlaylist { return nil }},
			{"missing id", func(sp *spotifyPlaylist) *spotifyPlaylist { sp.ID = ""; return sp }},
			{"missing name", func(sp *spotifyPlaylist) *spotifyPlaylist { sp.Name = ""; return sp }},
			{"missing external url", func(sp *spotifyPlaylist) *spotifyPlaylist { sp.ExternalURLs.Spotify = ""; return sp }},
			{"missing followers", func(sp *spotifyPlaylist) *spotifyPlaylist { sp.Followers = nil; return sp }},
			{"missing owner", func(sp *spotifyPlaylist) *spotifyPlaylist { sp.Owner = nil; return sp }},
			{"empty owner id", func(sp *spotifyPlaylist) *spotifyPlaylist { sp.Owner.ID = ""; return sp }},
			{"missing public flag", func(sp *spotifyPlaylist) *spotifyPlaylist { sp.Public = nil; return sp }},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, ok := AdaptPlaylistSafe(tc.mutate(validSpotifyPlaylist()), nil, nil); ok {
					t.Error("expected record to be rejected")
				}
			})
		}
	})
}
