package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/crate/internal/models"
)

var (
	_ list.Item = genreItem{}
	_ list.Item = playlistItem{}
)

// genreItem wraps a genre label to implement [list.Item]. Selection state
// lives on the item so the delegate can render the checkbox.
type genreItem struct {
	label    string
	selected bool
}

func (i genreItem) FilterValue() string { return i.label }
func (i genreItem) Title() string {
	if i.selected {
		return fmt.Sprintf("[x] %s", i.label)
	}
	return fmt.Sprintf("[ ] %s", i.label)
}
func (i genreItem) Description() string { return "" }

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d followers • %d tracks", i.playlist.Followers, i.playlist.TrackCount)
	if i.playlist.Owner.DisplayName != "" {
		desc = fmt.Sprintf("%s • by %s", desc, i.playlist.Owner.DisplayName)
	}
	return desc
}
