// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist discovery:
//  1. [GenreSelectView] : Browse the genre taxonomy and toggle selections
//  2. [SearchingView] : Run the multi-genre search
//  3. [ResultView] : Browse the ranked playlists
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
