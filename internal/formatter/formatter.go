// package formatter provides functions to export search results to various formats (Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// ExportToMarkdown converts a SearchResult to Markdown format with a criteria
// header and one numbered entry per playlist
func ExportToMarkdown(result *models.SearchResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Playlist Search Results\n\n")
	buf.WriteString(fmt.Sprintf("**Genres**: %s\n", strings.Join(result.Criteria.Genres, ", ")))
	if result.Criteria.MinFollowers > 0 {
		buf.WriteString(fmt.Sprintf("**Minimum followers**: %d\n", result.Criteria.MinFollowers))
	}
	buf.WriteString(fmt.Sprintf("**Found**: %d\n", result.TotalFound))
	buf.WriteString(fmt.Sprintf("**Searched at**: %s\n\n", result.Timestamp.Format(time.RFC3339)))

	buf.WriteString("## Playlists\n\n")
	for i, playlist := range result.Playlists {
		buf.WriteString(fmt.Sprintf("%d. [%s](%s) by %s - %d followers, %d tracks\n",
			i+1, playlist.Name, playlist.URL, playlist.Owner.DisplayName, playlist.Followers, playlist.TrackCount))
		if playlist.Description != "" {
			buf.WriteString(fmt.Sprintf("   > %s\n", playlist.Description))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a SearchResult to plain text format
func ExportToText(result *models.SearchResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Genres: %s\n", strings.Join(result.Criteria.Genres, ", ")))
	buf.WriteString(fmt.Sprintf("Found: %d\n\n", result.TotalFound))

	for i, playlist := range result.Playlists {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%d followers)\n", i+1, playlist.Owner.DisplayName, playlist.Name, playlist.Followers))
	}

	return buf.Bytes(), nil
}

// ToJSON generates a JSON representation of the full search result
func ToJSON(result *models.SearchResult, pretty bool) ([]byte, error) {
	return shared.MarshalJSON(result, pretty)
}

// WriteMarkdownExport writes a search result to a Markdown file.
//
// Defaults to results_{timestamp}.md as the filename.
func WriteMarkdownExport(result *models.SearchResult, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("results_%s.md", result.Timestamp.Format("20060102_150405"))
	}

	mdData, err := ExportToMarkdown(result)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport writes a search result to a plain text file.
//
// Defaults to results_{timestamp}.txt as the filename.
func WriteTextExport(result *models.SearchResult, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("results_%s.txt", result.Timestamp.Format("20060102_150405"))
	}

	textData, err := ExportToText(result)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

// WriteJSONExport writes a search result to a pretty-printed JSON file.
//
// Defaults to results_{timestamp}.json as the filename.
func WriteJSONExport(result *models.SearchResult, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("results_%s.json", result.Timestamp.Format("20060102_150405"))
	}

	jsonData, err := ToJSON(result, true)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(filepath, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return filepath, nil
}
