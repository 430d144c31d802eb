package formatter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/crate/internal/models"
)

func sampleResult() *models.SearchResult {
	return &models.SearchResult{
		Playlists: []models.Playlist{
			{
				ID:          "p1",
				Name:        "Rock Classics",
				Description: "All the hits",
				URL:         "https://open.spotify.com/playlist/p1",
				Followers:   1200,
				TrackCount:  42,
				Owner:       models.PlaylistOwner{ID: "u1", Username: "u1", DisplayName: "Curator"},
				Genres:      []string{"rock"},
				Public:      true,
			},
			{
				ID:        "p2",
				Name:      "Deep Cuts",
				URL:       "https://open.spotify.com/playlist/p2",
				Followers: 300,
				Owner:     models.PlaylistOwner{ID: "u2", Username: "u2", DisplayName: "u2"},
				Genres:    []string{"rock"},
				Public:    true,
			},
		},
		TotalFound: 2,
		Criteria: models.SearchCriteria{
			Genres:       []string{"rock"},
			MinFollowers: 100,
			Limit:        50,
		},
		Timestamp: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(sampleResult())
	if err != nil {
		t.Fatalf("failed to generate markdown: %v", err)
	}

	output := string(data)

	t.Run("contains criteria header", func(t *testing.T) {
		if !strings.Contains(output, "**Genres**: rock") {
			t.Error("expected genres line")
		}
		if !strings.Contains(output, "**Minimum followers**: 100") {
			t.Error("expected follower floor line")
		}
		if !strings.Contains(output, "**Found**: 2") {
			t.Error("expected found count line")
		}
	})

	t.Run("contains numbered entries", func(t *testing.T) {
		if !strings.Contains(output, "1. [Rock Classics](https://open.spotify.com/playlist/p1) by Curator - 1200 followers, 42 tracks") {
			t.Errorf("missing first entry in:\n%s", output)
		}
		if !strings.Contains(output, "2. [Deep Cuts]") {
			t.Error("expected second entry")
		}
	})

	t.Run("quotes descriptions", func(t *testing.T) {
		if !strings.Contains(output, "> All the hits") {
			t.Error("expected description blockquote")
		}
	})

	t.Run("omits follower floor when zero", func(t *testing.T) {
		result := sampleResult()
		result.Criteria.MinFollowers = 0

		data, err := ExportToMarkdown(result)
		if err != nil {
			t.Fatalf("failed to generate markdown: %v", err)
		}
		if strings.Contains(string(data), "Minimum followers") {
			t.Error("expected follower line to be omitted")
		}
	})
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(sampleResult())
	if err != nil {
		t.Fatalf("failed to generate text: %v", err)
	}

	output := string(data)
	if !strings.Contains(output, "Genres: rock") {
		t.Error("expected genre header")
	}
	if !strings.Contains(output, "1. Curator - Rock Classics (1200 followers)") {
		t.Errorf("missing first entry in:\n%s", output)
	}
}

func TestToJSON(t *testing.T) {
	data, err := ToJSON(sampleResult(), false)
	if err != nil {
		t.Fatalf("failed to generate JSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded["totalFound"].(float64) != 2 {
		t.Errorf("unexpected totalFound: %v", decoded["totalFound"])
	}
	if _, ok := decoded["searchCriteria"]; !ok {
		t.Error("expected searchCriteria key")
	}
}

func TestWriteExports(t *testing.T) {
	dir := t.TempDir()

	t.Run("markdown", func(t *testing.T) {
		path := filepath.Join(dir, "out.md")
		written, err := WriteMarkdownExport(sampleResult(), path)
		if err != nil {
			t.Fatalf("failed to write markdown: %v", err)
		}
		if written != path {
			t.Errorf("expected path %s, got %s", path, written)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if !strings.Contains(string(data), "# Playlist Search Results") {
			t.Error("expected markdown title")
		}
	})

	t.Run("text", func(t *testing.T) {
		path := filepath.Join(dir, "out.txt")
		if _, err := WriteTextExport(sampleResult(), path); err != nil {
			t.Fatalf("failed to write text: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected file to exist: %v", err)
		}
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "out.json")
		if _, err := WriteJSONExport(sampleResult(), path); err != nil {
			t.Fatalf("failed to write JSON: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if !json.Valid(data) {
			t.Error("expected valid JSON file")
		}
	})

	t.Run("default filenames use the timestamp", func(t *testing.T) {
		cwd, _ := os.Getwd()
		os.Chdir(dir)
		defer os.Chdir(cwd)

		path, err := WriteTextExport(sampleResult(), "")
		if err != nil {
			t.Fatalf("failed to write text: %v", err)
		}
		if path != "results_20250101_120000.txt" {
			t.Errorf("unexpected default filename %s", path)
		}
	})
}
