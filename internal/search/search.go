// Package search implements the playlist search orchestrator.
//
// The orchestrator validates genre input, fans out one catalog search per
// genre, and aggregates the results: merge by playlist id, filter by the
// follower floor, sort, truncate. Individual genre failures degrade the
// result instead of aborting it; each genre's success or failure is recorded
// on a [models.GenreOutcome] so callers and tests can see how many of the
// fan-out's searches actually completed.
package search

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/genres"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
)

// Orchestrator coordinates genre validation, catalog fan-out, and result
// aggregation for playlist searches.
type Orchestrator struct {
	catalog services.Catalog
	genres  *genres.Cache
	logger  *log.Logger
	now     func() time.Time
}

// NewOrchestrator creates an orchestrator over the given catalog and genre cache.
func NewOrchestrator(catalog services.Catalog, cache *genres.Cache, logger *log.Logger, now func() time.Time) *Orchestrator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{catalog: catalog, genres: cache, logger: logger, now: now}
}

// Search runs a playlist search for the given criteria.
//
// Validation failures surface before any catalog call. After the fan-out
// settles, playlists are deduplicated by id (last write wins), filtered by
// the follower floor, sorted by followers descending with id ascending as
// the tiebreak, and truncated to the limit. TotalFound is the final playlist
// count, never the upstream-reported total.
func (o *Orchestrator) Search(ctx context.Context, criteria models.SearchCriteria) (*models.SearchResult, error) {
	if err := criteria.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	validation, err := o.genres.Validate(ctx, criteria.Genres)
	if err != nil {
		return nil, err
	}
	if validation.Err != "" && len(validation.Valid) == 0 && len(validation.Invalid) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrInvalidInput, validation.Err)
	}
	if !validation.IsValid {
		return nil, fmt.Errorf("%w: %s", shared.ErrInvalidInput, validation.Err)
	}

	criteria.Genres = validation.Valid

	perGenre := perGenreLimit(criteria.Limit, len(criteria.Genres))
	outcomes := o.fanOut(ctx, criteria.Genres, perGenre)

	merged := make(map[string]models.Playlist)
	for _, outcome := range outcomes {
		for _, playlist := range outcome.playlists {
			if playlist.Followers < criteria.MinFollowers {
				continue
			}
			merged[playlist.ID] = playlist
		}
	}

	playlists := make([]models.Playlist, 0, len(merged))
	for _, playlist := range merged {
		playlists = append(playlists, playlist)
	}

	sort.Slice(playlists, func(i, j int) bool {
		if playlists[i].Followers != playlists[j].Followers {
			return playlists[i].Followers > playlists[j].Followers
		}
		return playlists[i].ID < playlists[j].ID
	})

	if len(playlists) > criteria.Limit {
		playlists = playlists[:criteria.Limit]
	}

	result := &models.SearchResult{
		Playlists:  playlists,
		TotalFound: len(playlists),
		Criteria:   criteria,
		Timestamp:  o.now(),
	}
	for _, outcome := range outcomes {
		result.Outcomes = append(result.Outcomes, outcome.GenreOutcome)
	}

	return result, nil
}

// genreSearch pairs a genre's outcome with the playlists it contributed.
type genreSearch struct {
	models.GenreOutcome
	playlists []models.Playlist
}

// fanOut issues one catalog search per genre concurrently and joins on all of
// them. A failed genre contributes zero playlists and carries its error on
// the outcome; it never aborts the other searches.
func (o *Orchestrator) fanOut(ctx context.Context, genreLabels []string, limit int) []genreSearch {
	outcomes := make([]genreSearch, len(genreLabels))

	var wg sync.WaitGroup
	for i, genre := range genreLabels {
		wg.Add(1)
		go func(i int, genre string) {
			defer wg.Done()

			playlists, err := o.catalog.SearchPlaylistsByGenre(ctx, genre, limit)
			if err != nil {
				o.logger.Warn("genre search failed", "genre", genre, "error", err)
				outcomes[i] = genreSearch{GenreOutcome: models.GenreOutcome{Genre: genre, Err: err}}
				return
			}

			outcomes[i] = genreSearch{
				GenreOutcome: models.GenreOutcome{Genre: genre, Count: len(playlists)},
				playlists:    playlists,
			}
		}(i, genre)
	}
	wg.Wait()

	return outcomes
}

// perGenreLimit splits the overall limit across genres: ceil(limit / n),
// capped by the upstream page size inside the catalog client.
func perGenreLimit(limit, genreCount int) int {
	if genreCount <= 0 {
		return limit
	}
	return (limit + genreCount - 1) / genreCount
}
