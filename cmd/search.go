package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search runs a playlist search from the command line.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	genreLabels := cmd.StringSlice("genres")
	minFollowers := int(cmd.Int("min-followers"))
	limit := int(cmd.Int("limit"))
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	saveFormat := cmd.String("save")
	noHistory := cmd.Bool("no-history")

	if r.catalog == nil {
		return fmt.Errorf("%w: set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET or fill in config.toml", shared.ErrMissingCredentials)
	}
	if len(genreLabels) == 0 {
		return fmt.Errorf("%w: at least one --genres value is required", shared.ErrMissingArgument)
	}

	criteria := models.NewSearchCriteria(genreLabels, minFollowers, limit)

	r.logger.Info("searching playlists", "genres", criteria.Genres, "min_followers", criteria.MinFollowers, "limit", criteria.Limit)

	result, err := r.orchestrator.Search(ctx, criteria)
	if err != nil {
		return err
	}

	if !noHistory {
		r.recordSearch(result)
	}

	if saveFormat != "" {
		if err := r.saveResult(result, saveFormat); err != nil {
			return err
		}
	}

	if useJSON {
		return r.writeJSON(result, pretty)
	}

	return r.printResult(result)
}

// recordSearch appends the search to the local history when the database
// exists. Failures are logged, never fatal.
func (r *Runner) recordSearch(result *models.SearchResult) {
	history, db, err := r.openHistory()
	if err != nil {
		r.logger.Warn("failed to open search history", "error", err)
		return
	}
	if history == nil {
		return
	}
	defer db.Close()

	if err := history.Create(models.NewSearchRecord(result)); err != nil {
		r.logger.Warn("failed to record search", "error", err)
	}
}

// saveResult writes the result to a file in the requested format.
func (r *Runner) saveResult(result *models.SearchResult, format string) error {
	var path string
	var err error

	switch strings.ToLower(format) {
	case "md", "markdown":
		path, err = formatter.WriteMarkdownExport(result, "")
	case "txt", "text":
		path, err = formatter.WriteTextExport(result, "")
	case "json":
		path, err = formatter.WriteJSONExport(result, "")
	default:
		return fmt.Errorf("%w: unknown save format %q (use md, txt, or json)", shared.ErrInvalidArgument, format)
	}

	if err != nil {
		return err
	}

	r.writePlain("Results saved to %s\n", path)
	return nil
}

// printResult renders the result as a ranked plain-text listing.
func (r *Runner) printResult(result *models.SearchResult) error {
	r.writePlainHeader(fmt.Sprintf("Found %d playlists for: %s", result.TotalFound, strings.Join(result.Criteria.Genres, ", ")))

	for i, playlist := range result.Playlists {
		r.writePlain("%3d. %s\n", i+1, playlist.Name)
		r.writePlain("     %d followers • %d tracks • by %s\n", playlist.Followers, playlist.TrackCount, playlist.Owner.DisplayName)
		r.writePlain("     %s\n", playlist.URL)
	}

	failed := 0
	for _, outcome := range result.Outcomes {
		if outcome.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		r.writePlainln("Note: %d of %d genre searches failed; results may be incomplete.", failed, len(result.Outcomes))
	}

	return nil
}

// Genres lists the available genre taxonomy.
func (r *Runner) Genres(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	labels, err := r.cache.Available(ctx)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(map[string]any{"genres": labels, "count": len(labels)}, pretty)
	}

	r.writePlainHeader(fmt.Sprintf("%d available genres", len(labels)))
	for _, label := range labels {
		r.writePlain("%s\n", label)
	}

	return nil
}
