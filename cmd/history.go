package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList lists recent searches from the local database.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	limit := int(cmd.Int("limit"))
	useJSON := cmd.Bool("json")

	history, db, err := r.openHistory()
	if err != nil {
		return err
	}
	if history == nil {
		return fmt.Errorf("%w: no database found, run 'crate setup database' first", shared.ErrMissingConfig)
	}
	defer db.Close()

	records, err := history.List(limit)
	if err != nil {
		return err
	}

	if useJSON {
		entries := make([]map[string]any, 0, len(records))
		for _, record := range records {
			entries = append(entries, map[string]any{
				"id":           record.ID(),
				"genres":       record.Genres(),
				"minFollowers": record.MinFollowers(),
				"limit":        record.Limit(),
				"totalFound":   record.TotalFound(),
				"createdAt":    record.CreatedAt().Format(time.RFC3339),
			})
		}
		return r.writeJSON(entries, true)
	}

	r.writePlainHeader(fmt.Sprintf("%d recent searches", len(records)))
	for _, record := range records {
		r.writePlain("%s  %s\n", record.CreatedAt().Format("2006-01-02 15:04"), strings.Join(record.Genres(), ", "))
		r.writePlain("  found %d (min followers %d, limit %d)  id=%s\n", record.TotalFound(), record.MinFollowers(), record.Limit(), record.ID())
	}

	return nil
}

// HistoryDelete removes one search history entry by ID.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: history entry id", shared.ErrMissingArgument)
	}

	history, db, err := r.openHistory()
	if err != nil {
		return err
	}
	if history == nil {
		return fmt.Errorf("%w: no database found, run 'crate setup database' first", shared.ErrMissingConfig)
	}
	defer db.Close()

	if err := history.Delete(id); err != nil {
		return err
	}

	r.writePlain("Deleted search %s\n", id)
	return nil
}
