package models

import (
	"fmt"
	"strings"
	"time"
)

// Model defines the base interface for persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error        // Create inserts a new model into the database
	Get(id string) (T, error)    // Get retrieves a model by its ID
	List(limit int) ([]T, error) // List retrieves the most recent models
	Delete(id string) error      // Delete removes a model from the database
}

// SearchRecord is a persisted log entry for one completed playlist search.
//
// Only the criteria and the result count are stored; playlists themselves are
// never persisted.
type SearchRecord struct {
	id           string
	sequence     int
	genres       []string
	minFollowers int
	limit        int
	totalFound   int
	createdAt    time.Time
}

// NewSearchRecord builds a record from a completed search result.
func NewSearchRecord(result *SearchResult) *SearchRecord {
	return &SearchRecord{
		genres:       result.Criteria.Genres,
		minFollowers: result.Criteria.MinFollowers,
		limit:        result.Criteria.Limit,
		totalFound:   result.TotalFound,
		createdAt:    result.Timestamp,
	}
}

// RestoreSearchRecord reconstructs a record from stored columns.
func RestoreSearchRecord(id string, sequence int, genres string, minFollowers, limit, totalFound int, createdAt time.Time) *SearchRecord {
	return &SearchRecord{
		id:           id,
		sequence:     sequence,
		genres:       splitGenres(genres),
		minFollowers: minFollowers,
		limit:        limit,
		totalFound:   totalFound,
		createdAt:    createdAt,
	}
}

func (r *SearchRecord) ID() string           { return r.id }
func (r *SearchRecord) Sequence() int        { return r.sequence }
func (r *SearchRecord) Genres() []string     { return r.genres }
func (r *SearchRecord) MinFollowers() int    { return r.minFollowers }
func (r *SearchRecord) Limit() int           { return r.limit }
func (r *SearchRecord) TotalFound() int      { return r.totalFound }
func (r *SearchRecord) CreatedAt() time.Time { return r.createdAt }

func (r *SearchRecord) SetID(id string)     { r.id = id }
func (r *SearchRecord) SetSequence(seq int) { r.sequence = seq }

// GenresColumn returns the comma-joined form stored in the database.
func (r *SearchRecord) GenresColumn() string {
	return strings.Join(r.genres, ",")
}

// Validate checks if the record's data is valid.
func (r *SearchRecord) Validate() error {
	if r.id == "" {
		return fmt.Errorf("search record requires an id")
	}
	if len(r.genres) == 0 {
		return fmt.Errorf("search record requires at least one genre")
	}
	if r.totalFound < 0 {
		return fmt.Errorf("total found cannot be negative")
	}
	return nil
}

func splitGenres(column string) []string {
	if column == "" {
		return nil
	}
	return strings.Split(column, ",")
}
