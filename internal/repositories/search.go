package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// SearchRepository implements models.Repository[*models.SearchRecord] for search history.
type SearchRepository struct {
	db *sql.DB
}

// NewSearchRepository creates a new SearchRepository with the given database connection
func NewSearchRepository(db *sql.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Create inserts a new search record into the database with generated ID and sequence
func (r *SearchRepository) Create(record *models.SearchRecord) error {
	sequence, err := NextSequence(r.db, "searches")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	record.SetID(id)
	record.SetSequence(sequence)

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO searches (id, sequence, genres, min_followers, result_limit, total_found, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		record.GenresColumn(),
		record.MinFollowers(),
		record.Limit(),
		record.TotalFound(),
		record.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert search record: %w", err)
	}

	return nil
}

// Get retrieves a search record by ID
func (r *SearchRepository) Get(id string) (*models.SearchRecord, error) {
	query := `
		SELECT id, sequence, genres, min_followers, result_limit, total_found, created_at
		FROM searches
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// List retrieves the most recent search records, newest first.
// A non-positive limit returns everything.
func (r *SearchRepository) List(limit int) ([]*models.SearchRecord, error) {
	query := `
		SELECT id, sequence, genres, min_followers, result_limit, total_found, created_at
		FROM searches
		ORDER BY created_at DESC, sequence DESC
	`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query search records: %w", err)
	}
	defer rows.Close()

	var records []*models.SearchRecord
	for rows.Next() {
		record, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Delete removes a search record by ID
func (r *SearchRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM searches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete search record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: search record %s", shared.ErrNotFound, id)
	}

	return nil
}

// scanOne scans a single row into a [models.SearchRecord]
func (r *SearchRepository) scanOne(row *sql.Row) (*models.SearchRecord, error) {
	var (
		id           string
		sequence     int
		genres       string
		minFollowers int
		resultLimit  int
		totalFound   int
		createdAt    time.Time
	)

	err := row.Scan(&id, &sequence, &genres, &minFollowers, &resultLimit, &totalFound, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: search record", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan search record: %w", err)
	}

	return models.RestoreSearchRecord(id, sequence, genres, minFollowers, resultLimit, totalFound, createdAt), nil
}

// scanRow scans a row from [sql.Rows] into a [models.SearchRecord]
func (r *SearchRepository) scanRow(rows *sql.Rows) (*models.SearchRecord, error) {
	var (
		id           string
		sequence     int
		genres       string
		minFollowers int
		resultLimit  int
		totalFound   int
		createdAt    time.Time
	)

	err := rows.Scan(&id, &sequence, &genres, &minFollowers, &resultLimit, &totalFound, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan search record: %w", err)
	}

	return models.RestoreSearchRecord(id, sequence, genres, minFollowers, resultLimit, totalFound, createdAt), nil
}
