package repositories

import (
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func testResult(genres []string, totalFound int) *models.SearchResult {
	return &models.SearchResult{
		TotalFound: totalFound,
		Criteria: models.SearchCriteria{
			Genres:       genres,
			MinFollowers: 1000,
			Limit:        25,
		},
		Timestamp: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSearchRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchRepository(db)
		record := models.NewSearchRecord(testResult([]string{"rock", "jazz"}, 12))

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}

		if record.ID() == "" {
			t.Error("record ID should be set after creation")
		}
		if record.Sequence() == 0 {
			t.Error("record sequence should be set after creation")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchRepository(db)
		record := models.NewSearchRecord(testResult([]string{"rock", "jazz"}, 12))

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}

		retrieved, err := repo.Get(record.ID())
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}

		if retrieved.ID() != record.ID() {
			t.Errorf("expected ID %s, got %s", record.ID(), retrieved.ID())
		}
		if !reflect.DeepEqual(retrieved.Genres(), []string{"rock", "jazz"}) {
			t.Errorf("expected genres round trip, got %v", retrieved.Genres())
		}
		if retrieved.MinFollowers() != 1000 || retrieved.Limit() != 25 || retrieved.TotalFound() != 12 {
			t.Errorf("unexpected columns: %+v", retrieved)
		}
	})

	t.Run("Get missing record", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchRepository(db)

		_, err := repo.Get("nope")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchRepository(db)

		for i, genres := range [][]string{{"rock"}, {"jazz"}, {"ambient"}} {
			result := testResult(genres, i)
			result.Timestamp = result.Timestamp.Add(time.Duration(i) * time.Minute)
			if err := repo.Create(models.NewSearchRecord(result)); err != nil {
				t.Fatalf("failed to create record %d: %v", i, err)
			}
		}

		t.Run("newest first", func(t *testing.T) {
			records, err := repo.List(10)
			if err != nil {
				t.Fatalf("failed to list records: %v", err)
			}

			if len(records) != 3 {
				t.Fatalf("expected 3 records, got %d", len(records))
			}
			if records[0].Genres()[0] != "ambient" {
				t.Errorf("expected newest record first, got %v", records[0].Genres())
			}
		})

		t.Run("respects limit", func(t *testing.T) {
			records, err := repo.List(2)
			if err != nil {
				t.Fatalf("failed to list records: %v", err)
			}
			if len(records) != 2 {
				t.Errorf("expected 2 records, got %d", len(records))
			}
		})

		t.Run("non-positive limit returns all", func(t *testing.T) {
			records, err := repo.List(0)
			if err != nil {
				t.Fatalf("failed to list records: %v", err)
			}
			if len(records) != 3 {
				t.Errorf("expected 3 records, got %d", len(records))
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchRepository(db)
		record := models.NewSearchRecord(testResult([]string{"rock"}, 1))

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}

		if err := repo.Delete(record.ID()); err != nil {
			t.Fatalf("failed to delete record: %v", err)
		}

		if _, err := repo.Get(record.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected record gone, got %v", err)
		}

		t.Run("deleting again fails", func(t *testing.T) {
			if err := repo.Delete(record.ID()); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	})

	t.Run("sequences increment", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchRepository(db)

		first := models.NewSearchRecord(testResult([]string{"rock"}, 1))
		second := models.NewSearchRecord(testResult([]string{"jazz"}, 2))

		repo.Create(first)
		repo.Create(second)

		if second.Sequence() != first.Sequence()+1 {
			t.Errorf("expected consecutive sequences, got %d then %d", first.Sequence(), second.Sequence())
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "searches")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}
}
