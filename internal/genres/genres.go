// Package genres caches the catalog's genre taxonomy and validates search input against it.
package genres

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a fetched genre list is considered fresh.
const DefaultTTL = time.Hour

// Fetcher retrieves genre labels from the upstream catalog.
type Fetcher func(ctx context.Context) ([]string, error)

// Cache is a single-slot, time-boxed cache of the available genre labels.
//
// A refresh failure never fails a caller that has seen a previous value: the
// stale list is served instead. Refreshes run under a [singleflight.Group] so
// concurrent callers with an expired slot share one fetch.
type Cache struct {
	fetch  Fetcher
	ttl    time.Duration
	now    func() time.Time
	logger *log.Logger

	mu        sync.Mutex
	labels    []string
	expiry    time.Time
	populated bool
	group     singleflight.Group
}

// NewCache creates a genre cache around the given fetcher.
//
// A nil fetcher serves the curated fallback list. The clock defaults to
// [time.Now] and the TTL to [DefaultTTL].
func NewCache(fetch Fetcher, ttl time.Duration, now func() time.Time, logger *log.Logger) *Cache {
	if fetch == nil {
		fetch = func(context.Context) ([]string, error) {
			return FallbackSeeds(), nil
		}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Cache{fetch: fetch, ttl: ttl, now: now, logger: logger}
}

// Available returns the sorted genre labels, fetching on a cold or expired slot.
//
// On fetch failure the previous value is served even when expired; an error
// is returned only when no value has ever been cached.
func (c *Cache) Available(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	if c.populated && c.now().Before(c.expiry) {
		labels := c.labels
		c.mu.Unlock()
		return labels, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do("genres", func() (any, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}

	return v.([]string), nil
}

// refresh fetches a fresh label list and stores it, falling back to the stale
// slot when the fetch fails.
func (c *Cache) refresh(ctx context.Context) ([]string, error) {
	labels, err := c.fetch(ctx)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.populated {
			c.logger.Warn("genre refresh failed, serving stale list", "error", err, "cached", len(c.labels))
			return c.labels, nil
		}
		return nil, fmt.Errorf("failed to fetch genres: %w", err)
	}

	sorted := models.NormalizeGenres(labels)
	sort.Strings(sorted)

	c.mu.Lock()
	c.labels = sorted
	c.expiry = c.now().Add(c.ttl)
	c.populated = true
	c.mu.Unlock()

	return sorted, nil
}

// Clear empties the cache so the next call fetches fresh labels.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.labels = nil
	c.expiry = time.Time{}
	c.populated = false
	c.mu.Unlock()
}

// Validation is the outcome of checking requested genres against the taxonomy.
type Validation struct {
	IsValid bool
	Valid   []string
	Invalid []string
	Err     string
}

// Validate partitions the input labels into valid and invalid sets.
//
// Empty input and input over [models.MaxGenres] are terminal validation
// failures and never touch the cache. Labels are trimmed and lower-cased
// before the case-insensitive membership check.
func (c *Cache) Validate(ctx context.Context, input []string) (Validation, error) {
	if len(input) == 0 {
		return Validation{Err: "at least one genre is required"}, nil
	}
	if len(input) > models.MaxGenres {
		return Validation{Err: fmt.Sprintf("a maximum of %d genres is allowed, got %d", models.MaxGenres, len(input))}, nil
	}

	available, err := c.Available(ctx)
	if err != nil {
		return Validation{}, err
	}

	known := make(map[string]struct{}, len(available))
	for _, label := range available {
		known[label] = struct{}{}
	}

	result := Validation{}
	for _, label := range models.NormalizeGenres(input) {
		if _, ok := known[label]; ok {
			result.Valid = append(result.Valid, label)
		} else {
			result.Invalid = append(result.Invalid, label)
		}
	}

	if len(result.Valid) == 0 && len(result.Invalid) == 0 {
		return Validation{Err: "at least one genre is required"}, nil
	}

	result.IsValid = len(result.Invalid) == 0
	if !result.IsValid {
		result.Err = fmt.Sprintf("unknown genres: %v", result.Invalid)
	}

	return result, nil
}
