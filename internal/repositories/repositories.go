// package repositories provides the persistence layer for cached search
// results.
//
// The cache stores only successful matches; a query with no row simply means
// the track has not been looked up yet.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotify-import/internal/models"
	"github.com/desertthunder/spotify-import/internal/shared"
)

// SearchCacheRepository persists resolved track matches keyed by search query
// so repeated runs skip catalog searches they have already performed.
type SearchCacheRepository struct {
	db *sql.DB
}

// NewSearchCacheRepository creates a repository backed by the given database.
func NewSearchCacheRepository(db *sql.DB) *SearchCacheRepository {
	return &SearchCacheRepository{db: db}
}

// Get retrieves a cached match for the query. Returns shared.ErrTrackNotFound
// when the query has no cached row.
func (r *SearchCacheRepository) Get(query string) (*models.TrackMatch, error) {
	row := r.db.QueryRow(`
		SELECT title, artist, uri, distance FROM search_cache WHERE query = ?
	`, query)

	var match models.TrackMatch
	err := row.Scan(&match.MatchedTitle, &match.MatchedArtist, &match.URI, &match.Distance)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no cached match for %q", shared.ErrTrackNotFound, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read search cache: %w", err)
	}

	match.Found = true
	return &match, nil
}

// Put caches a successful match for the query. Re-caching the same query is
// a no-op (UNIQUE constraint, kept silent like any other duplicate insert).
func (r *SearchCacheRepository) Put(query string, match *models.TrackMatch) error {
	if !match.Found {
		return fmt.Errorf("%w: refusing to cache a miss", shared.ErrInvalidArgument)
	}

	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO search_cache (id, query, uri, title, artist, distance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, shared.GenerateID(), query, match.URI, match.MatchedTitle, match.MatchedArtist, match.Distance, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to cache match: %w", err)
	}

	return nil
}

// Count returns the number of cached matches.
func (r *SearchCacheRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM search_cache").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count search cache: %w", err)
	}
	return count, nil
}

// Clear removes every cached match.
func (r *SearchCacheRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM search_cache"); err != nil {
		return fmt.Errorf("failed to clear search cache: %w", err)
	}
	return nil
}
