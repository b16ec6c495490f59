package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotify-import/internal/formatter"
	"github.com/desertthunder/spotify-import/internal/models"
	"github.com/desertthunder/spotify-import/internal/services"
	"github.com/desertthunder/spotify-import/internal/shared"
)

// importChunkSize is the Spotify cap on URIs added per request.
const importChunkSize = 100

// MatchCache is the subset of the search cache repository the engine needs.
// A nil cache disables caching entirely.
type MatchCache interface {
	Get(query string) (*models.TrackMatch, error)
	Put(query string, match *models.TrackMatch) error
}

// ImportOpts configures one engine run.
type ImportOpts struct {
	PlaylistID string
	Apply      bool      // POST matched URIs to the playlist; false is a dry run
	Output     io.Writer // CSV destination, typically stdout
}

// ImportResult summarizes an engine run.
type ImportResult struct {
	RunID    string
	Total    int
	Matched  int
	Imported int
}

// ImportEngine resolves songs against the Spotify catalog, reports matches as
// CSV, and optionally appends the matched URIs to a playlist.
type ImportEngine struct {
	svc    services.Service
	cache  MatchCache
	logger *log.Logger
}

// NewImportEngine creates an engine. cache may be nil.
func NewImportEngine(svc services.Service, cache MatchCache, logger *log.Logger) *ImportEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ImportEngine{svc: svc, cache: cache, logger: logger}
}

// Run processes songs sequentially: each is searched (cache first), written
// as a CSV row, and, when Apply is set, the matched URIs are POSTed to the
// playlist in chunks of 100. A failed search that is not a miss aborts the
// run; no partially imported state is rolled back.
func (e *ImportEngine) Run(ctx context.Context, songs []models.Song, opts ImportOpts) (*ImportResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrNotAuthenticated)
	}
	if opts.Output == nil {
		return nil, fmt.Errorf("%w: nil output writer", shared.ErrInvalidArgument)
	}

	result := &ImportResult{RunID: shared.GenerateID(), Total: len(songs)}
	writer := formatter.NewMatchWriter(opts.Output)

	var uris []string
	for _, song := range songs {
		match, err := e.resolve(ctx, song)
		if err != nil {
			return nil, err
		}

		if err := writer.Write(match); err != nil {
			return nil, err
		}

		if match.Found {
			result.Matched++
			uris = append(uris, match.URI)
		}
	}

	if err := writer.Flush(); err != nil {
		return nil, err
	}

	if !opts.Apply {
		return result, nil
	}

	for _, batch := range chunk(uris, importChunkSize) {
		if err := e.svc.AddPlaylistTracks(ctx, opts.PlaylistID, batch); err != nil {
			return nil, err
		}
		result.Imported += len(batch)
		e.logger.Infof("added %d/%d tracks to playlist %s", result.Imported, len(uris), opts.PlaylistID)
	}

	return result, nil
}

// resolve finds the best catalog match for a song, consulting the cache
// before the API. A catalog miss is a valid outcome, not an error.
func (e *ImportEngine) resolve(ctx context.Context, song models.Song) (*models.TrackMatch, error) {
	query := song.SearchQuery()
	title := models.NormalizeTitle(song.Title)

	if e.cache != nil {
		if cached, err := e.cache.Get(query); err == nil {
			cached.Title = song.Title
			cached.Artist = song.Artist
			return cached, nil
		}
	}

	track, err := e.svc.SearchTrack(ctx, query)
	if err != nil {
		if errors.Is(err, shared.ErrTrackNotFound) {
			return &models.TrackMatch{Title: song.Title, Artist: song.Artist}, nil
		}
		return nil, err
	}

	match := &models.TrackMatch{
		Title:         song.Title,
		Artist:        song.Artist,
		MatchedTitle:  track.Name,
		MatchedArtist: track.FirstArtist(),
		Distance:      levenshtein.ComputeDistance(title, track.Name),
		URI:           track.URI,
		Found:         true,
	}

	if e.cache != nil {
		if err := e.cache.Put(query, match); err != nil {
			e.logger.Warnf("failed to cache match for %q: %v", query, err)
		}
	}

	return match, nil
}

// chunk splits items into successive slices of at most size elements.
func chunk(items []string, size int) [][]string {
	var batches [][]string
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}
