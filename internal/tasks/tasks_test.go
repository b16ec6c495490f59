package tasks

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/desertthunder/spotify-import/internal/models"
	"github.com/desertthunder/spotify-import/internal/services"
	"github.com/desertthunder/spotify-import/internal/shared"
	testutil "github.com/desertthunder/spotify-import/internal/testing"
)

func TestChunk(t *testing.T) {
	t.Run("Splits Into Batches", func(t *testing.T) {
		items := make([]string, 250)
		for i := range items {
			items[i] = fmt.Sprintf("uri%d", i)
		}

		batches := chunk(items, 100)
		if len(batches) != 3 {
			t.Fatalf("expected 3 batches, got %d", len(batches))
		}
		if len(batches[0]) != 100 || len(batches[1]) != 100 || len(batches[2]) != 50 {
			t.Errorf("unexpected batch sizes %d/%d/%d", len(batches[0]), len(batches[1]), len(batches[2]))
		}
		if batches[2][49] != "uri249" {
			t.Errorf("expected last item preserved, got %s", batches[2][49])
		}
	})

	t.Run("Empty Input", func(t *testing.T) {
		if batches := chunk(nil, 100); len(batches) != 0 {
			t.Errorf("expected no batches, got %d", len(batches))
		}
	})
}

func TestImportEngine(t *testing.T) {
	songs := []models.Song{
		{Title: "One More Time", Artist: "Daft Punk"},
		{Title: "Unknown Song", Artist: "Nobody"},
		{Title: "Dreams (2004 Remaster)", Artist: "Fleetwood Mac"},
	}

	svc := &testutil.MockService{
		Searches: map[string]*services.SpotifyTrack{
			"Daft Punk One More Time": {
				Name:    "One More Time",
				URI:     "spotify:track:1",
				Artists: []services.SpotifyArtist{{Name: "Daft Punk"}},
			},
			"Fleetwood Mac Dreams": {
				Name:    "Dreams",
				URI:     "spotify:track:2",
				Artists: []services.SpotifyArtist{{Name: "Fleetwood Mac"}},
			},
		},
	}

	logger := shared.NewLogger(io.Discard)

	t.Run("Dry Run Writes Rows Without Importing", func(t *testing.T) {
		var out bytes.Buffer
		engine := NewImportEngine(svc, nil, logger)

		result, err := engine.Run(context.Background(), songs, ImportOpts{
			PlaylistID: "p1",
			Apply:      false,
			Output:     &out,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Total != 3 || result.Matched != 2 || result.Imported != 0 {
			t.Errorf("unexpected result %+v", result)
		}
		if len(svc.Added) != 0 {
			t.Errorf("dry run must not add tracks, got %v", svc.Added)
		}

		reader := csv.NewReader(&out)
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		if err != nil {
			t.Fatalf("output is not CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(records))
		}

		// Hit, miss, hit, in input order.
		if len(records[0]) != 5 || records[0][2] != "One More Time" {
			t.Errorf("unexpected first row %v", records[0])
		}
		if len(records[1]) != 4 {
			t.Errorf("expected miss row, got %v", records[1])
		}
		if records[2][0] != "Dreams" {
			t.Errorf("expected normalized title, got %v", records[2])
		}
	})

	t.Run("Apply Adds Matched URIs", func(t *testing.T) {
		var out bytes.Buffer
		applySvc := &testutil.MockService{Searches: svc.Searches}
		engine := NewImportEngine(applySvc, nil, logger)

		result, err := engine.Run(context.Background(), songs, ImportOpts{
			PlaylistID: "p1",
			Apply:      true,
			Output:     &out,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Imported != 2 {
			t.Errorf("expected 2 imported, got %d", result.Imported)
		}
		if len(applySvc.Added) != 1 {
			t.Fatalf("expected a single batch, got %d", len(applySvc.Added))
		}
		if applySvc.Added[0][0] != "spotify:track:1" || applySvc.Added[0][1] != "spotify:track:2" {
			t.Errorf("unexpected batch %v", applySvc.Added[0])
		}
	})

	t.Run("Add Failure Aborts", func(t *testing.T) {
		var out bytes.Buffer
		failSvc := &testutil.MockService{
			Searches: svc.Searches,
			AddErr:   fmt.Errorf("%w: status 500", shared.ErrRetriesExhausted),
		}
		engine := NewImportEngine(failSvc, nil, logger)

		_, err := engine.Run(context.Background(), songs, ImportOpts{
			PlaylistID: "p1",
			Apply:      true,
			Output:     &out,
		})
		if !errors.Is(err, shared.ErrRetriesExhausted) {
			t.Errorf("expected add failure to surface, got %v", err)
		}
	})

	t.Run("Uses Cache Before Service", func(t *testing.T) {
		var out bytes.Buffer
		cache := &memoryCache{entries: map[string]*models.TrackMatch{
			"Nobody Unknown Song": {
				MatchedTitle:  "Unknown Song",
				MatchedArtist: "Nobody",
				URI:           "spotify:track:cached",
				Found:         true,
			},
		}}

		engine := NewImportEngine(&testutil.MockService{Searches: svc.Searches}, cache, logger)

		result, err := engine.Run(context.Background(), songs, ImportOpts{Output: &out})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		// The cached entry turns the miss into a hit, and the two live hits
		// get cached.
		if result.Matched != 3 {
			t.Errorf("expected 3 matches with cache hit, got %d", result.Matched)
		}
		if len(cache.entries) != 3 {
			t.Errorf("expected live matches cached, got %d entries", len(cache.entries))
		}
	})

	t.Run("Nil Output Is Rejected", func(t *testing.T) {
		engine := NewImportEngine(svc, nil, logger)
		if _, err := engine.Run(context.Background(), songs, ImportOpts{}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

// memoryCache is an in-memory MatchCache for engine tests.
type memoryCache struct {
	entries map[string]*models.TrackMatch
}

func (m *memoryCache) Get(query string) (*models.TrackMatch, error) {
	if match, ok := m.entries[query]; ok {
		copied := *match
		return &copied, nil
	}
	return nil, fmt.Errorf("%w: %q", shared.ErrTrackNotFound, query)
}

func (m *memoryCache) Put(query string, match *models.TrackMatch) error {
	copied := *match
	m.entries[query] = &copied
	return nil
}
