package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotify-import/internal/services"
	"github.com/desertthunder/spotify-import/internal/shared"
	testutil "github.com/desertthunder/spotify-import/internal/testing"
	"github.com/urfave/cli/v3"
)

func newTestRunner(svc services.Service, out io.Writer) *Runner {
	config := shared.DefaultConfig()
	config.Database.Path = "" // no cache in CLI tests

	return NewRunner(RunnerOpts{
		Config:  config,
		Service: svc,
		Logger:  shared.NewLogger(io.Discard),
		Output:  out,
	})
}

func runApp(t *testing.T, r *Runner, args ...string) error {
	t.Helper()

	app := &cli.Command{
		Name:     "spotify-import",
		Commands: r.register(),
	}

	return app.Run(context.Background(), append([]string{"spotify-import"}, args...))
}

func writeSongsFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "songs.json")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write songs file: %v", err)
	}
	return path
}

func TestImportCommand(t *testing.T) {
	songs := `[
		{"title": "One More Time", "artist": "Daft Punk"},
		{"title": "Missing", "artist": "Nobody"}
	]`

	svc := &testutil.MockService{
		Searches: map[string]*services.SpotifyTrack{
			"Daft Punk One More Time": {
				Name:    "One More Time",
				URI:     "spotify:track:1",
				Artists: []services.SpotifyArtist{{Name: "Daft Punk"}},
			},
		},
	}

	t.Run("Dry Run Writes CSV", func(t *testing.T) {
		var out bytes.Buffer
		r := newTestRunner(svc, &out)

		if err := runApp(t, r, "import", "playlist123", writeSongsFile(t, songs)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		reader := csv.NewReader(&out)
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		if err != nil {
			t.Fatalf("output is not CSV: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(records))
		}
		if records[0][2] != "One More Time" {
			t.Errorf("unexpected hit row %v", records[0])
		}
		if len(records[1]) != 4 {
			t.Errorf("expected miss row, got %v", records[1])
		}

		if len(svc.Added) != 0 {
			t.Errorf("dry run must not modify the playlist, got %v", svc.Added)
		}
	})

	t.Run("Import Flag Adds Tracks", func(t *testing.T) {
		var out bytes.Buffer
		applySvc := &testutil.MockService{Searches: svc.Searches}
		r := newTestRunner(applySvc, &out)

		if err := runApp(t, r, "import", "--import", "playlist123", writeSongsFile(t, songs)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(applySvc.Added) != 1 || applySvc.Added[0][0] != "spotify:track:1" {
			t.Errorf("expected tracks added, got %v", applySvc.Added)
		}
	})

	t.Run("Unknown Playlist Fails Before Search", func(t *testing.T) {
		var out bytes.Buffer
		badSvc := &testutil.MockService{
			Searches:    svc.Searches,
			PlaylistErr: fmt.Errorf("%w: GET playlists/missing after 3 attempts", shared.ErrRetriesExhausted),
		}
		r := newTestRunner(badSvc, &out)

		err := runApp(t, r, "import", "missing", writeSongsFile(t, songs))
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
		}
		if out.Len() != 0 {
			t.Errorf("expected no CSV rows for an unknown playlist, got %q", out.String())
		}
	})

	t.Run("Malformed Input Fails Before Network", func(t *testing.T) {
		var out bytes.Buffer
		// No service injected: any network path would try the browser flow
		// and hang, so reaching it at all is a failure.
		r := newTestRunner(nil, &out)
		r.config.Server.AuthTimeoutSeconds = 1

		err := runApp(t, r, "import", "playlist123", writeSongsFile(t, `{"not": "an array"`))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Missing Arguments", func(t *testing.T) {
		var out bytes.Buffer
		r := newTestRunner(svc, &out)

		if err := runApp(t, r, "import"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestSearchCommand(t *testing.T) {
	svc := &testutil.MockService{
		Searches: map[string]*services.SpotifyTrack{
			"daft punk": {Name: "One More Time", URI: "spotify:track:1"},
		},
	}

	t.Run("Prints Match As JSON", func(t *testing.T) {
		var out bytes.Buffer
		r := newTestRunner(svc, &out)

		if err := runApp(t, r, "search", "daft punk"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out.String(), "One More Time") {
			t.Errorf("expected track in output, got %s", out.String())
		}
	})

	t.Run("Miss Is Not An Error", func(t *testing.T) {
		var out bytes.Buffer
		r := newTestRunner(svc, &out)

		if err := runApp(t, r, "search", "unknown"); err != nil {
			t.Fatalf("expected no error for a miss, got %v", err)
		}
		if !strings.Contains(out.String(), "no match") {
			t.Errorf("expected miss message, got %s", out.String())
		}
	})

	t.Run("Missing Query", func(t *testing.T) {
		var out bytes.Buffer
		r := newTestRunner(svc, &out)

		if err := runApp(t, r, "search"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Write Failure Surfaces", func(t *testing.T) {
		r := newTestRunner(svc, &testutil.FWriter{})

		if err := runApp(t, r, "search", "daft punk"); err == nil {
			t.Error("expected an output write error")
		}
	})

	t.Run("Verbose Flag Enables Debug Logging", func(t *testing.T) {
		var out bytes.Buffer
		r := newTestRunner(svc, &out)

		if err := runApp(t, r, "search", "--verbose", "daft punk"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if r.logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", r.logger.GetLevel())
		}
	})
}

func TestSetupCommand(t *testing.T) {
	t.Run("Creates Config And Cache", func(t *testing.T) {
		var out bytes.Buffer
		r := newTestRunner(nil, &out)

		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := runApp(t, r, "setup", "--config", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Errorf("expected config file created: %v", err)
		}

		// The default database path is relative; clean it up if created.
		if r.config.Database.Path != "" {
			os.Remove(r.config.Database.Path)
		}
	})

	t.Run("Stores Custom Client ID", func(t *testing.T) {
		var out bytes.Buffer
		r := newTestRunner(nil, &out)

		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := runApp(t, r, "setup", "--config", configPath, "--client-id", "custom_id"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			t.Fatalf("saved config should parse: %v", err)
		}
		if loaded.Credentials.Spotify.ClientID != "custom_id" {
			t.Errorf("expected custom client ID persisted, got %s", loaded.Credentials.Spotify.ClientID)
		}

		if r.config.Database.Path != "" {
			os.Remove(r.config.Database.Path)
		}
	})
}
