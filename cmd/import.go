package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotify-import/internal/models"
	"github.com/desertthunder/spotify-import/internal/repositories"
	"github.com/desertthunder/spotify-import/internal/shared"
	"github.com/desertthunder/spotify-import/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Import resolves each song in the input file against Spotify, writes CSV
// match rows to stdout, and with --import adds the matches to the playlist.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	playlistID := cmd.StringArg("playlist")
	filePath := cmd.StringArg("file")
	if playlistID == "" || filePath == "" {
		return fmt.Errorf("%w: usage: spotify-import import <playlist> <file>", shared.ErrMissingArgument)
	}

	// Parse the input before any network activity so a malformed file fails
	// fast.
	data, err := shared.VerifyAndReadFile(filePath)
	if err != nil {
		return err
	}

	songs, err := models.ParseSongs(data)
	if err != nil {
		return err
	}

	svc, err := r.resolveService(ctx, cmd)
	if err != nil {
		return err
	}

	r.logger.Info("loading user info...")
	me, err := svc.Me(ctx)
	if err != nil {
		return err
	}
	r.logger.Infof("logged in as %s (%s)", me.DisplayName, me.ID)

	// Validate the target before the search loop so a bad playlist ID fails
	// ahead of N catalog searches.
	playlist, err := svc.Playlist(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrPlaylistNotFound, playlistID, err)
	}
	r.logger.Infof("importing into %s (%d tracks)", playlist.Name, playlist.Tracks.Total)

	cache, closeCache, err := r.openCache(cmd)
	if err != nil {
		r.logger.Warnf("search cache unavailable: %v", err)
	}
	if closeCache != nil {
		defer closeCache()
	}

	engine := tasks.NewImportEngine(svc, cache, shared.WithLogger(r.logger, "playlist", playlistID))
	result, err := engine.Run(ctx, songs, tasks.ImportOpts{
		PlaylistID: playlistID,
		Apply:      cmd.Bool("import"),
		Output:     r.output,
	})
	if err != nil {
		return err
	}

	summary := fmt.Sprintf("matched %d/%d songs", result.Matched, result.Total)
	if cmd.Bool("import") {
		summary += fmt.Sprintf(", imported %d to playlist %s", result.Imported, playlistID)
	}
	r.logger.Info(summary, "run", result.RunID)

	return nil
}

// openCache opens the configured search cache. Returns a nil cache (and nil
// error) when caching is disabled by config or flag.
func (r *Runner) openCache(cmd *cli.Command) (tasks.MatchCache, func(), error) {
	if cmd.Bool("no-cache") || r.config.Database.Path == "" {
		return nil, nil, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, err
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, err
	}

	return repositories.NewSearchCacheRepository(db), func() { db.Close() }, nil
}
