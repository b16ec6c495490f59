package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/spotify-import/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search performs a one-off catalog search and prints the best match.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: usage: spotify-import search <query>", shared.ErrMissingArgument)
	}

	svc, err := r.resolveService(ctx, cmd)
	if err != nil {
		return err
	}

	track, err := svc.SearchTrack(ctx, query)
	if err != nil {
		if errors.Is(err, shared.ErrTrackNotFound) {
			r.writePlain("%s\n", r.styles.Warn(fmt.Sprintf("no match for %q", query)))
			return nil
		}
		return err
	}

	return r.writeJSON(track, cmd.Bool("pretty"))
}

// Playlists lists the authenticated user's playlists.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	svc, err := r.resolveService(ctx, cmd)
	if err != nil {
		return err
	}

	playlists, err := svc.UserPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", r.styles.Title(fmt.Sprintf("Found %d playlists", len(playlists))))
	for i, p := range playlists {
		r.writePlain("%d. %s (%s), %d tracks\n", i+1, p.Name, p.ID, p.Tracks.Total)
	}

	return nil
}
