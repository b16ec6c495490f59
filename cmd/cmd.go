// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func tokenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "token",
		Usage: "Spotify OAuth token (skips the browser authorization flow)",
	}
}

func verboseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "verbose",
		Usage: "Enable debug logging",
	}
}

// setupCommand initializes the config file and cache database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Write config.toml and initialize the search cache database",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "client-id",
				Usage: "Store a different Spotify application ID in the config file",
			},
		},
		Action: r.Setup,
	}
}

// authCommand runs the implicit OAuth flow standalone.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authorize with Spotify and print the captured access token",
		Flags:  []cli.Flag{configFlag(), verboseFlag()},
		Action: r.Auth,
	}
}

// importCommand resolves an import file and optionally populates a playlist.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Match a JSON song list against Spotify and write CSV rows to stdout",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "playlist"},
			&cli.StringArg{Name: "file"},
		},
		Flags: []cli.Flag{
			configFlag(),
			tokenFlag(),
			verboseFlag(),
			&cli.BoolFlag{
				Name:  "import",
				Usage: "Add matched tracks to the playlist instead of only writing CSV",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Skip the local search cache",
			},
		},
		Action: r.Import,
	}
}

// searchCommand performs a one-off track search for debugging mappings.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the Spotify catalog for a single track",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			configFlag(),
			tokenFlag(),
			verboseFlag(),
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Search,
	}
}

// playlistsCommand lists the authenticated user's playlists.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List your Spotify playlists",
		Flags: []cli.Flag{
			configFlag(),
			tokenFlag(),
			verboseFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Playlists,
	}
}

// cacheCommand manages the local search cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the local search cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cached match counts",
				Flags:  []cli.Flag{configFlag(), verboseFlag()},
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cached matches",
				Flags:  []cli.Flag{configFlag(), verboseFlag()},
				Action: r.CacheClear,
			},
		},
	}
}
