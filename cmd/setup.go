package main

import (
	"context"
	"os"

	"github.com/desertthunder/spotify-import/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a starter config.toml and initializes the search cache
// database with migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		r.writePlain("%s\n", r.styles.Warn("config file already exists, leaving it untouched"))
	} else {
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("%s\n", r.styles.OK("✓ Wrote "+configPath))
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if cid := cmd.String("client-id"); cid != "" && cid != config.Credentials.Spotify.ClientID {
		config.Credentials.Spotify.ClientID = cid
		if err := shared.SaveConfig(configPath, config); err != nil {
			return err
		}
		r.writePlain("%s\n", r.styles.OK("✓ Saved client ID to "+configPath))
	}

	r.config = config

	if config.Database.Path == "" {
		r.writePlain("No database path configured, skipping cache setup\n")
		return nil
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	r.writePlain("%s\n", r.styles.OK("✓ Search cache ready at "+config.Database.Path))
	r.writePlain("%s\n", r.styles.Help("Next: spotify-import import <playlist> <file>"))

	return nil
}
