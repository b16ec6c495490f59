package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/spotify-import/internal/repositories"
	"github.com/desertthunder/spotify-import/internal/shared"
	"github.com/urfave/cli/v3"
)

// withCacheRepo opens the configured cache database and hands the repository
// to fn, closing the connection afterwards.
func (r *Runner) withCacheRepo(cmd *cli.Command, fn func(*repositories.SearchCacheRepository) error) error {
	r.reloadConfig(cmd)

	if r.config.Database.Path == "" {
		return fmt.Errorf("%w: no database path configured", shared.ErrInvalidConfig)
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer func(db *sql.DB) { db.Close() }(db)

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	return fn(repositories.NewSearchCacheRepository(db))
}

// CacheStats reports the number of cached search results.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	return r.withCacheRepo(cmd, func(repo *repositories.SearchCacheRepository) error {
		count, err := repo.Count()
		if err != nil {
			return err
		}

		r.writePlain("%s\n", r.styles.Title("Search cache"))
		r.writePlain("Database: %s\n", r.config.Database.Path)
		r.writePlain("Cached matches: %d\n", count)
		return nil
	})
}

// CacheClear removes every cached search result.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	return r.withCacheRepo(cmd, func(repo *repositories.SearchCacheRepository) error {
		if err := repo.Clear(); err != nil {
			return err
		}

		r.writePlain("%s\n", r.styles.OK("✓ Search cache cleared"))
		return nil
	})
}
