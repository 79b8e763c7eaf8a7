package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/reelpick/internal/repositories"
	"github.com/desertthunder/reelpick/internal/shared"
	"github.com/urfave/cli/v3"
)

// withCache opens the configured poster cache for the duration of fn.
func (r *Runner) withCache(ctx context.Context, fn func(repositories.PosterStore) error) error {
	store, closer, err := repositories.OpenPosterStore(ctx, r.config)
	if err != nil {
		return fmt.Errorf("failed to open poster cache: %w", err)
	}
	defer closer.Close()

	if store == nil {
		return fmt.Errorf("%w: set cache.backend to sqlite or redis", shared.ErrCacheDisabled)
	}
	return fn(store)
}

// CacheStats prints entry and byte counts for the poster cache.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	return r.withCache(ctx, func(store repositories.PosterStore) error {
		stats, err := store.Stats(ctx)
		if err != nil {
			return fmt.Errorf("failed to read cache stats: %w", err)
		}

		if cmd.Bool("json") {
			return r.writeJSON(map[string]any{
				"backend": r.config.Cache.Backend,
				"entries": stats.Entries,
				"bytes":   stats.Bytes,
			}, false)
		}

		r.writePlainHeader("Poster cache")
		r.writePlain("Backend: %s\n", r.config.Cache.Backend)
		r.writePlain("Entries: %d\n", stats.Entries)
		r.writePlain("Bytes:   %d\n", stats.Bytes)
		return nil
	})
}

// CacheClear removes every cached poster.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	return r.withCache(ctx, func(store repositories.PosterStore) error {
		n, err := store.Clear(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		r.logger.Info("cache cleared", "backend", r.config.Cache.Backend, "removed", n)
		return r.writePlain("✓ Removed %d posters\n", n)
	})
}

// CachePrune removes expired posters from the sqlite cache.
func (r *Runner) CachePrune(ctx context.Context, cmd *cli.Command) error {
	return r.withCache(ctx, func(store repositories.PosterStore) error {
		repo, ok := store.(*repositories.PosterRepository)
		if !ok {
			return fmt.Errorf("%w: prune needs the sqlite backend, not %q", shared.ErrNotImplemented, r.config.Cache.Backend)
		}

		n, err := repo.Prune(ctx)
		if err != nil {
			return fmt.Errorf("failed to prune cache: %w", err)
		}
		return r.writePlain("✓ Pruned %d expired posters\n", n)
	})
}
