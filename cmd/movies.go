package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/reelpick/internal/formatter"
	"github.com/desertthunder/reelpick/internal/models"
	"github.com/desertthunder/reelpick/internal/pages"
	"github.com/desertthunder/reelpick/internal/shared"
	"github.com/urfave/cli/v3"
)

// MoviesRandom fetches one random selection and prints it in the requested format.
func (r *Runner) MoviesRandom(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	kind := pages.KindAll
	fetch := r.backend.FetchRandomMovies
	if cmd.Bool("watchlist") {
		kind = pages.KindWatchlist
		fetch = r.backend.FetchRandomWatchlistMovies
	}

	r.logger.Info("fetching movies", "page", kind.String())
	movies, err := fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch movies: %w", err)
	}

	list := formatter.MovieList{
		Title:  kind.Title(),
		Movies: movies,
		Hint: func(m models.Movie) string {
			return r.config.Playback.Hint(m.PlaybackRef())
		},
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(list, format, cmd.Bool("pretty"), path); err != nil {
			return err
		}
		r.logger.Info("movies written", "path", path, "count", len(movies))
		return nil
	}

	data, err := formatter.Render(list, format, cmd.Bool("pretty"))
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if format == formatter.FormatJSON {
		return r.writePlain("\n")
	}
	return nil
}

// PosterGet fetches one poster through the configured cache and downscaling.
func (r *Runner) PosterGet(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if id == "" {
		return fmt.Errorf("%w: --id is required", shared.ErrMissingArgument)
	}

	resolver, closer, err := r.openResolver(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	img, err := resolver.Fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch poster %s: %w", id, err)
	}

	r.logger.Info("fetched poster", "id", id, "type", img.DetectedType(), "size", img.Size())

	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, img.Data, 0644); err != nil {
			return fmt.Errorf("failed to write poster: %w", err)
		}
		return r.writePlain("✓ Poster saved to %s (%s, %d bytes)\n", path, img.DetectedType(), img.Size())
	}

	if _, err := r.output.Write(img.Data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
