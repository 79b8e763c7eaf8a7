package posters

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelpick/internal/models"
	"github.com/desertthunder/reelpick/internal/services"
	"github.com/desertthunder/reelpick/internal/shared"
)

// ResolverOptions configures a [Resolver].
type ResolverOptions struct {
	// Store is consulted before fetching and filled after. Nil disables caching.
	Store     Store
	MaxWidth  int
	MaxHeight int
	Logger    *log.Logger
}

// Resolver produces poster handles for movies.
type Resolver struct {
	source   services.PosterSource
	registry *Registry
	store    Store
	maxW     int
	maxH     int
	logger   *log.Logger
}

// NewResolver creates a resolver that fetches from source and registers into registry.
func NewResolver(source services.PosterSource, registry *Registry, opts ResolverOptions) *Resolver {
	if registry == nil {
		registry = NewRegistry(DefaultPrefix)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Resolver{
		source:   source,
		registry: registry,
		store:    opts.Store,
		maxW:     opts.MaxWidth,
		maxH:     opts.MaxHeight,
		logger:   opts.Logger,
	}
}

// Registry returns the registry handles are recorded in.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// FromInline wraps inline poster bytes without any network call.
func (r *Resolver) FromInline(data []byte) (*Handle, error) {
	img, err := r.shrink(&models.PosterImage{Data: data})
	if err != nil {
		return nil, err
	}
	return r.registry.Register(img)
}

// Resolve returns a handle for movie's poster: its inline bytes when present, otherwise
// one fetch by movie id. A result that arrives after ctx ends is discarded.
func (r *Resolver) Resolve(ctx context.Context, movie models.Movie) (*Handle, error) {
	if movie.HasImage() {
		return r.FromInline(movie.ImageData)
	}

	img, err := r.load(ctx, movie.ID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.registry.Register(img)
}

// Fetch returns the processed poster bytes for a movie id, using the store when configured.
func (r *Resolver) Fetch(ctx context.Context, movieID string) (*models.PosterImage, error) {
	return r.load(ctx, movieID)
}

func (r *Resolver) load(ctx context.Context, movieID string) (*models.PosterImage, error) {
	if r.store != nil {
		img, err := r.store.Get(ctx, movieID)
		switch {
		case err == nil:
			r.logger.Debug("poster cache hit", "movie", movieID)
			return img, nil
		case !errors.Is(err, shared.ErrPosterNotFound):
			r.logger.Warn("poster cache read failed", "movie", movieID, "error", err)
		}
	}

	if r.source == nil {
		return nil, fmt.Errorf("%w: no poster source for %s", shared.ErrPosterNotFound, movieID)
	}

	img, err := r.source.FetchMoviePoster(ctx, movieID)
	if err != nil {
		return nil, err
	}

	img, err = r.shrink(img)
	if err != nil {
		return nil, err
	}

	if r.store != nil {
		if err := r.store.Put(ctx, movieID, img); err != nil {
			r.logger.Warn("poster cache write failed", "movie", movieID, "error", err)
		}
	}
	return img, nil
}

func (r *Resolver) shrink(img *models.PosterImage) (*models.PosterImage, error) {
	if r.maxW <= 0 && r.maxH <= 0 {
		return img, nil
	}
	return Downscale(img, r.maxW, r.maxH)
}
