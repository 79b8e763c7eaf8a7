// package services implements the HTTP client for the movie backend
package services

import (
	"context"

	"github.com/desertthunder/reelpick/internal/models"
)

// MovieSource fetches random movie lists. [BackendService] implements it; tests substitute doubles.
type MovieSource interface {
	// FetchRandomMovies returns a small random selection from the whole library.
	FetchRandomMovies(ctx context.Context) ([]models.Movie, error)

	// FetchRandomWatchlistMovies returns a small random selection from the watchlist.
	FetchRandomWatchlistMovies(ctx context.Context) ([]models.Movie, error)
}

// PosterSource fetches poster bytes for a movie id.
type PosterSource interface {
	FetchMoviePoster(ctx context.Context, id string) (*models.PosterImage, error)
}

// Backend is everything the viewers need from the backend.
type Backend interface {
	MovieSource
	PosterSource
}
