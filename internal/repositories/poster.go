package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/reelpick/internal/models"
	"github.com/desertthunder/reelpick/internal/posters"
	"github.com/desertthunder/reelpick/internal/shared"
)

// PosterRepository stores poster bytes in the posters table.
//
// Entries older than ttl are treated as misses and removed by [PosterRepository.Prune].
type PosterRepository struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewPosterRepository creates a PosterRepository. A zero ttl keeps entries forever.
func NewPosterRepository(db *sql.DB, ttl time.Duration) *PosterRepository {
	return &PosterRepository{db: db, ttl: ttl, now: time.Now}
}

// Get returns the cached poster for movieID, touching its access time.
func (r *PosterRepository) Get(ctx context.Context, movieID string) (*models.PosterImage, error) {
	query := `
		SELECT content_type, data, created_at
		FROM posters
		WHERE movie_id = ?
	`

	var (
		img       models.PosterImage
		createdAt time.Time
	)
	err := r.db.QueryRowContext(ctx, query, movieID).Scan(&img.ContentType, &img.Data, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrPosterNotFound, movieID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poster: %w", err)
	}

	if r.expired(createdAt) {
		if _, err := r.Delete(ctx, movieID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s expired", shared.ErrPosterNotFound, movieID)
	}

	if _, err := r.db.ExecContext(ctx, "UPDATE posters SET accessed_at = ? WHERE movie_id = ?", r.now().UTC(), movieID); err != nil {
		return nil, fmt.Errorf("failed to touch poster: %w", err)
	}

	return &img, nil
}

// Put inserts or replaces the poster for movieID.
func (r *PosterRepository) Put(ctx context.Context, movieID string, img *models.PosterImage) error {
	if movieID == "" || img.Size() == 0 {
		return fmt.Errorf("%w: poster needs a movie id and bytes", shared.ErrInvalidInput)
	}

	now := r.now().UTC()
	query := `
		INSERT INTO posters (movie_id, content_type, data, size, created_at, accessed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(movie_id) DO UPDATE SET
			content_type = excluded.content_type,
			data = excluded.data,
			size = excluded.size,
			created_at = excluded.created_at,
			accessed_at = excluded.accessed_at
	`

	if _, err := r.db.ExecContext(ctx, query, movieID, img.ContentType, img.Data, img.Size(), now, now); err != nil {
		return fmt.Errorf("failed to put poster: %w", err)
	}
	return nil
}

// Delete removes one poster and reports whether it existed.
func (r *PosterRepository) Delete(ctx context.Context, movieID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM posters WHERE movie_id = ?", movieID)
	if err != nil {
		return false, fmt.Errorf("failed to delete poster: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// Prune removes expired posters and returns how many were removed.
func (r *PosterRepository) Prune(ctx context.Context) (int64, error) {
	if r.ttl <= 0 {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM posters WHERE created_at < ?", r.now().Add(-r.ttl).UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune posters: %w", err)
	}
	return result.RowsAffected()
}

// Clear removes every poster and returns how many were removed.
func (r *PosterRepository) Clear(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM posters")
	if err != nil {
		return 0, fmt.Errorf("failed to clear posters: %w", err)
	}
	return result.RowsAffected()
}

// Stats reports the number of cached posters and their total size.
func (r *PosterRepository) Stats(ctx context.Context) (posters.Stats, error) {
	var st posters.Stats
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(size), 0) FROM posters").Scan(&st.Entries, &st.Bytes)
	if err != nil {
		return posters.Stats{}, fmt.Errorf("failed to read poster stats: %w", err)
	}
	return st, nil
}

func (r *PosterRepository) expired(createdAt time.Time) bool {
	return r.ttl > 0 && r.now().Sub(createdAt) > r.ttl
}
