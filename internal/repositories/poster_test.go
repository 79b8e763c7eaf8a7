package repositories

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/reelpick/internal/models"
	"github.com/desertthunder/reelpick/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenPosterDatabase(context.Background(), shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPosterRepository(t *testing.T) {
	ctx := context.Background()
	jpeg := &models.PosterImage{Data: []byte{0xff, 0xd8, 0xff, 0xe0, 1, 2, 3}, ContentType: "image/jpeg"}

	t.Run("Put And Get", func(t *testing.T) {
		repo := NewPosterRepository(setupTestDB(t), 0)

		if err := repo.Put(ctx, "42", jpeg); err != nil {
			t.Fatalf("failed to put poster: %v", err)
		}

		got, err := repo.Get(ctx, "42")
		if err != nil {
			t.Fatalf("failed to get poster: %v", err)
		}
		if !bytes.Equal(got.Data, jpeg.Data) || got.ContentType != "image/jpeg" {
			t.Errorf("unexpected poster %+v", got)
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		repo := NewPosterRepository(setupTestDB(t), 0)
		if _, err := repo.Get(ctx, "nope"); !errors.Is(err, shared.ErrPosterNotFound) {
			t.Errorf("expected ErrPosterNotFound, got %v", err)
		}
	})

	t.Run("Put Replaces", func(t *testing.T) {
		repo := NewPosterRepository(setupTestDB(t), 0)
		repo.Put(ctx, "42", jpeg)

		png := &models.PosterImage{Data: []byte("\x89PNG"), ContentType: "image/png"}
		if err := repo.Put(ctx, "42", png); err != nil {
			t.Fatalf("failed to replace poster: %v", err)
		}

		got, _ := repo.Get(ctx, "42")
		if got.ContentType != "image/png" {
			t.Errorf("expected replaced poster, got %s", got.ContentType)
		}

		st, err := repo.Stats(ctx)
		if err != nil {
			t.Fatalf("failed to get stats: %v", err)
		}
		if st.Entries != 1 || st.Bytes != int64(png.Size()) {
			t.Errorf("unexpected stats %+v", st)
		}
	})

	t.Run("Put Rejects Empty", func(t *testing.T) {
		repo := NewPosterRepository(setupTestDB(t), 0)
		if err := repo.Put(ctx, "", jpeg); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty id, got %v", err)
		}
		if err := repo.Put(ctx, "1", &models.PosterImage{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty data, got %v", err)
		}
	})

	t.Run("Expiry And Prune", func(t *testing.T) {
		repo := NewPosterRepository(setupTestDB(t), time.Hour)
		now := time.Now()
		repo.now = func() time.Time { return now }

		repo.Put(ctx, "old", jpeg)
		repo.Put(ctx, "older", jpeg)

		now = now.Add(2 * time.Hour)
		repo.Put(ctx, "fresh", jpeg)

		if _, err := repo.Get(ctx, "old"); !errors.Is(err, shared.ErrPosterNotFound) {
			t.Errorf("expected expired poster to miss, got %v", err)
		}

		n, err := repo.Prune(ctx)
		if err != nil {
			t.Fatalf("failed to prune: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 pruned poster, got %d", n)
		}

		if _, err := repo.Get(ctx, "fresh"); err != nil {
			t.Errorf("fresh poster should survive prune: %v", err)
		}
	})

	t.Run("Delete And Clear", func(t *testing.T) {
		repo := NewPosterRepository(setupTestDB(t), 0)
		repo.Put(ctx, "a", jpeg)
		repo.Put(ctx, "b", jpeg)
		repo.Put(ctx, "c", jpeg)

		ok, err := repo.Delete(ctx, "a")
		if err != nil || !ok {
			t.Fatalf("expected delete to succeed, got %v %v", ok, err)
		}
		if ok, _ := repo.Delete(ctx, "a"); ok {
			t.Error("second delete should report missing")
		}

		n, err := repo.Clear(ctx)
		if err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 cleared, got %d", n)
		}
	})

	t.Run("Closed Database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPosterRepository(db, 0)
		db.Close()

		if _, err := repo.Get(ctx, "a"); err == nil || errors.Is(err, shared.ErrPosterNotFound) {
			t.Errorf("expected database error, got %v", err)
		}
		if err := repo.Put(ctx, "a", jpeg); err == nil {
			t.Error("expected put to fail on closed database")
		}
		if _, err := repo.Stats(ctx); err == nil {
			t.Error("expected stats to fail on closed database")
		}
	})
}
