package repositories

import (
	"context"
	"fmt"
	"io"

	"github.com/desertthunder/reelpick/internal/posters"
	"github.com/desertthunder/reelpick/internal/shared"
)

// PosterStore is a [posters.Store] that can also report and clear its contents.
type PosterStore interface {
	posters.Store
	Stats(ctx context.Context) (posters.Stats, error)
	Clear(ctx context.Context) (int64, error)
}

// memoryStore adapts [posters.LRU] to [PosterStore].
type memoryStore struct {
	*posters.LRU
}

func (m memoryStore) Stats(context.Context) (posters.Stats, error) {
	return m.LRU.Stats(), nil
}

func (m memoryStore) Clear(context.Context) (int64, error) {
	n := m.LRU.Stats().Entries
	m.LRU.Clear()
	return int64(n), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenPosterStore returns the store selected by cfg.Cache.Backend and a closer for its connection.
//
// The "none" backend returns a nil store.
func OpenPosterStore(ctx context.Context, cfg *shared.Config) (PosterStore, io.Closer, error) {
	switch cfg.Cache.Backend {
	case shared.CacheNone, "":
		return nil, nopCloser{}, nil
	case shared.CacheMemory:
		return memoryStore{posters.NewLRU(cfg.Cache.Capacity, cfg.Cache.TTL.Duration)}, nopCloser{}, nil
	case shared.CacheSQLite:
		db, err := shared.OpenPosterDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return NewPosterRepository(db, cfg.Cache.TTL.Duration), db, nil
	case shared.CacheRedis:
		rdb, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisPosterCache(rdb, cfg.Redis.Prefix, cfg.Cache.TTL.Duration), rdb, nil
	default:
		return nil, nil, fmt.Errorf("%w: cache.backend %q", shared.ErrInvalidConfig, cfg.Cache.Backend)
	}
}
