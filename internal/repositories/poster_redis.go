package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/reelpick/internal/models"
	"github.com/desertthunder/reelpick/internal/posters"
	"github.com/desertthunder/reelpick/internal/shared"
	"github.com/redis/go-redis/v9"
)

const (
	fieldContentType = "content_type"
	fieldData        = "data"
)

// RedisPosterCache stores each poster as a hash under prefix+movieID.
type RedisPosterCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient connects to redis and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, cfg shared.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewRedisPosterCache wraps a connected client. A zero ttl keeps keys forever.
func NewRedisPosterCache(rdb *redis.Client, prefix string, ttl time.Duration) *RedisPosterCache {
	if prefix == "" {
		prefix = "reelpick:poster:"
	}
	return &RedisPosterCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *RedisPosterCache) key(movieID string) string {
	return c.prefix + movieID
}

// Get returns the cached poster for movieID.
func (c *RedisPosterCache) Get(ctx context.Context, movieID string) (*models.PosterImage, error) {
	vals, err := c.rdb.HMGet(ctx, c.key(movieID), fieldContentType, fieldData).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get poster: %w", err)
	}

	data, ok := vals[1].(string)
	if !ok || data == "" {
		return nil, fmt.Errorf("%w: %s", shared.ErrPosterNotFound, movieID)
	}
	contentType, _ := vals[0].(string)

	return &models.PosterImage{Data: []byte(data), ContentType: contentType}, nil
}

// Put stores the poster for movieID and refreshes its expiry.
func (c *RedisPosterCache) Put(ctx context.Context, movieID string, img *models.PosterImage) error {
	if movieID == "" || img.Size() == 0 {
		return fmt.Errorf("%w: poster needs a movie id and bytes", shared.ErrInvalidInput)
	}

	key := c.key(movieID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldContentType, img.ContentType, fieldData, img.Data)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to put poster: %w", err)
	}
	return nil
}

// Clear deletes every key under the prefix.
func (c *RedisPosterCache) Clear(ctx context.Context) (int64, error) {
	var removed int64
	err := c.scan(ctx, func(keys []string) error {
		n, err := c.rdb.Del(ctx, keys...).Result()
		removed += n
		return err
	})
	if err != nil {
		return removed, fmt.Errorf("failed to clear posters: %w", err)
	}
	return removed, nil
}

// Stats counts keys under the prefix and sums their data sizes.
func (c *RedisPosterCache) Stats(ctx context.Context) (posters.Stats, error) {
	var st posters.Stats
	err := c.scan(ctx, func(keys []string) error {
		for _, key := range keys {
			n, err := c.rdb.HStrLen(ctx, key, fieldData).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			st.Entries++
			st.Bytes += n
		}
		return nil
	})
	if err != nil {
		return posters.Stats{}, fmt.Errorf("failed to read poster stats: %w", err)
	}
	return st, nil
}

func (c *RedisPosterCache) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
