package posters

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/desertthunder/reelpick/internal/models"
	"github.com/desertthunder/reelpick/internal/shared"
)

// Store is a poster cache keyed by movie id.
//
// Get returns an error wrapping [shared.ErrPosterNotFound] on a miss.
type Store interface {
	Get(ctx context.Context, movieID string) (*models.PosterImage, error)
	Put(ctx context.Context, movieID string, img *models.PosterImage) error
}

// Stats describes cache usage.
type Stats struct {
	Entries int
	Bytes   int64
	Hits    int64
	Misses  int64
}

type lruEntry struct {
	key       string
	img       *models.PosterImage
	expiresAt time.Time
}

// LRU is an in-memory [Store] with a capacity bound and lazy TTL expiry.
type LRU struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List
	items    map[string]*list.Element
	bytes    int64
	hits     int64
	misses   int64
	now      func() time.Time
}

// NewLRU creates an LRU holding at most capacity posters for ttl each. Zero ttl never expires.
func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 128
	}
	return &LRU{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
		now:      time.Now,
	}
}

func (c *LRU) Get(_ context.Context, movieID string) (*models.PosterImage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[movieID]
	if !ok {
		c.misses++
		return nil, shared.ErrPosterNotFound
	}

	entry := el.Value.(*lruEntry)
	if c.ttl > 0 && c.now().After(entry.expiresAt) {
		c.removeElement(el)
		c.misses++
		return nil, shared.ErrPosterNotFound
	}

	c.order.MoveToFront(el)
	c.hits++
	return entry.img, nil
}

func (c *LRU) Put(_ context.Context, movieID string, img *models.PosterImage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if el, ok := c.items[movieID]; ok {
		entry := el.Value.(*lruEntry)
		c.bytes += int64(img.Size() - entry.img.Size())
		entry.img, entry.expiresAt = img, expiresAt
		c.order.MoveToFront(el)
		return nil
	}

	c.items[movieID] = c.order.PushFront(&lruEntry{key: movieID, img: img, expiresAt: expiresAt})
	c.bytes += int64(img.Size())

	for c.order.Len() > c.capacity {
		c.removeElement(c.order.Back())
	}
	return nil
}

// Remove drops one entry.
func (c *LRU) Remove(movieID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[movieID]
	if ok {
		c.removeElement(el)
	}
	return ok
}

// Clear drops every entry and resets the counters.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	clear(c.items)
	c.bytes, c.hits, c.misses = 0, 0, 0
}

// Stats returns a snapshot of usage counters.
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Entries: c.order.Len(), Bytes: c.bytes, Hits: c.hits, Misses: c.misses}
}

func (c *LRU) removeElement(el *list.Element) {
	entry := c.order.Remove(el).(*lruEntry)
	delete(c.items, entry.key)
	c.bytes -= int64(entry.img.Size())
}
