package pages

import (
	"context"
	"sync"

	"github.com/desertthunder/reelpick/internal/models"
	"github.com/desertthunder/reelpick/internal/posters"
)

// ImageState is the poster status of a card.
type ImageState int

const (
	ImagePending ImageState = iota
	ImageResolved
	ImageFailed
)

func (s ImageState) String() string {
	switch s {
	case ImagePending:
		return "pending"
	case ImageResolved:
		return "resolved"
	case ImageFailed:
		return "failed"
	default:
		return ""
	}
}

// CardView is an immutable rendering of one card.
type CardView struct {
	Index        int
	ID           string
	Title        string
	Year         int
	Rating       float64
	Details      string
	ImageURL     string
	ImageState   ImageState
	Width        int
	Height       int
	ContentType  string
	Selected     bool
	PlaybackHint string
}

// Card displays one movie and resolves its poster.
//
// A card holds no selection state. Each resolution carries a token; a result whose token is stale,
// or that arrives after Close, is released instead of applied.
type Card struct {
	mu       sync.Mutex
	index    int
	parent   context.Context
	resolver *posters.Resolver
	notify   func(Update)

	movie  models.Movie
	bound  bool
	state  ImageState
	handle *posters.Handle
	err    error
	token  uint64
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// NewCard creates a card whose resolutions live no longer than ctx. notify may be nil.
func NewCard(ctx context.Context, index int, resolver *posters.Resolver, notify func(Update)) *Card {
	if notify == nil {
		notify = func(Update) {}
	}
	return &Card{index: index, parent: ctx, resolver: resolver, notify: notify}
}

// Bind shows movie on the card. A changed id cancels and releases the previous resolution and starts a new one.
func (c *Card) Bind(movie models.Movie) {
	c.mu.Lock()
	if c.closed || (c.bound && c.movie.ID == movie.ID) {
		c.mu.Unlock()
		return
	}

	c.resetLocked()
	c.movie, c.bound = movie, true
	c.token++
	token := c.token

	if movie.HasImage() {
		h, err := c.resolver.FromInline(movie.ImageData)
		u := c.applyLocked(h, err)
		c.mu.Unlock()
		c.notify(u)
		return
	}

	ctx, cancel := context.WithCancel(c.parent)
	c.cancel = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	go c.resolve(ctx, token, movie)
}

func (c *Card) resolve(ctx context.Context, token uint64, movie models.Movie) {
	defer c.wg.Done()

	h, err := c.resolver.Resolve(ctx, movie)

	c.mu.Lock()
	if c.closed || c.token != token {
		c.mu.Unlock()
		h.Release()
		return
	}
	u := c.applyLocked(h, err)
	c.mu.Unlock()

	c.notify(u)
}

func (c *Card) applyLocked(h *posters.Handle, err error) Update {
	if err != nil {
		c.state, c.err = ImageFailed, err
		return posterFailedUpdate(c.index, c.movie.Name, err)
	}
	c.state, c.handle = ImageResolved, h
	return posterResolvedUpdate(c.index, c.movie.Name)
}

// resetLocked cancels the in-flight resolution and releases the current handle.
func (c *Card) resetLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.handle.Release()
	c.handle, c.err, c.state = nil, nil, ImagePending
}

// Movie returns the bound movie.
func (c *Card) Movie() models.Movie {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.movie
}

// State returns the poster status and, when failed, the reason.
func (c *Card) State() (ImageState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.err
}

// View renders the card. hint builds the playback hint and is only consulted when selected.
func (c *Card) View(selected bool, hint func(models.Movie) string) CardView {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := CardView{
		Index:      c.index,
		ID:         c.movie.ID,
		Title:      c.movie.Name,
		Year:       c.movie.ProductionYear,
		Rating:     c.movie.CommunityRating,
		Details:    c.movie.Details(),
		ImageState: c.state,
		Selected:   selected,
	}

	if c.state == ImageResolved && c.handle != nil {
		v.ImageURL = c.handle.URL()
		v.Width, v.Height = c.handle.Width(), c.handle.Height()
		v.ContentType = c.handle.ContentType()
	}

	if selected && hint != nil {
		v.PlaybackHint = hint(c.movie)
	}
	return v
}

// Close cancels any resolution and releases the poster handle. Later results are dropped.
func (c *Card) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.resetLocked()
}

// settle waits for in-flight resolutions to return.
func (c *Card) settle() {
	c.wg.Wait()
}
