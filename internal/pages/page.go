package pages

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelpick/internal/models"
	"github.com/desertthunder/reelpick/internal/posters"
	"github.com/desertthunder/reelpick/internal/services"
	"github.com/desertthunder/reelpick/internal/shared"
)

const defaultUpdateBuffer = 64

// State is the lifecycle of a page.
type State int

const (
	StateLoading State = iota
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return ""
	}
}

// View is an immutable snapshot of a page.
type View struct {
	Kind  Kind
	State State
	Err   error
	Cards []CardView
}

// Selected returns the selected card, if any.
func (v View) Selected() (CardView, bool) {
	for _, c := range v.Cards {
		if c.Selected {
			return c, true
		}
	}
	return CardView{}, false
}

// Pending reports whether the page or any poster is still resolving.
func (v View) Pending() bool {
	if v.State == StateLoading {
		return true
	}
	for _, c := range v.Cards {
		if c.ImageState == ImagePending {
			return true
		}
	}
	return false
}

// Options configures a [Page].
type Options struct {
	Resolver     *posters.Resolver
	Playback     shared.PlaybackConfig
	Logger       *log.Logger
	UpdateBuffer int
}

// Page is the container behind "/", "/all" and "/watchlist".
type Page struct {
	kind     Kind
	fetch    func(context.Context) ([]models.Movie, error)
	resolver *posters.Resolver
	playback shared.PlaybackConfig
	logger   *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	loaded    bool
	state     State
	err       error
	movies    []models.Movie
	cards     []*Card
	selection Selection
	closed    bool
	done      chan struct{}

	updMu      sync.RWMutex
	updates    chan Update
	updsClosed bool
}

// New creates an unmounted page of kind k backed by source.
func New(k Kind, source services.MovieSource, opts Options) *Page {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Playback == (shared.PlaybackConfig{}) {
		opts.Playback = shared.DefaultConfig().Playback
	}
	if opts.UpdateBuffer <= 0 {
		opts.UpdateBuffer = defaultUpdateBuffer
	}
	if opts.Resolver == nil {
		var ps services.PosterSource
		if s, ok := source.(services.PosterSource); ok {
			ps = s
		}
		opts.Resolver = posters.NewResolver(ps, nil, posters.ResolverOptions{Logger: opts.Logger})
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Page{
		kind:     k,
		fetch:    k.fetcher(source),
		resolver: opts.Resolver,
		playback: opts.Playback,
		logger:   shared.WithLogger(opts.Logger, "page", k.String()),
		ctx:      ctx,
		cancel:   cancel,
		state:    StateLoading,
		done:     make(chan struct{}),
		updates:  make(chan Update, opts.UpdateBuffer),
	}
}

// Kind returns the page variant.
func (p *Page) Kind() Kind {
	return p.kind
}

// Mount issues the page's single fetch. Only the first call does anything.
func (p *Page) Mount() {
	p.mu.Lock()
	if p.loaded || p.closed {
		p.mu.Unlock()
		return
	}
	p.loaded = true
	p.mu.Unlock()

	p.emit(fetchMoviesUpdate(p.kind))
	go p.load()
}

func (p *Page) load() {
	movies, err := p.fetch(p.ctx)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Debug("discarding fetch result after close")
		return
	}

	if err != nil {
		p.state, p.err = StateFailed, err
		close(p.done)
		p.mu.Unlock()

		p.logger.Error("failed to load movies", "error", err)
		p.emit(moviesFailedUpdate(err))
		return
	}

	p.movies = p.dedupe(movies)
	p.cards = make([]*Card, len(p.movies))
	for i, m := range p.movies {
		c := NewCard(p.ctx, i, p.resolver, p.emit)
		c.movie = m
		p.cards[i] = c
	}
	p.state = StateLoaded
	cards, bound := p.cards, p.movies
	p.mu.Unlock()

	p.logger.Info("loaded movies", "count", len(bound))
	p.emit(moviesLoadedUpdate(len(bound)))

	// Inline posters are decoded (and maybe resized) here, outside the page lock.
	for i, c := range cards {
		c.Bind(bound[i])
	}
	close(p.done)
}

// dedupe keeps the first occurrence of each id.
func (p *Page) dedupe(movies []models.Movie) []models.Movie {
	seen := make(map[string]struct{}, len(movies))
	out := make([]models.Movie, 0, len(movies))
	for i, m := range movies {
		if _, dup := seen[m.ID]; dup {
			p.logger.Warn("dropping duplicate movie", "id", m.ID, "name", m.Name, "position", i)
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}

// Snapshot returns the current page view.
func (p *Page) Snapshot() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := View{Kind: p.kind, State: p.state, Err: p.err}
	if p.state != StateLoaded {
		return v
	}

	v.Cards = make([]CardView, len(p.cards))
	for i, c := range p.cards {
		v.Cards[i] = c.View(p.selection.Is(i), p.hint)
	}
	return v
}

func (p *Page) hint(m models.Movie) string {
	return p.playback.Hint(m.PlaybackRef())
}

// Movies returns the loaded list in backend order.
func (p *Page) Movies() []models.Movie {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Movie(nil), p.movies...)
}

// Selection returns the current selection.
func (p *Page) Selection() Selection {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection
}

// Toggle selects card i, or clears the selection when i is already selected.
// Calls before the list has loaded are ignored.
func (p *Page) Toggle(i int) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return shared.ErrPageClosed
	}
	if p.state != StateLoaded {
		p.mu.Unlock()
		return nil
	}
	if i < 0 || i >= len(p.cards) {
		n := len(p.cards)
		p.mu.Unlock()
		return fmt.Errorf("%w: card %d out of range [0, %d)", shared.ErrInvalidArgument, i, n)
	}

	p.selection = p.selection.Toggle(i)
	sel := p.selection
	p.mu.Unlock()

	p.emit(selectionChangedUpdate(sel))
	return nil
}

// Wait blocks until the page has failed, or has loaded and bound its cards, or ctx ends.
func (p *Page) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels the fetch and every poster resolution and releases all handles.
// A page closed while loading ends in [StateFailed] with [shared.ErrPageClosed].
func (p *Page) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.cancel()

	if p.state == StateLoading {
		p.state, p.err = StateFailed, shared.ErrPageClosed
		close(p.done)
	}
	cards := p.cards
	p.mu.Unlock()

	for _, c := range cards {
		c.Close()
	}

	p.updMu.Lock()
	p.updsClosed = true
	close(p.updates)
	p.updMu.Unlock()
}

// Closed reports whether Close has run.
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Updates delivers change notifications. Sends never block; a slow reader misses updates,
// not state, since [Page.Snapshot] is authoritative. The channel is closed by Close.
func (p *Page) Updates() <-chan Update {
	return p.updates
}

func (p *Page) emit(u Update) {
	p.updMu.RLock()
	defer p.updMu.RUnlock()
	if p.updsClosed {
		return
	}
	select {
	case p.updates <- u:
	default:
	}
}

// settle waits for every card resolution to return.
func (p *Page) settle() {
	p.mu.Lock()
	cards := p.cards
	p.mu.Unlock()
	for _, c := range cards {
		c.settle()
	}
}
