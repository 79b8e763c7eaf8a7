package posters

import (
	"bytes"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/desertthunder/reelpick/internal/models"
	"github.com/desertthunder/reelpick/internal/shared"
)

// DefaultPrefix is the URL path under which handles are served.
const DefaultPrefix = "/posters/"

// Registry maps opaque handle ids to poster bytes. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	prefix  string
	entries map[string]*models.PosterImage
}

// NewRegistry creates an empty registry whose handle URLs start with prefix.
func NewRegistry(prefix string) *Registry {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Registry{prefix: prefix, entries: make(map[string]*models.PosterImage)}
}

// Handle is a registered, displayable poster. The owner must call Release.
type Handle struct {
	id          string
	url         string
	width       int
	height      int
	contentType string
	size        int
	registry    *Registry
	released    atomic.Bool
}

// Register validates img as a decodable image and records it under a new id.
func (r *Registry) Register(img *models.PosterImage) (*Handle, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, fmt.Errorf("%w: empty poster", shared.ErrDecode)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: poster is not an image: %v", shared.ErrDecode, err)
	}

	contentType := img.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "image/" + format
	}

	id := shared.GenerateID()
	r.mu.Lock()
	r.entries[id] = &models.PosterImage{Data: img.Data, ContentType: contentType}
	r.mu.Unlock()

	return &Handle{
		id:          id,
		url:         r.prefix + id,
		width:       cfg.Width,
		height:      cfg.Height,
		contentType: contentType,
		size:        len(img.Data),
		registry:    r,
	}, nil
}

// Lookup returns the poster registered under id.
func (r *Registry) Lookup(id string) (*models.PosterImage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.entries[id]
	return p, ok
}

// Len is the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Prefix is the URL prefix of handle URLs.
func (r *Registry) Prefix() string {
	return r.prefix
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// ID is the opaque handle id.
func (h *Handle) ID() string { return h.id }

// URL is where the web viewer serves the poster.
func (h *Handle) URL() string { return h.url }

// Width of the poster in pixels.
func (h *Handle) Width() int { return h.width }

// Height of the poster in pixels.
func (h *Handle) Height() int { return h.height }

// ContentType of the registered bytes.
func (h *Handle) ContentType() string { return h.contentType }

// Size in bytes.
func (h *Handle) Size() int { return h.size }

// Release removes the poster from its registry. Safe to call more than once.
func (h *Handle) Release() {
	if h == nil || !h.released.CompareAndSwap(false, true) {
		return
	}
	h.registry.remove(h.id)
}

// Released reports whether Release has run.
func (h *Handle) Released() bool {
	return h.released.Load()
}
