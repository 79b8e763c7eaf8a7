package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelpick/internal/pages"
	"github.com/desertthunder/reelpick/internal/posters"
	"github.com/desertthunder/reelpick/internal/server"
	"github.com/desertthunder/reelpick/internal/services"
	"github.com/desertthunder/reelpick/internal/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

const defaultPollInterval = time.Second

// Options configures a [Handler].
type Options struct {
	Resolver     *posters.Resolver
	Playback     shared.PlaybackConfig
	SessionTTL   time.Duration
	PollInterval time.Duration
	Logger       *log.Logger
}

// Handler serves the movie pages, their grid fragments, and poster bytes.
type Handler struct {
	source   services.MovieSource
	resolver *posters.Resolver
	playback shared.PlaybackConfig
	sessions *Sessions
	poll     time.Duration
	tmpl     *template.Template
	logger   *log.Logger

	mux    *http.ServeMux
	routes []string
}

type navItem struct {
	Title  string
	Path   string
	Active bool
}

type gridData struct {
	View         pages.View
	GridURL      string
	SelectURL    string
	Poll         bool
	PollInterval string
}

// ErrText is the load failure shown in the error state.
func (g gridData) ErrText() string {
	if g.View.Err == nil {
		return ""
	}
	return g.View.Err.Error()
}

type layoutData struct {
	Title string
	Nav   []navItem
	Grid  gridData
}

// NewHandler creates a handler whose pages load from source. Posters are resolved through
// opts.Resolver, or through source when it can also serve posters.
func NewHandler(source services.MovieSource, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Resolver == nil {
		var ps services.PosterSource
		if s, ok := source.(services.PosterSource); ok {
			ps = s
		}
		opts.Resolver = posters.NewResolver(ps, nil, posters.ResolverOptions{Logger: opts.Logger})
	}

	h := &Handler{
		source:   source,
		resolver: opts.Resolver,
		playback: opts.Playback,
		sessions: NewSessions(opts.SessionTTL),
		poll:     opts.PollInterval,
		tmpl:     template.Must(template.ParseFS(templateFS, "templates/*.html")),
		logger:   shared.WithLogger(opts.Logger, "component", "web"),
		mux:      http.NewServeMux(),
	}

	for _, k := range pages.Kinds() {
		path := k.Path()
		if path == "/" {
			path = "/{$}"
		}
		h.handle(http.MethodGet, path, h.navigate(k))
	}
	h.handle(http.MethodGet, "/pages/{slug}/grid", h.grid)
	h.handle(http.MethodGet, "/pages/{slug}/view", h.view)
	h.handle(http.MethodPost, "/pages/{slug}/select/{index}", h.selectCard)
	h.handle(http.MethodGet, h.resolver.Registry().Prefix()+"{id}", h.poster)
	h.handle(http.MethodGet, "/health", h.health)
	return h
}

func (h *Handler) handle(method, path string, fn http.HandlerFunc) {
	pattern := method + " " + path
	h.mux.HandleFunc(pattern, fn)
	h.routes = append(h.routes, pattern)
}

// Routes lists the method-qualified patterns the handler serves.
func (h *Handler) Routes() []string {
	return append([]string(nil), h.routes...)
}

// ServeHTTP dispatches to the matching route.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Register mounts every route on r behind its middleware.
func (h *Handler) Register(r server.Router) {
	r.Handler(h)
}

// Sessions exposes the session store.
func (h *Handler) Sessions() *Sessions {
	return h.sessions
}

// Janitor expires idle sessions until ctx ends.
func (h *Handler) Janitor(ctx context.Context, interval time.Duration) {
	h.sessions.Janitor(ctx, interval, func(n int) {
		h.logger.Debug("expired sessions", "count", n)
	})
}

// Close tears down every session's page.
func (h *Handler) Close() {
	h.sessions.CloseAll()
}

// navigate tears down the session's page and mounts a fresh one of kind k.
func (h *Handler) navigate(k pages.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(w, r)

		page := pages.New(k, h.source, pages.Options{
			Resolver: h.resolver,
			Playback: h.playback,
			Logger:   h.logger,
		})
		h.sessions.Replace(id, page)
		page.Mount()

		h.renderLayout(w, k, page.Snapshot())
	}
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	k, page, ok := h.current(w, r)
	if !ok {
		return
	}
	if page == nil {
		http.Redirect(w, r, k.Path(), http.StatusSeeOther)
		return
	}
	h.renderLayout(w, k, page.Snapshot())
}

func (h *Handler) grid(w http.ResponseWriter, r *http.Request) {
	k, page, ok := h.current(w, r)
	if !ok {
		return
	}
	if page == nil {
		http.Error(w, shared.ErrSessionNotFound.Error(), http.StatusNotFound)
		return
	}
	h.renderGrid(w, k, page.Snapshot())
}

func (h *Handler) selectCard(w http.ResponseWriter, r *http.Request) {
	k, page, ok := h.current(w, r)
	if !ok {
		return
	}
	if page == nil {
		http.Error(w, shared.ErrSessionNotFound.Error(), http.StatusNotFound)
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid card index", http.StatusBadRequest)
		return
	}

	if err := page.Toggle(index); err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidArgument):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, shared.ErrPageClosed):
			http.Error(w, err.Error(), http.StatusGone)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		h.renderGrid(w, k, page.Snapshot())
		return
	}
	http.Redirect(w, r, viewURL(k), http.StatusSeeOther)
}

func (h *Handler) poster(w http.ResponseWriter, r *http.Request) {
	img, ok := h.resolver.Registry().Lookup(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", img.DetectedType())
	w.Header().Set("Content-Length", strconv.Itoa(img.Size()))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if r.Method == http.MethodHead {
		return
	}
	w.Write(img.Data)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	data, err := shared.MarshalJSON(map[string]any{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	}, false)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// current resolves the slug and the session's page. page is nil when the session has no page
// of that kind. ok is false once an error response has been written.
func (h *Handler) current(w http.ResponseWriter, r *http.Request) (k pages.Kind, page *pages.Page, ok bool) {
	slug := r.PathValue("slug")
	k, err := pages.ParseKind(slug)
	if err != nil || slug == "" {
		http.NotFound(w, r)
		return k, nil, false
	}

	id, found := existingSessionID(r)
	if !found {
		return k, nil, true
	}
	page, err = h.sessions.Page(id)
	if err != nil || page.Kind() != k {
		return k, nil, true
	}
	return k, page, true
}

func (h *Handler) gridData(k pages.Kind, v pages.View) gridData {
	return gridData{
		View:         v,
		GridURL:      "/pages/" + k.String() + "/grid",
		SelectURL:    "/pages/" + k.String() + "/select",
		Poll:         v.Pending(),
		PollInterval: h.poll.String(),
	}
}

func (h *Handler) renderLayout(w http.ResponseWriter, k pages.Kind, v pages.View) {
	nav := make([]navItem, 0, len(pages.Kinds()))
	for _, other := range pages.Kinds() {
		nav = append(nav, navItem{Title: other.Title(), Path: other.Path(), Active: other == k})
	}
	h.render(w, "layout", layoutData{Title: k.Title(), Nav: nav, Grid: h.gridData(k, v)})
}

func (h *Handler) renderGrid(w http.ResponseWriter, k pages.Kind, v pages.View) {
	h.render(w, "grid", h.gridData(k, v))
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("failed to render template", "template", name, "error", err)
	}
}

func viewURL(k pages.Kind) string {
	return "/pages/" + k.String() + "/view"
}
