package pages

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelpick/internal/models"
	"github.com/desertthunder/reelpick/internal/posters"
	"github.com/desertthunder/reelpick/internal/services"
	"github.com/desertthunder/reelpick/internal/shared"
	tu "github.com/desertthunder/reelpick/internal/testing"
)

func mountAndWait(t *testing.T, p *Page) View {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	p.Mount()
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("page did not leave loading: %v", err)
	}
	p.settle()
	return p.Snapshot()
}

func TestPage(t *testing.T) {
	t.Run("One Card Per Movie In Order", func(t *testing.T) {
		src := &tu.MockSource{
			Movies: []models.Movie{
				{ID: "3", Name: "Gamma", ProductionYear: 2001, CommunityRating: 6.1, ImageData: tu.PNG(t, 1, 1)},
				{ID: "1", Name: "Alpha", ProductionYear: 1999, CommunityRating: 7.5, ImageData: tu.PNG(t, 1, 1)},
				{ID: "2", Name: "Beta", ProductionYear: 2010, CommunityRating: 8, ImageData: tu.PNG(t, 1, 1)},
			},
		}
		p := New(KindAll, src, Options{})
		defer p.Close()

		v := mountAndWait(t, p)
		if v.State != StateLoaded {
			t.Fatalf("expected loaded, got %s", v.State)
		}
		if len(v.Cards) != len(src.Movies) {
			t.Fatalf("expected %d cards, got %d", len(src.Movies), len(v.Cards))
		}
		for i, m := range src.Movies {
			c := v.Cards[i]
			if c.Index != i || c.ID != m.ID || c.Title != m.Name || c.Year != m.ProductionYear || c.Rating != m.CommunityRating {
				t.Errorf("card %d does not match movie: %+v vs %+v", i, c, m)
			}
			if c.Details != m.Details() {
				t.Errorf("card %d details %q, want %q", i, c.Details, m.Details())
			}
		}
	})

	t.Run("Mount Fetches Once", func(t *testing.T) {
		src := &tu.MockSource{}
		p := New(KindRoot, src, Options{})
		defer p.Close()

		p.Mount()
		p.Mount()
		mountAndWait(t, p)

		if src.RandomCalls() != 1 {
			t.Errorf("expected exactly one fetch, got %d", src.RandomCalls())
		}
	})

	t.Run("Kinds Use Their Source", func(t *testing.T) {
		tests := []struct {
			kind      Kind
			random    int
			watchlist int
		}{
			{KindRoot, 1, 0},
			{KindAll, 1, 0},
			{KindWatchlist, 0, 1},
		}
		for _, tt := range tests {
			t.Run(tt.kind.String(), func(t *testing.T) {
				src := &tu.MockSource{Watchlist: []models.Movie{{ID: "w", Name: "W", ImageData: tu.PNG(t, 1, 1)}}}
				p := New(tt.kind, src, Options{})
				defer p.Close()

				mountAndWait(t, p)
				if src.RandomCalls() != tt.random || src.WatchlistCalls() != tt.watchlist {
					t.Errorf("random=%d watchlist=%d", src.RandomCalls(), src.WatchlistCalls())
				}
			})
		}
	})

	t.Run("Empty List Leaves Loading", func(t *testing.T) {
		p := New(KindRoot, &tu.MockSource{Movies: []models.Movie{}}, Options{})
		defer p.Close()

		v := mountAndWait(t, p)
		if v.State != StateLoaded {
			t.Errorf("expected loaded, got %s", v.State)
		}
		if len(v.Cards) != 0 {
			t.Errorf("expected zero cards, got %d", len(v.Cards))
		}
		if v.Pending() {
			t.Error("empty page should not be pending")
		}
	})

	t.Run("Fetch Failure Is Distinguishable", func(t *testing.T) {
		p := New(KindWatchlist, &tu.MockSource{Err: shared.ErrAPIRequest}, Options{})
		defer p.Close()

		v := mountAndWait(t, p)
		if v.State != StateFailed {
			t.Fatalf("expected failed, got %s", v.State)
		}
		if !errors.Is(v.Err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", v.Err)
		}
		if err := p.Toggle(0); err != nil {
			t.Errorf("toggle on failed page should be ignored, got %v", err)
		}
	})

	t.Run("Duplicate IDs Keep First", func(t *testing.T) {
		var buf bytes.Buffer
		src := &tu.MockSource{Movies: []models.Movie{
			{ID: "1", Name: "First", ImageData: tu.PNG(t, 1, 1)},
			{ID: "2", Name: "Other", ImageData: tu.PNG(t, 1, 1)},
			{ID: "1", Name: "Again", ImageData: tu.PNG(t, 1, 1)},
		}}
		p := New(KindRoot, src, Options{Logger: shared.NewLogger(&buf)})
		defer p.Close()

		v := mountAndWait(t, p)
		if len(v.Cards) != 2 || v.Cards[0].Title != "First" || v.Cards[1].Title != "Other" {
			t.Errorf("unexpected cards %+v", v.Cards)
		}
		if !strings.Contains(buf.String(), "dropping duplicate movie") {
			t.Errorf("expected duplicate to be logged, got %q", buf.String())
		}
	})

	t.Run("Selection Toggle", func(t *testing.T) {
		src := &tu.MockSource{Movies: []models.Movie{
			{ID: "a", Name: "A", ImageData: tu.PNG(t, 1, 1)},
			{ID: "b", Name: "B", ImageData: tu.PNG(t, 1, 1)},
		}}
		p := New(KindRoot, src, Options{})
		defer p.Close()
		mountAndWait(t, p)

		selected := func() []int {
			var out []int
			for _, c := range p.Snapshot().Cards {
				if c.Selected {
					out = append(out, c.Index)
				}
			}
			return out
		}

		steps := []struct {
			toggle int
			want   []int
		}{
			{0, []int{0}},
			{0, nil},
			{0, []int{0}},
			{1, []int{1}},
			{1, nil},
		}
		for _, s := range steps {
			if err := p.Toggle(s.toggle); err != nil {
				t.Fatalf("toggle %d: %v", s.toggle, err)
			}
			if got := selected(); fmt.Sprint(got) != fmt.Sprint(s.want) {
				t.Errorf("after toggle %d: selected %v, want %v", s.toggle, got, s.want)
			}
		}
	})

	t.Run("Toggle Out Of Range", func(t *testing.T) {
		p := New(KindRoot, &tu.MockSource{Movies: []models.Movie{{ID: "a", Name: "A", ImageData: tu.PNG(t, 1, 1)}}}, Options{})
		defer p.Close()
		mountAndWait(t, p)

		for _, i := range []int{-1, 1, 99} {
			if err := p.Toggle(i); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("toggle %d: expected ErrInvalidArgument, got %v", i, err)
			}
		}
		if _, ok := p.Selection().Index(); ok {
			t.Error("invalid toggles should not change selection")
		}
	})

	t.Run("Toggle Before Load Is Ignored", func(t *testing.T) {
		gate := make(chan struct{})
		src := &tu.MockSource{Gate: gate, Movies: []models.Movie{{ID: "a", Name: "A", ImageData: tu.PNG(t, 1, 1)}}}
		p := New(KindRoot, src, Options{})
		defer p.Close()

		p.Mount()
		if err := p.Toggle(0); err != nil {
			t.Errorf("expected toggle during load to be ignored, got %v", err)
		}
		close(gate)

		v := mountAndWait(t, p)
		if _, ok := v.Selected(); ok {
			t.Error("toggle during load should not select")
		}
	})

	t.Run("Playback Hint Only When Selected", func(t *testing.T) {
		src := &tu.MockSource{Movies: []models.Movie{{ID: "1", ExternalID: "jf-1", Name: "A", ImageData: tu.PNG(t, 1, 1)}}}
		p := New(KindRoot, src, Options{Playback: shared.PlaybackConfig{Command: "vlc", StreamURL: "http://media/{id}"}})
		defer p.Close()

		v := mountAndWait(t, p)
		if v.Cards[0].PlaybackHint != "" {
			t.Error("unselected card should not carry a playback hint")
		}

		p.Toggle(0)
		sel, ok := p.Snapshot().Selected()
		if !ok {
			t.Fatal("expected a selected card")
		}
		if sel.PlaybackHint != "vlc http://media/jf-1" {
			t.Errorf("unexpected hint %q", sel.PlaybackHint)
		}
	})

	t.Run("Inline Images Need No Fetch", func(t *testing.T) {
		src := &tu.MockSource{Movies: []models.Movie{{ID: "1", Name: "A", ImageData: tu.PNG(t, 3, 4)}}}
		p := New(KindRoot, src, Options{})
		defer p.Close()

		v := mountAndWait(t, p)
		if src.TotalPosterCalls() != 0 {
			t.Errorf("expected no poster fetch, got %d", src.TotalPosterCalls())
		}
		c := v.Cards[0]
		if c.ImageState != ImageResolved || c.Width != 3 || c.Height != 4 || c.ImageURL == "" {
			t.Errorf("unexpected card %+v", c)
		}
	})

	t.Run("Missing Images Fetch Once Per Card", func(t *testing.T) {
		src := &tu.MockSource{
			Movies: []models.Movie{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}},
			Posters: map[string]*models.PosterImage{
				"1": tu.PNGPoster(t, 2, 2),
			},
		}
		p := New(KindRoot, src, Options{})
		defer p.Close()

		v := mountAndWait(t, p)
		if src.PosterCalls("1") != 1 || src.PosterCalls("2") != 1 {
			t.Errorf("expected one fetch per id, got %d and %d", src.PosterCalls("1"), src.PosterCalls("2"))
		}
		if v.Cards[0].ImageState != ImageResolved {
			t.Errorf("expected first poster resolved, got %s", v.Cards[0].ImageState)
		}
		if v.Cards[1].ImageState != ImageFailed || v.Cards[1].ImageURL != "" {
			t.Errorf("expected second poster failed without url, got %+v", v.Cards[1])
		}
	})

	t.Run("Close Releases Handles", func(t *testing.T) {
		reg := posters.NewRegistry("")
		src := &tu.MockSource{
			Movies:  []models.Movie{{ID: "1", Name: "A"}, {ID: "2", Name: "B", ImageData: tu.PNG(t, 1, 1)}},
			Posters: map[string]*models.PosterImage{"1": tu.PNGPoster(t, 1, 1)},
		}
		p := New(KindRoot, src, Options{Resolver: posters.NewResolver(src, reg, posters.ResolverOptions{})})

		mountAndWait(t, p)
		if reg.Len() != 2 {
			t.Fatalf("expected 2 live handles, got %d", reg.Len())
		}

		p.Close()
		p.Close()
		if reg.Len() != 0 {
			t.Errorf("expected all handles released, got %d", reg.Len())
		}
		if err := p.Toggle(0); !errors.Is(err, shared.ErrPageClosed) {
			t.Errorf("expected ErrPageClosed, got %v", err)
		}
	})

	t.Run("Close During Fetch Discards Result", func(t *testing.T) {
		gate := make(chan struct{})
		src := &tu.MockSource{Gate: gate, Movies: []models.Movie{{ID: "1", Name: "A", ImageData: tu.PNG(t, 1, 1)}}}
		p := New(KindRoot, src, Options{})

		p.Mount()
		p.Close()
		close(gate)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("wait should return after close: %v", err)
		}

		time.Sleep(20 * time.Millisecond)
		v := p.Snapshot()
		if v.State != StateFailed || !errors.Is(v.Err, shared.ErrPageClosed) || len(v.Cards) != 0 {
			t.Errorf("expected closed page without cards, got %+v", v)
		}
	})

	t.Run("Close During Poster Fetch Drops Result", func(t *testing.T) {
		reg := posters.NewRegistry("")
		gate := make(chan struct{})
		movieSrc := &tu.MockSource{Movies: []models.Movie{{ID: "1", Name: "A"}}}
		posterSrc := &tu.MockSource{Gate: gate, Posters: map[string]*models.PosterImage{"1": tu.PNGPoster(t, 1, 1)}}
		p := New(KindRoot, movieSrc, Options{Resolver: posters.NewResolver(posterSrc, reg, posters.ResolverOptions{})})

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		p.Mount()
		if err := p.Wait(ctx); err != nil {
			t.Fatal(err)
		}

		p.Close()
		close(gate)
		p.settle()

		if reg.Len() != 0 {
			t.Errorf("late poster should not stay registered, got %d", reg.Len())
		}
	})

	t.Run("Updates", func(t *testing.T) {
		src := &tu.MockSource{Movies: []models.Movie{{ID: "1", Name: "A", ImageData: tu.PNG(t, 1, 1)}}}
		p := New(KindRoot, src, Options{})

		mountAndWait(t, p)
		p.Toggle(0)
		p.Close()

		var phases []Phase
		for u := range p.Updates() {
			phases = append(phases, u.Phase)
		}

		want := []Phase{FetchMovies, MoviesLoaded, PosterResolved, SelectionChanged}
		if fmt.Sprint(phases) != fmt.Sprint(want) {
			t.Errorf("phases %v, want %v", phases, want)
		}
	})

	t.Run("Snapshot Is Not Held Up By Card Binding", func(t *testing.T) {
		src := &tu.MockSource{Movies: []models.Movie{
			{ID: "1", Name: "Alpha", ProductionYear: 1999, CommunityRating: 7.5, ImageData: tu.PNG(t, 2, 2)},
		}}

		var p *Page
		seen := make(chan View, 1)
		hook := &hookWriter{fn: func(line string) {
			if strings.Contains(line, "loaded movies") {
				seen <- p.Snapshot()
			}
		}}
		p = New(KindRoot, src, Options{Logger: shared.NewLogger(hook)})
		defer p.Close()
		p.Mount()

		select {
		case v := <-seen:
			if v.State != StateLoaded || len(v.Cards) != 1 {
				t.Fatalf("unexpected view %+v", v)
			}
			if v.Cards[0].Title != "Alpha" || v.Cards[0].Details != "1999 | 7.5" {
				t.Errorf("card should show its movie before the poster is bound, got %+v", v.Cards[0])
			}
			if v.Cards[0].ImageState != ImagePending {
				t.Errorf("expected pending poster before binding, got %s", v.Cards[0].ImageState)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Snapshot blocked while the page was loading cards")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("page did not finish loading: %v", err)
		}
		if v := p.Snapshot(); v.Cards[0].ImageState != ImageResolved {
			t.Errorf("expected inline poster resolved after Wait, got %s", v.Cards[0].ImageState)
		}
	})

	t.Run("Updates Never Block", func(t *testing.T) {
		movies := make([]models.Movie, 10)
		for i := range movies {
			movies[i] = models.Movie{ID: fmt.Sprint(i), Name: "M", ImageData: tu.PNG(t, 1, 1)}
		}
		p := New(KindRoot, &tu.MockSource{Movies: movies}, Options{UpdateBuffer: 1})
		defer p.Close()

		v := mountAndWait(t, p)
		if len(v.Cards) != 10 {
			t.Errorf("expected 10 cards, got %d", len(v.Cards))
		}
	})
}

func TestPageAgainstBackend(t *testing.T) {
	png := tu.PNG(t, 8, 12)
	var imageHits atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /movies/random", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"Id":"1","Name":"Alpha","ProductionYear":1999,"CommunityRating":7.5}]`))
	})
	mux.HandleFunc("GET /image", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "1" {
			t.Errorf("unexpected image id %q", r.URL.Query().Get("id"))
		}
		imageHits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	backend := services.NewBackendService(services.BackendOptions{BaseURL: server.URL, Logger: log.New(&bytes.Buffer{})})
	p := New(KindRoot, backend, Options{})
	defer p.Close()

	v := mountAndWait(t, p)
	if len(v.Cards) != 1 {
		t.Fatalf("expected one card, got %d", len(v.Cards))
	}
	c := v.Cards[0]
	if c.Title != "Alpha" || c.Details != "1999 | 7.5" {
		t.Errorf("unexpected card %q %q", c.Title, c.Details)
	}

	if err := p.Toggle(0); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	sel, ok := p.Snapshot().Selected()
	if !ok {
		t.Fatal("expected selected card")
	}
	if imageHits.Load() != 1 {
		t.Errorf("expected one /image request, got %d", imageHits.Load())
	}
	if sel.ImageState != ImageResolved || sel.Width != 8 || sel.Height != 12 {
		t.Errorf("unexpected image state %+v", sel)
	}
	want := "mpv http://192.168.1.157:8096/Videos/1/stream.mkv"
	if sel.PlaybackHint != want {
		t.Errorf("playback hint %q, want %q", sel.PlaybackHint, want)
	}
}

type hookWriter struct {
	fn func(line string)
}

func (w *hookWriter) Write(b []byte) (int, error) {
	w.fn(string(b))
	return len(b), nil
}
