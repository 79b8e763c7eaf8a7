// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/reelpick/internal/models"
)

// MockSource is a test double for [services.MovieSource] and [services.PosterSource].
//
// Gate, when set, blocks every call until it is closed or the context ends.
type MockSource struct {
	Movies    []models.Movie
	Watchlist []models.Movie
	Err       error
	Posters   map[string]*models.PosterImage
	PosterErr error
	Gate      chan struct{}

	mu           sync.Mutex
	randomCalls  int
	watchCalls   int
	posterCalls  map[string]int
	posterTotals atomic.Int64
}

func (m *MockSource) wait(ctx context.Context) error {
	if m.Gate == nil {
		return nil
	}
	select {
	case <-m.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockSource) FetchRandomMovies(ctx context.Context) ([]models.Movie, error) {
	m.mu.Lock()
	m.randomCalls++
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Movie(nil), m.Movies...), nil
}

func (m *MockSource) FetchRandomWatchlistMovies(ctx context.Context) ([]models.Movie, error) {
	m.mu.Lock()
	m.watchCalls++
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Movie(nil), m.Watchlist...), nil
}

func (m *MockSource) FetchMoviePoster(ctx context.Context, id string) (*models.PosterImage, error) {
	m.mu.Lock()
	if m.posterCalls == nil {
		m.posterCalls = make(map[string]int)
	}
	m.posterCalls[id]++
	m.mu.Unlock()
	m.posterTotals.Add(1)

	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.PosterErr != nil {
		return nil, m.PosterErr
	}
	p, ok := m.Posters[id]
	if !ok {
		return nil, errors.New("no poster for " + id)
	}
	return &models.PosterImage{Data: p.Data, ContentType: p.ContentType}, nil
}

// RandomCalls returns how many times FetchRandomMovies ran.
func (m *MockSource) RandomCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.randomCalls
}

// WatchlistCalls returns how many times FetchRandomWatchlistMovies ran.
func (m *MockSource) WatchlistCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.watchCalls
}

// PosterCalls returns how many times the poster for id was requested.
func (m *MockSource) PosterCalls(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.posterCalls[id]
}

// TotalPosterCalls returns the number of poster requests across all ids.
func (m *MockSource) TotalPosterCalls() int {
	return int(m.posterTotals.Load())
}

// PNG encodes a solid w×h PNG.
func PNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// PNGPoster wraps [PNG] in a [models.PosterImage].
func PNGPoster(t testing.TB, w, h int) *models.PosterImage {
	return &models.PosterImage{Data: PNG(t, w, h), ContentType: "image/png"}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
