package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelpick/internal/models"
	"github.com/desertthunder/reelpick/internal/shared"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "http://localhost:8080"

// BackendOptions configures a [BackendService]. Zero values fall back to the defaults of the example config.
type BackendOptions struct {
	BaseURL       string
	RandomPath    string
	WatchlistPath string
	ImagePath     string

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	// PosterRate is poster requests per second; zero or less disables limiting.
	PosterRate  float64
	PosterBurst int

	FailureThreshold uint32
	OpenTimeout      time.Duration

	Client *http.Client
	Logger *log.Logger
}

// OptionsFromConfig maps the [backend] config section onto [BackendOptions].
func OptionsFromConfig(cfg shared.BackendConfig) BackendOptions {
	return BackendOptions{
		BaseURL:          cfg.URL,
		RandomPath:       cfg.RandomPath,
		WatchlistPath:    cfg.WatchlistPath,
		ImagePath:        cfg.ImagePath,
		Timeout:          cfg.Timeout.Duration,
		PosterRate:       cfg.PosterRate,
		PosterBurst:      cfg.PosterBurst,
		FailureThreshold: cfg.Breaker.FailureThreshold,
		OpenTimeout:      cfg.Breaker.OpenTimeout.Duration,
	}
}

// BackendService is the fetch client for the movie backend.
type BackendService struct {
	baseURL       string
	randomPath    string
	watchlistPath string
	imagePath     string
	timeout       time.Duration
	httpClient    *http.Client
	limiter       *rate.Limiter
	breaker       *gobreaker.CircuitBreaker[*rawResponse]
	logger        *log.Logger
}

// rawResponse is a fully read response.
type rawResponse struct {
	status int
	header http.Header
	body   []byte
}

// errServerStatus marks 5xx responses so they count against the breaker.
var errServerStatus = errors.New("server error status")

// NewBackendService creates a fetch client for the configured backend.
func NewBackendService(opts BackendOptions) *BackendService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.RandomPath == "" {
		opts.RandomPath = "/movies/random"
	}
	if opts.WatchlistPath == "" {
		opts.WatchlistPath = "/movies/watchlist/random"
	}
	if opts.ImagePath == "" {
		opts.ImagePath = "/image"
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}

	limit := rate.Inf
	if opts.PosterRate > 0 {
		limit = rate.Limit(opts.PosterRate)
	}
	burst := max(opts.PosterBurst, 1)

	s := &BackendService{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		randomPath:    opts.RandomPath,
		watchlistPath: opts.WatchlistPath,
		imagePath:     opts.ImagePath,
		timeout:       opts.Timeout,
		httpClient:    opts.Client,
		limiter:       rate.NewLimiter(limit, burst),
		logger:        opts.Logger,
	}

	threshold := opts.FailureThreshold
	s.breaker = gobreaker.NewCircuitBreaker[*rawResponse](gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return s
}

// BaseURL returns the backend origin without a trailing slash.
func (s *BackendService) BaseURL() string {
	return s.baseURL
}

// BreakerState reports the circuit breaker state ("closed", "half-open", "open").
func (s *BackendService) BreakerState() string {
	return s.breaker.State().String()
}

// FetchRandomMovies returns the backend's random selection in backend order.
func (s *BackendService) FetchRandomMovies(ctx context.Context) ([]models.Movie, error) {
	return s.fetchMovies(ctx, s.randomPath)
}

// FetchRandomWatchlistMovies returns the backend's random watchlist selection in backend order.
func (s *BackendService) FetchRandomWatchlistMovies(ctx context.Context) ([]models.Movie, error) {
	return s.fetchMovies(ctx, s.watchlistPath)
}

func (s *BackendService) fetchMovies(ctx context.Context, path string) ([]models.Movie, error) {
	resp, err := s.do(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}

	movies, err := DecodeMovies(resp.body)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("fetched movies", "path", path, "count", len(movies))
	return movies, nil
}

// FetchMoviePoster fetches the binary poster for the movie with the given id.
func (s *BackendService) FetchMoviePoster(ctx context.Context, id string) (*models.PosterImage, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: poster id is required", shared.ErrInvalidArgument)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: poster %s: %w", shared.ErrAPIRequest, id, err)
	}

	resp, err := s.do(ctx, s.imagePath, url.Values{"id": {id}})
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %w: poster %s", shared.ErrPosterNotFound, shared.ErrAPIRequest, id)
	}
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("poster %s: %w", id, err)
	}
	if len(resp.body) == 0 {
		return nil, fmt.Errorf("%w: poster %s: empty body", shared.ErrDecode, id)
	}

	poster := &models.PosterImage{Data: resp.body, ContentType: resp.header.Get("Content-Type")}
	poster.ContentType = poster.DetectedType()
	return poster, nil
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Raw performs an unchecked GET to path; non-2xx statuses are returned, not converted to errors.
func (s *BackendService) Raw(ctx context.Context, path string) (*APIResponse, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	resp, err := s.send(ctx, s.baseURL+path)
	if err != nil {
		return nil, err
	}

	apiResp := &APIResponse{StatusCode: resp.status, Headers: resp.header, Body: resp.body}

	var jsonData any
	if err := json.Unmarshal(resp.body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}
	return apiResp, nil
}

// do sends a GET through the circuit breaker.
func (s *BackendService) do(ctx context.Context, path string, query url.Values) (*rawResponse, error) {
	target := s.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var last *rawResponse
	_, err := s.breaker.Execute(func() (*rawResponse, error) {
		resp, err := s.send(ctx, target)
		if err != nil {
			return nil, err
		}
		last = resp
		if resp.status >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	case errors.Is(err, errServerStatus):
		return last, nil
	case err != nil:
		return nil, err
	}
	return last, nil
}

// send performs one GET and reads the whole body. No retries.
func (s *BackendService) send(ctx context.Context, target string) (*rawResponse, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", shared.ErrAPIRequest, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, requestError("request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, requestError("failed to read response", err)
	}

	return &rawResponse{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

// requestError wraps a transport failure in [shared.ErrAPIRequest], adding [shared.ErrTimeout]
// when a deadline ran out.
func requestError(msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: %s: %w", shared.ErrAPIRequest, shared.ErrTimeout, msg, err)
	}
	return fmt.Errorf("%w: %s: %w", shared.ErrAPIRequest, msg, err)
}

func checkStatus(resp *rawResponse) error {
	if resp.status < 200 || resp.status > 299 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.status)
	}
	return nil
}
