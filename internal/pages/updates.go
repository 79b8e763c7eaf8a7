package pages

import "fmt"

// Update is a change notification for viewers that redraw on change.
type Update struct {
	Phase   Phase
	Index   int    // card index, or -1 for page-level updates
	Message string // human-readable message for display
}

// Phase enumerates what changed.
type Phase int

const (
	FetchMovies Phase = iota
	MoviesLoaded
	MoviesFailed
	PosterResolved
	PosterFailed
	SelectionChanged
)

func (p Phase) String() string {
	switch p {
	case FetchMovies:
		return "fetch_movies"
	case MoviesLoaded:
		return "movies_loaded"
	case MoviesFailed:
		return "movies_failed"
	case PosterResolved:
		return "poster_resolved"
	case PosterFailed:
		return "poster_failed"
	case SelectionChanged:
		return "selection_changed"
	default:
		return ""
	}
}

func fetchMoviesUpdate(k Kind) Update {
	return Update{Phase: FetchMovies, Index: -1, Message: fmt.Sprintf("Fetching %s...", k.Title())}
}

func moviesLoadedUpdate(n int) Update {
	return Update{Phase: MoviesLoaded, Index: -1, Message: fmt.Sprintf("Loaded %d movies", n)}
}

func moviesFailedUpdate(err error) Update {
	return Update{Phase: MoviesFailed, Index: -1, Message: fmt.Sprintf("Failed to load movies: %v", err)}
}

func posterResolvedUpdate(i int, name string) Update {
	return Update{Phase: PosterResolved, Index: i, Message: fmt.Sprintf("Poster ready: %s", name)}
}

func posterFailedUpdate(i int, name string, err error) Update {
	return Update{Phase: PosterFailed, Index: i, Message: fmt.Sprintf("Poster unavailable: %s: %v", name, err)}
}

func selectionChangedUpdate(s Selection) Update {
	i, ok := s.Index()
	if !ok {
		return Update{Phase: SelectionChanged, Index: -1, Message: "Selection cleared"}
	}
	return Update{Phase: SelectionChanged, Index: i, Message: fmt.Sprintf("Selected card %d", i)}
}
