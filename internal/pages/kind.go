package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/reelpick/internal/models"
	"github.com/desertthunder/reelpick/internal/services"
	"github.com/desertthunder/reelpick/internal/shared"
)

// Kind selects the movie source of a page.
type Kind int

const (
	KindRoot Kind = iota
	KindAll
	KindWatchlist
)

// Kinds lists every page variant in navigation order.
func Kinds() []Kind {
	return []Kind{KindRoot, KindAll, KindWatchlist}
}

// String is the kind's slug, used in routes and flags.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "home"
	case KindAll:
		return "all"
	case KindWatchlist:
		return "watchlist"
	default:
		return ""
	}
}

// Path is the navigation route of the kind.
func (k Kind) Path() string {
	switch k {
	case KindAll:
		return "/all"
	case KindWatchlist:
		return "/watchlist"
	default:
		return "/"
	}
}

// Title is a human-readable heading.
func (k Kind) Title() string {
	switch k {
	case KindAll:
		return "All movies"
	case KindWatchlist:
		return "Watchlist"
	default:
		return "Recommendations"
	}
}

// ParseKind accepts a slug ("home", "all", "watchlist") or a route ("/", "/all", "/watchlist").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home", "root", "", "/":
		return KindRoot, nil
	case "all", "/all":
		return KindAll, nil
	case "watchlist", "/watchlist":
		return KindWatchlist, nil
	default:
		return 0, fmt.Errorf("%w: unknown page %q", shared.ErrInvalidArgument, s)
	}
}

// fetcher returns the backend operation behind the kind.
func (k Kind) fetcher(src services.MovieSource) func(context.Context) ([]models.Movie, error) {
	if k == KindWatchlist {
		return src.FetchRandomWatchlistMovies
	}
	return src.FetchRandomMovies
}
