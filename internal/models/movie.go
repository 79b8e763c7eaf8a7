package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/reelpick/internal/shared"
)

// Movie is one recommended movie.
//
// ID is unique within a fetched list and is the argument to poster lookups.
// ExternalID is the media-server id used for playback.
type Movie struct {
	ID              string  `json:"id"`
	ExternalID      string  `json:"external_id,omitempty"`
	Name            string  `json:"name"`
	ProductionYear  int     `json:"production_year"`
	CommunityRating float64 `json:"community_rating"`
	ImageData       []byte  `json:"-"`
}

// Validate rejects movies that cannot be rendered or keyed.
func (m Movie) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("%w: movie id is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: movie %s has no name", shared.ErrInvalidInput, m.ID)
	}
	return nil
}

// HasImage reports whether the movie carries inline poster bytes.
func (m Movie) HasImage() bool {
	return len(m.ImageData) > 0
}

// Details renders "<year> | <rating>", e.g. "1999 | 7.5".
func (m Movie) Details() string {
	return strconv.Itoa(m.ProductionYear) + " | " + FormatRating(m.CommunityRating)
}

// PlaybackRef returns the id to interpolate into the playback hint.
func (m Movie) PlaybackRef() string {
	if m.ExternalID != "" {
		return m.ExternalID
	}
	return m.ID
}

// FormatRating prints a rating in its shortest exact decimal form.
func FormatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}
