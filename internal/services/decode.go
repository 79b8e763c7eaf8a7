package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/reelpick/internal/models"
	"github.com/desertthunder/reelpick/internal/shared"
)

// flexID accepts an id written as a JSON string or number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// movieRecord is the movie half of a pair, and also the shape of a flat record.
type movieRecord struct {
	ID              flexID       `json:"Id"`
	JellyfinID      flexID       `json:"JellyfinId"`
	Name            string       `json:"Name"`
	Type            string       `json:"Type,omitempty"`
	ProductionYear  int          `json:"ProductionYear"`
	CommunityRating float64      `json:"CommunityRating"`
	Image           *imageRecord `json:"Image,omitempty"`
}

type imageRecord struct {
	MovieID   flexID `json:"MovieId"`
	ImageData string `json:"ImageData"`
}

// wireRecord is one array element: flat fields at the top level, or a Movie/MovieImage pair.
type wireRecord struct {
	movieRecord
	Movie      *movieRecord `json:"Movie,omitempty"`
	MovieImage *imageRecord `json:"MovieImage,omitempty"`
}

// DecodeMovies decodes a backend movie list, preserving backend order.
func DecodeMovies(body []byte) ([]models.Movie, error) {
	var records []wireRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: movie list: %v", shared.ErrDecode, err)
	}

	movies := make([]models.Movie, 0, len(records))
	for i, rec := range records {
		m, err := rec.toMovie()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", shared.ErrDecode, i, err)
		}
		movies = append(movies, m)
	}
	return movies, nil
}

func (r wireRecord) toMovie() (models.Movie, error) {
	src, img := r.movieRecord, r.movieRecord.Image
	var external flexID
	if r.Movie != nil {
		src, img = *r.Movie, r.MovieImage
		external = r.Movie.JellyfinID
	}

	m := models.Movie{
		ID:              string(src.ID),
		ExternalID:      string(external),
		Name:            src.Name,
		ProductionYear:  src.ProductionYear,
		CommunityRating: src.CommunityRating,
	}

	if img != nil {
		data, err := DecodeImageData(img.ImageData)
		if err != nil {
			return models.Movie{}, err
		}
		m.ImageData = data
	}

	return m, m.Validate()
}

// DecodeImageData converts base64 (standard alphabet) image text into raw bytes. Empty input yields nil.
func DecodeImageData(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: image data: %v", shared.ErrDecode, err)
	}
	return data, nil
}

// EncodeImageData is the inverse of [DecodeImageData].
func EncodeImageData(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}
