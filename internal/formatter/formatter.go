// package formatter renders movie lists as JSON, CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/reelpick/internal/models"
	"github.com/desertthunder/reelpick/internal/shared"
)

// Format names an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat accepts a format name or common alias ("md", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: format %q", shared.ErrInvalidFlag, s)
	}
}

// MovieList is a titled list of movies. Hint, when set, adds the playback hint to each entry.
type MovieList struct {
	Title  string
	Movies []models.Movie
	Hint   func(models.Movie) string
}

func (l MovieList) hint(m models.Movie) string {
	if l.Hint == nil {
		return ""
	}
	return l.Hint(m)
}

type movieJSON struct {
	ID              string  `json:"id"`
	ExternalID      string  `json:"external_id,omitempty"`
	Name            string  `json:"name"`
	ProductionYear  int     `json:"production_year"`
	CommunityRating float64 `json:"community_rating"`
	Details         string  `json:"details"`
	HasImage        bool    `json:"has_image"`
	PlaybackHint    string  `json:"playback_hint,omitempty"`
}

// Render dispatches to the exporter for f.
func Render(list MovieList, f Format, pretty bool) ([]byte, error) {
	switch f {
	case FormatJSON:
		return ExportToJSON(list, pretty)
	case FormatCSV:
		return ExportToCSV(list)
	case FormatMarkdown:
		return ExportToMarkdown(list)
	case FormatText:
		return ExportToText(list)
	default:
		return nil, fmt.Errorf("%w: format %q", shared.ErrInvalidFlag, f)
	}
}

// ExportToJSON encodes the list as an array of movie objects.
func ExportToJSON(list MovieList, pretty bool) ([]byte, error) {
	out := make([]movieJSON, len(list.Movies))
	for i, m := range list.Movies {
		out[i] = movieJSON{
			ID:              m.ID,
			ExternalID:      m.ExternalID,
			Name:            m.Name,
			ProductionYear:  m.ProductionYear,
			CommunityRating: m.CommunityRating,
			Details:         m.Details(),
			HasImage:        m.HasImage(),
			PlaybackHint:    list.hint(m),
		}
	}
	return shared.MarshalJSON(out, pretty)
}

// ExportToCSV converts the list to CSV with columns: ID, Name, Year, Rating, External ID, Playback
func ExportToCSV(list MovieList) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Year", "Rating", "External ID", "Playback"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range list.Movies {
		record := []string{
			m.ID,
			m.Name,
			strconv.Itoa(m.ProductionYear),
			models.FormatRating(m.CommunityRating),
			m.ExternalID,
			list.hint(m),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a heading and a numbered list.
func ExportToMarkdown(list MovieList) ([]byte, error) {
	var buf bytes.Buffer

	if list.Title != "" {
		fmt.Fprintf(&buf, "# %s\n\n", list.Title)
	}
	fmt.Fprintf(&buf, "**Movies**: %d\n\n", len(list.Movies))

	for i, m := range list.Movies {
		fmt.Fprintf(&buf, "%d. **%s** (%s)\n", i+1, m.Name, m.Details())
		if h := list.hint(m); h != "" {
			fmt.Fprintf(&buf, "   `%s`\n", h)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts the list to plain text.
func ExportToText(list MovieList) ([]byte, error) {
	var buf bytes.Buffer

	if list.Title != "" {
		fmt.Fprintf(&buf, "%s\n", list.Title)
	}
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(list.Movies))

	for i, m := range list.Movies {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, m.Name, m.Details())
		if h := list.hint(m); h != "" {
			fmt.Fprintf(&buf, "   %s\n", h)
		}
	}

	return buf.Bytes(), nil
}

// WriteExport renders the list and writes it to path.
func WriteExport(list MovieList, f Format, pretty bool, path string) error {
	data, err := Render(list, f, pretty)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return nil
}
