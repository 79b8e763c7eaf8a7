package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reelpick/internal/pages"
)

var (
	_ list.Item         = cardItem{}
	_ list.ItemDelegate = cardDelegate{}
)

// cardItem wraps [pages.CardView] to implement [list.Item].
type cardItem struct {
	card pages.CardView
}

func (i cardItem) FilterValue() string { return i.card.Title }
func (i cardItem) Title() string       { return i.card.Title }
func (i cardItem) Description() string { return i.card.Details }

// posterStatus describes the card image: pending, "WxH type", or unavailable.
func posterStatus(c pages.CardView) string {
	switch c.ImageState {
	case pages.ImageResolved:
		return fmt.Sprintf("%dx%d %s", c.Width, c.Height, c.ContentType)
	case pages.ImageFailed:
		return "unavailable"
	default:
		return "pending"
	}
}

// cardDelegate draws each movie as a bordered card.
type cardDelegate struct{}

func (d cardDelegate) Height() int                         { return 5 }
func (d cardDelegate) Spacing() int                        { return 0 }
func (d cardDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d cardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(cardItem)
	if !ok {
		return
	}
	c := it.card

	title := c.Title
	if c.Selected {
		title = "★ " + title
	}

	var lines []string
	lines = append(lines, styles.title.UnsetMarginBottom().Render(title))
	lines = append(lines, c.Details)

	status := "poster: " + posterStatus(c)
	switch c.ImageState {
	case pages.ImageResolved:
		lines = append(lines, styles.ok.UnsetBold().Render(status))
	case pages.ImageFailed:
		lines = append(lines, styles.warn.Render(status))
	default:
		lines = append(lines, styles.help.Render(status))
	}

	style := styles.card
	switch {
	case c.Selected:
		style = styles.selected
	case index == m.Index():
		style = styles.cursor
	}
	if width := m.Width() - 4; width > 0 {
		style = style.Width(width)
	}

	fmt.Fprint(w, style.Render(strings.Join(lines, "\n")))
}
