package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reelpick/internal/pages"
	"github.com/desertthunder/reelpick/internal/services"
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	source  services.MovieSource
	opts    pages.Options
	kind    pages.Kind
	page    *pages.Page
	view    pages.View
	cards   list.Model
	width   int
	height  int
	help    help.Model
	keys    keyMap
	stop    func() bool
	lastErr error
}

// NewModel creates a TUI model that shows a page of kind k loaded from source.
func NewModel(ctx context.Context, source services.MovieSource, k pages.Kind, opts pages.Options) *Model {
	cards := list.New(nil, cardDelegate{}, 80, 16)
	cards.SetShowTitle(false)
	cards.SetShowStatusBar(false)
	cards.SetShowHelp(false)
	cards.SetFilteringEnabled(false)
	cards.DisableQuitKeybindings()

	return &Model{
		ctx:    ctx,
		source: source,
		opts:   opts,
		kind:   k,
		cards:  cards,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init mounts the first page.
func (m *Model) Init() tea.Cmd {
	return m.open(m.kind)
}

// Page returns the page on screen.
func (m *Model) Page() *pages.Page {
	return m.page
}

// Close tears down the page on screen.
func (m *Model) Close() {
	m.release()
}

func (m *Model) release() {
	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
	if m.page != nil {
		m.page.Close()
	}
}

// open replaces the current page with a freshly mounted one of kind k.
func (m *Model) open(k pages.Kind) tea.Cmd {
	m.release()
	m.kind = k
	m.page = pages.New(k, m.source, m.opts)
	m.stop = context.AfterFunc(m.ctx, m.page.Close)
	m.page.Mount()
	m.cards.Select(0)
	m.refresh()

	return waitForUpdate(m.page)
}

func (m *Model) refresh() tea.Cmd {
	m.view = m.page.Snapshot()

	items := make([]list.Item, len(m.view.Cards))
	for i, c := range m.view.Cards {
		items[i] = cardItem{card: c}
	}
	return m.cards.SetItems(items)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.cards.SetSize(msg.Width, max(msg.Height-8, 0))
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		if msg.page != m.page {
			return m, nil
		}
		switch msg.kind {
		case MsgPageUpdate:
			return m, tea.Batch(m.refresh(), waitForUpdate(m.page))
		case MsgUpdatesClosed:
			return m, m.refresh()
		}
	}

	var cmd tea.Cmd
	m.cards, cmd = m.cards.Update(msg)
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggle):
		if m.view.State != pages.StateLoaded || len(m.view.Cards) == 0 {
			return m, nil
		}
		m.lastErr = m.page.Toggle(m.cards.Index())
		return m, m.refresh()
	case key.Matches(msg, m.keys.next):
		kinds := pages.Kinds()
		next := kinds[(int(m.kind)+1)%len(kinds)]
		return m, m.open(next)
	}

	var cmd tea.Cmd
	m.cards, cmd = m.cards.Update(msg)
	return m, cmd
}

// View renders the UI based on the current page state.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderNav())
	b.WriteString("\n")
	b.WriteString(styles.title.Render(m.kind.Title()))
	b.WriteString("\n")

	switch m.view.State {
	case pages.StateLoading:
		b.WriteString("Loading movies...\n")
	case pages.StateFailed:
		b.WriteString(styles.err.Render(fmt.Sprintf("Failed to load movies: %v", m.view.Err)))
		b.WriteString("\n")
	default:
		if len(m.view.Cards) == 0 {
			b.WriteString("No movies.\n")
			break
		}
		b.WriteString(m.cards.View())
		b.WriteString("\n")
		if sel, ok := m.view.Selected(); ok {
			b.WriteString(m.renderHint(sel))
			b.WriteString("\n")
		}
	}

	if m.lastErr != nil {
		b.WriteString(styles.warn.Render(m.lastErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *Model) renderNav() string {
	parts := make([]string, 0, len(pages.Kinds()))
	for _, k := range pages.Kinds() {
		if k == m.kind {
			parts = append(parts, styles.ok.Render(k.Title()))
		} else {
			parts = append(parts, styles.help.Render(k.Title()))
		}
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderHint(c pages.CardView) string {
	body := fmt.Sprintf("%s (%s)\n%s", c.Title, c.Details, c.PlaybackHint)
	return styles.hint.Render(body)
}
