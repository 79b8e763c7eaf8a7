package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reelpick/internal/models"
	"github.com/desertthunder/reelpick/internal/pages"
	"github.com/desertthunder/reelpick/internal/shared"
	tu "github.com/desertthunder/reelpick/internal/testing"
)

func loadedModel(t *testing.T, src *tu.MockSource, k pages.Kind) *Model {
	t.Helper()
	m := NewModel(context.Background(), src, k, pages.Options{Playback: shared.DefaultConfig().Playback})
	t.Cleanup(m.Close)

	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.Page().Wait(ctx); err != nil {
		t.Fatalf("page did not load: %v", err)
	}
	m.refresh()
	return m
}

func TestModel(t *testing.T) {
	movies := func(t *testing.T) []models.Movie {
		return []models.Movie{
			{ID: "1", ExternalID: "jf-1", Name: "Alpha", ProductionYear: 1999, CommunityRating: 7.5, ImageData: tu.PNG(t, 3, 2)},
			{ID: "2", Name: "Beta", ProductionYear: 2004, CommunityRating: 6, ImageData: []byte("not an image")},
		}
	}

	t.Run("Renders Cards", func(t *testing.T) {
		m := loadedModel(t, &tu.MockSource{Movies: movies(t)}, pages.KindRoot)

		out := m.View()
		for _, want := range []string{"Recommendations", "Alpha", "1999 | 7.5", "poster: 3x2 image/png", "poster: unavailable"} {
			if !strings.Contains(out, want) {
				t.Errorf("view missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "mpv") {
			t.Error("no hint should render before selection")
		}
	})

	t.Run("Toggle Shows Hint", func(t *testing.T) {
		m := loadedModel(t, &tu.MockSource{Movies: movies(t)}, pages.KindAll)

		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if sel, ok := m.Page().Selection().Index(); !ok || sel != 0 {
			t.Fatalf("expected card 0 selected, got %d %v", sel, ok)
		}
		if out := m.View(); !strings.Contains(out, "mpv http://192.168.1.157:8096/Videos/jf-1/stream.mkv") {
			t.Errorf("expected playback hint:\n%s", out)
		}

		m.Update(tea.KeyMsg{Type: tea.KeySpace})
		if _, ok := m.Page().Selection().Index(); ok {
			t.Error("second toggle should clear the selection")
		}
	})

	t.Run("Cursor Moves Selection Target", func(t *testing.T) {
		m := loadedModel(t, &tu.MockSource{Movies: movies(t)}, pages.KindAll)

		m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if sel, ok := m.Page().Selection().Index(); !ok || sel != 1 {
			t.Errorf("expected card 1 selected, got %d %v", sel, ok)
		}
	})

	t.Run("Error State", func(t *testing.T) {
		m := loadedModel(t, &tu.MockSource{Err: errors.New("backend down")}, pages.KindWatchlist)

		if out := m.View(); !strings.Contains(out, "Failed to load movies: backend down") {
			t.Errorf("expected error text:\n%s", out)
		}
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if _, ok := m.Page().Selection().Index(); ok {
			t.Error("toggle should be ignored on a failed page")
		}
	})

	t.Run("Next Page Closes Previous", func(t *testing.T) {
		src := &tu.MockSource{Movies: movies(t), Watchlist: movies(t)[:1]}
		m := loadedModel(t, src, pages.KindAll)
		first := m.Page()

		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		if !first.Closed() {
			t.Error("expected previous page closed")
		}
		if m.Page().Kind() != pages.KindWatchlist {
			t.Errorf("expected watchlist, got %s", m.Page().Kind())
		}
	})

	t.Run("Stale Updates Ignored", func(t *testing.T) {
		m := loadedModel(t, &tu.MockSource{Movies: movies(t)}, pages.KindAll)
		other := pages.New(pages.KindAll, &tu.MockSource{}, pages.Options{})
		defer other.Close()

		if _, cmd := m.Update(pageUpdateMsg(other, pages.Update{})); cmd != nil {
			t.Error("expected no command for another page's update")
		}
	})

	t.Run("Updates Drive Redraws", func(t *testing.T) {
		m := loadedModel(t, &tu.MockSource{Movies: movies(t)}, pages.KindAll)

		msg := waitForUpdate(m.Page())()
		if got, ok := msg.(Msg); !ok || got.kind != MsgPageUpdate {
			t.Fatalf("expected page update, got %#v", msg)
		}
		if _, cmd := m.Update(msg); cmd == nil {
			t.Error("expected the model to keep listening")
		}
	})

	t.Run("Quit", func(t *testing.T) {
		m := loadedModel(t, &tu.MockSource{Movies: movies(t)}, pages.KindAll)

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
		if !m.Page().Closed() {
			t.Error("quitting should close the page")
		}
	})
}

func TestPosterStatus(t *testing.T) {
	tests := []struct {
		card pages.CardView
		want string
	}{
		{card: pages.CardView{ImageState: pages.ImagePending}, want: "pending"},
		{card: pages.CardView{ImageState: pages.ImageFailed}, want: "unavailable"},
		{card: pages.CardView{ImageState: pages.ImageResolved, Width: 400, Height: 600, ContentType: "image/jpeg"}, want: "400x600 image/jpeg"},
	}
	for _, tt := range tests {
		if got := posterStatus(tt.card); got != tt.want {
			t.Errorf("posterStatus(%v) = %q, want %q", tt.card.ImageState, got, tt.want)
		}
	}
}
