package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reelpick/internal/pages"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	page *pages.Page
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPageUpdate MsgKind = iota
	MsgUpdatesClosed
)

// pageUpdateMsg is the constructor for [MsgPageUpdate]
func pageUpdateMsg(p *pages.Page, u pages.Update) Msg {
	return Msg{kind: MsgPageUpdate, page: p, data: u}
}

// updatesClosedMsg is the constructor for [MsgUpdatesClosed]
func updatesClosedMsg(p *pages.Page) Msg {
	return Msg{kind: MsgUpdatesClosed, page: p}
}

// waitForUpdate blocks on the next change notification from p.
func waitForUpdate(p *pages.Page) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-p.Updates()
		if !ok {
			return updatesClosedMsg(p)
		}
		return pageUpdateMsg(p, u)
	}
}
