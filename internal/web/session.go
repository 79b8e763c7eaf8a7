package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/desertthunder/reelpick/internal/pages"
	"github.com/desertthunder/reelpick/internal/shared"
)

// SessionCookie names the cookie that carries the session id.
const SessionCookie = "reelpick_session"

const defaultSessionTTL = 30 * time.Minute

type session struct {
	id       string
	page     *pages.Page
	lastSeen time.Time
}

// Sessions maps browser sessions to their current page. Each session owns at most one page;
// replacing or expiring it closes the page.
type Sessions struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]*session
	now   func() time.Time
}

// NewSessions creates a store whose idle sessions expire after ttl.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Sessions{ttl: ttl, items: make(map[string]*session), now: time.Now}
}

// Page returns the session's current page.
func (s *Sessions) Page(id string) (*pages.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.items[id]
	if !ok || s.expiredLocked(sess) {
		return nil, shared.ErrSessionNotFound
	}
	sess.lastSeen = s.now()
	if sess.page == nil {
		return nil, shared.ErrSessionNotFound
	}
	return sess.page, nil
}

// Replace installs page as the session's current page, creating the session if needed,
// and closes the page it replaces.
func (s *Sessions) Replace(id string, page *pages.Page) {
	s.mu.Lock()
	sess, ok := s.items[id]
	if !ok {
		sess = &session{id: id}
		s.items[id] = sess
	}
	old := sess.page
	sess.page, sess.lastSeen = page, s.now()
	s.mu.Unlock()

	if old != nil && old != page {
		old.Close()
	}
}

// Sweep removes idle sessions and closes their pages. It returns the number removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	var stale []*session
	for id, sess := range s.items {
		if s.expiredLocked(sess) {
			stale = append(stale, sess)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		if sess.page != nil {
			sess.page.Close()
		}
	}
	return len(stale)
}

// Janitor sweeps every interval until ctx ends.
func (s *Sessions) Janitor(ctx context.Context, interval time.Duration, onSweep func(n int)) {
	if interval <= 0 {
		interval = s.ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// CloseAll drops every session and closes its page.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	items := s.items
	s.items = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range items {
		if sess.page != nil {
			sess.page.Close()
		}
	}
}

func (s *Sessions) expiredLocked(sess *session) bool {
	return s.now().Sub(sess.lastSeen) > s.ttl
}

// sessionID reads the session cookie, issuing a new id when it is missing or malformed.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && shared.IsValidID(c.Value) {
		return c.Value
	}

	id := shared.GenerateID()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// existingSessionID reads the session cookie without issuing one.
func existingSessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || !shared.IsValidID(c.Value) {
		return "", false
	}
	return c.Value, true
}
