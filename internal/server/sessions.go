// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/paper-search/internal/searchpage"
)

const sessionCookie = "paper_search_session"

// sessionStore maps a browser session id to its mounted search page.
// Evicted or expired pages are closed.
type sessionStore struct {
	pages *expirable.LRU[string, *searchpage.Page]
	ttl   time.Duration
}

func newSessionStore(size int, ttl time.Duration, metrics *Metrics, log logrus.FieldLogger) *sessionStore {
	onEvict := func(id string, p *searchpage.Page) {
		p.Close()
		metrics.SessionsActive.Dec()
		log.WithField("session", id).Debug("page session closed")
	}
	return &sessionStore{
		pages: expirable.NewLRU[string, *searchpage.Page](size, onEvict, ttl),
		ttl:   ttl,
	}
}

// lookup returns the page for the request's session cookie, refreshing its
// lifetime.
func (s *sessionStore) lookup(r *http.Request) (string, *searchpage.Page, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return "", nil, false
	}
	p, ok := s.pages.Get(c.Value)
	if !ok {
		return "", nil, false
	}
	s.pages.Add(c.Value, p)
	return c.Value, p, true
}

// add stores p under a new session id and sets the cookie on w.
func (s *sessionStore) add(w http.ResponseWriter, p *searchpage.Page) string {
	id := uuid.NewString()
	s.pages.Add(id, p)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
	return id
}

func (s *sessionStore) len() int {
	return s.pages.Len()
}

// purge closes every page.
func (s *sessionStore) purge() {
	s.pages.Purge()
}
