// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pdiddy/paper-search/internal/httputil"
	"github.com/pdiddy/paper-search/internal/provider"
	"github.com/pdiddy/paper-search/internal/searchpage"
	"github.com/pdiddy/paper-search/pkg/types"
)

const pageActionBase = "/page"

// pageSuggester adapts a Searcher for the page. A provider without
// suggestions yields an empty list rather than an error, matching
// /api/suggest.
type pageSuggester struct {
	searcher Searcher
}

func (ps pageSuggester) Suggest(ctx context.Context, text string, api types.API) ([]string, error) {
	list, err := ps.searcher.Suggest(ctx, text, api)
	if errors.Is(err, provider.ErrSuggestionsUnsupported) {
		return []string{}, nil
	}
	return list, err
}

// mountPage creates a page whose commits search through the server and
// feed the results back into the page.
func (s *Server) mountPage(api types.API) *searchpage.Page {
	var page *searchpage.Page
	page = searchpage.New(searchpage.Props{
		API: api,
		OnSearch: func(_ []types.PaperResult, api types.API, query string) error {
			papers, err := s.runSearch(context.Background(), types.SearchRequest{Query: query, API: api})
			if err != nil {
				return err
			}
			page.SetResults(papers)
			return nil
		},
	}, searchpage.Options{
		Suggester: pageSuggester{searcher: s.searcher},
		Scheduler: s.scheduler,
		Config:    s.cfg.Page,
		Log:       s.log,
	})
	return page
}

// sessionPage returns the caller's page, mounting a new one when the
// session is unknown or expired.
func (s *Server) sessionPage(w http.ResponseWriter, r *http.Request, api types.API) *searchpage.Page {
	if _, p, ok := s.sessions.lookup(r); ok {
		return p
	}
	p := s.mountPage(api)
	id := s.sessions.add(w, p)
	s.metrics.SessionsActive.Inc()
	s.log.WithField("session", id).Debug("page session opened")
	return p
}

// renderPage serves GET / and GET /search?q=&api=. A non-empty q is
// committed when it differs from the last q seen by the session, so a
// reload does not repeat the search.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	api, err := types.ParseAPI(params.Get("api"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Unsupported API")
		return
	}

	page := s.sessionPage(w, r, api)
	if params.Has("api") {
		page.SetAPI(api)
	}
	q := params.Get("q")
	if page.SetQueryParam(q) && q != "" {
		page.Commit(q)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w, pageActionBase); err != nil {
		s.log.WithError(err).Error("rendering page")
	}
}

// pageEvent applies one browser event to the session page and answers
// with the re-rendered page body.
func (s *Server) pageEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}
	page := s.sessionPage(w, r, types.DefaultAPI)

	switch event := mux.Vars(r)["event"]; event {
	case "input":
		page.Input(r.FormValue("q"))
	case "focus":
		page.Focus()
	case "blur":
		page.Blur()
	case "select":
		page.SelectSuggestion(r.FormValue("s"))
	case "commit":
		if r.Form.Has("q") {
			page.Commit(r.FormValue("q"))
		} else {
			page.Submit()
		}
	case "toggle":
		if key := r.FormValue("key"); key != "" {
			page.Toggle(key)
		} else if i, err := strconv.Atoi(r.FormValue("index")); err == nil {
			page.ToggleIndex(i)
		}
	case "api":
		api, err := types.ParseAPI(r.FormValue("api"))
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "Unsupported API")
			return
		}
		page.SetAPI(api)
	case "view":
	default:
		httputil.WriteError(w, http.StatusNotFound, "unknown page event "+strconv.Quote(event))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.RenderFragment(w, pageActionBase); err != nil {
		s.log.WithError(err).Error("rendering page fragment")
	}
}
