// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/paper-search/internal/httputil"
	"github.com/pdiddy/paper-search/internal/provider"
	"github.com/pdiddy/paper-search/pkg/types"
)

const (
	welcomeMessage      = "Welcome to the Research Paper Assistant API."
	arxivSuggestMessage = "arXiv API does not support suggestions. Please try Semantic Scholar or DOAJ."
	maxReferenceDepth   = 3
)

type searchPapersRequest struct {
	Query string `json:"query"`
	Year  int    `json:"year,omitempty"`
	API   string `json:"api,omitempty"`
}

type searchPapersResponse struct {
	Papers []types.PaperResult `json:"papers"`
}

type suggestResponse struct {
	Suggestions []string `json:"suggestions"`
	Message     string   `json:"message,omitempty"`
}

type referencesRequest struct {
	PaperID string `json:"paper_id"`
	API     string `json:"api,omitempty"`
}

func (s *Server) welcome(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": welcomeMessage})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.len(),
	})
}

func (s *Server) searchPapers(w http.ResponseWriter, r *http.Request) {
	var body searchPapersRequest
	if !httputil.ParseJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Query) == "" {
		httputil.WriteError(w, http.StatusBadRequest, "No query provided")
		return
	}
	api, err := types.ParseAPI(body.API)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Unsupported API")
		return
	}

	req := types.SearchRequest{Query: body.Query, Year: body.Year, API: api}
	papers, err := s.runSearch(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if papers == nil {
		papers = []types.PaperResult{}
	}
	httputil.WriteJSON(w, http.StatusOK, searchPapersResponse{Papers: papers})
}

// runSearch performs req and records its outcome in the metrics and the
// search log.
func (s *Server) runSearch(ctx context.Context, req types.SearchRequest) ([]types.PaperResult, error) {
	papers, err := s.searcher.Search(ctx, req)
	s.metrics.observeSearch(req.API, err)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"api": req.API, "query": req.Query}).Error("search failed")
	}
	if s.history != nil {
		if _, herr := s.history.Record(ctx, req, len(papers), err); herr != nil {
			s.log.WithError(herr).Warn("recording search history")
		}
	}
	return papers, err
}

func (s *Server) suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if utf8.RuneCountInString(q) < s.cfg.Page.MinSuggestLength {
		httputil.WriteError(w, http.StatusUnprocessableEntity,
			"q must be at least "+strconv.Itoa(s.cfg.Page.MinSuggestLength)+" characters")
		return
	}
	api, err := types.ParseAPI(r.URL.Query().Get("api"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Unsupported API")
		return
	}

	list, err := s.searcher.Suggest(r.Context(), q, api)
	switch {
	case errors.Is(err, provider.ErrSuggestionsUnsupported):
		httputil.WriteJSON(w, http.StatusOK, suggestResponse{Suggestions: []string{}, Message: arxivSuggestMessage})
		return
	case err != nil:
		s.log.WithError(err).WithFields(logrus.Fields{"api": api, "query": q}).Error("suggest failed")
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to get suggestions")
		return
	}
	if list == nil {
		list = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, suggestResponse{Suggestions: list})
}

func (s *Server) downloadReferences(w http.ResponseWriter, r *http.Request) {
	depth := 1
	if v := r.URL.Query().Get("depth"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 1 || d > maxReferenceDepth {
			httputil.WriteError(w, http.StatusBadRequest,
				"depth must be between 1 and "+strconv.Itoa(maxReferenceDepth))
			return
		}
		depth = d
	}

	var body referencesRequest
	if !httputil.ParseJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.PaperID) == "" {
		httputil.WriteError(w, http.StatusBadRequest, "No paper_id provided")
		return
	}
	api, err := types.ParseAPI(body.API)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Unsupported API")
		return
	}

	refs, err := s.collectReferences(r.Context(), body.PaperID, api, depth)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"api": api, "paper_id": body.PaperID}).Error("references failed")
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to fetch references")
		return
	}

	if r.URL.Query().Get("format") == "csl" {
		w.Header().Set("Content-Type", "application/x-yaml")
		w.Header().Set("Content-Disposition", `attachment; filename="references.yaml"`)
		if err := provider.FormatReferencesCSL(refs, w); err != nil {
			s.log.WithError(err).Error("writing CSL references")
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="references.json"`)
	if err := provider.FormatReferencesJSON(refs, w); err != nil {
		s.log.WithError(err).Error("writing JSON references")
	}
}

// collectReferences walks the citation graph breadth first down to depth
// levels. Only the root lookup may fail the request; deeper lookups that
// fail are skipped. The root's own entries are kept even when they name
// the root itself (arXiv answers an id lookup with the paper); deeper
// levels never re-add the root. An empty result is ErrNoReferences.
func (s *Server) collectReferences(ctx context.Context, paperID string, api types.API, depth int) ([]types.Reference, error) {
	refs, err := s.searcher.References(ctx, paperID, api)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := []types.Reference{}
	add := func(list []types.Reference) []types.Reference {
		var fresh []types.Reference
		for _, ref := range list {
			key := ref.ID
			if key == "" {
				key = ref.Title + "\x00" + ref.URL
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, ref)
			fresh = append(fresh, ref)
		}
		return fresh
	}

	level := add(refs)
	if len(out) == 0 {
		return nil, provider.ErrNoReferences
	}
	seen[paperID] = true
	for d := 2; d <= depth && len(level) > 0; d++ {
		var next []types.Reference
		for _, ref := range level {
			if ref.ID == "" || ref.ID == paperID {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			children, err := s.searcher.References(ctx, ref.ID, api)
			if err != nil {
				if !errors.Is(err, provider.ErrNoReferences) {
					s.log.WithError(err).WithField("paper_id", ref.ID).Warn("skipping nested references")
				}
				continue
			}
			next = append(next, add(children)...)
		}
		level = next
	}
	return out, nil
}
