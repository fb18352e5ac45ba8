// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-search/pkg/types"
)

// --- fake provider ---

type fakeProvider struct {
	api types.API

	mu          sync.Mutex
	papers      []types.PaperResult
	suggestions []string
	refs        []types.Reference
	err         error
	calls       map[string]int
}

func newFake(api types.API) *fakeProvider {
	return &fakeProvider{api: api, calls: map[string]int{}}
}

func (f *fakeProvider) API() types.API { return f.api }

func (f *fakeProvider) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.err
}

func (f *fakeProvider) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeProvider) Search(_ context.Context, _ string, year int) ([]types.PaperResult, error) {
	if err := f.record("search"); err != nil {
		return nil, err
	}
	return filterYear(append([]types.PaperResult(nil), f.papers...), year), nil
}

func (f *fakeProvider) Suggest(context.Context, string) ([]string, error) {
	if err := f.record("suggest"); err != nil {
		return nil, err
	}
	return f.suggestions, nil
}

func (f *fakeProvider) References(context.Context, string) ([]types.Reference, error) {
	if err := f.record("references"); err != nil {
		return nil, err
	}
	return f.refs, nil
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
	hits  int
	miss  int
}

func (o *recordingObserver) ObserveCall(api types.API, op string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.calls = append(o.calls, string(api)+"/"+op+"/"+status)
}

func (o *recordingObserver) ObserveCache(hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	} else {
		o.miss++
	}
}

func newTestRegistry(providers ...Provider) (*Registry, *recordingObserver) {
	log, _ := test.NewNullLogger()
	obs := &recordingObserver{}
	return NewRegistryWith(providers, Options{
		BreakerFailures: 2,
		BreakerCooldown: time.Hour,
		Cache:           NewSuggestionCache(16, time.Minute),
		Observer:        obs,
		Log:             log,
	}), obs
}

// --- Search ---

func TestRegistrySearchDispatchesBySelector(t *testing.T) {
	ss := newFake(types.APISemanticScholar)
	ss.papers = []types.PaperResult{{Title: "from ss", Year: 2020}}
	ax := newFake(types.APIArxiv)
	ax.papers = []types.PaperResult{{Title: "from arxiv", Year: 2021}}

	r, obs := newTestRegistry(ss, ax)

	got, err := r.Search(context.Background(), types.SearchRequest{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, "from ss", got[0].Title, "empty selector uses the default provider")

	got, err = r.Search(context.Background(), types.SearchRequest{Query: "q", API: types.APIArxiv, Year: 2021})
	require.NoError(t, err)
	assert.Equal(t, "from arxiv", got[0].Title)

	assert.Equal(t, []string{"semantic_scholar/search/ok", "arxiv_papers/search/ok"}, obs.calls)
}

func TestRegistrySearchErrors(t *testing.T) {
	r, _ := newTestRegistry(newFake(types.APISemanticScholar))

	_, err := r.Search(context.Background(), types.SearchRequest{Query: "  "})
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = r.Search(context.Background(), types.SearchRequest{Query: "q", API: types.APIDOAJ})
	assert.ErrorIs(t, err, types.ErrUnsupportedAPI)
}

func TestRegistryBreakerOpensAfterFailures(t *testing.T) {
	ss := newFake(types.APISemanticScholar)
	ss.err = errors.New("upstream down")
	r, _ := newTestRegistry(ss)

	for i := 0; i < 2; i++ {
		_, err := r.Search(context.Background(), types.SearchRequest{Query: "q"})
		require.Error(t, err)
	}
	_, err := r.Search(context.Background(), types.SearchRequest{Query: "q"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, ss.count("search"), "open breaker must not reach the provider")
}

// --- Suggest ---

func TestRegistrySuggestCaches(t *testing.T) {
	ss := newFake(types.APISemanticScholar)
	ss.suggestions = []string{"Neural Networks", "Neural Nets in Practice"}
	r, obs := newTestRegistry(ss)

	for i := 0; i < 3; i++ {
		got, err := r.Suggest(context.Background(), "Neural  nets", types.APISemanticScholar)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	}
	_, err := r.Suggest(context.Background(), "neural nets", "")
	require.NoError(t, err)

	assert.Equal(t, 1, ss.count("suggest"))
	assert.Equal(t, 3, obs.hits)
	assert.Equal(t, 1, obs.miss)
}

func TestRegistrySuggestFailureNotCached(t *testing.T) {
	ss := newFake(types.APISemanticScholar)
	ss.err = errors.New("boom")
	r, _ := newTestRegistry(ss)

	_, err := r.Suggest(context.Background(), "graphs", "")
	require.Error(t, err)

	ss.mu.Lock()
	ss.err = nil
	ss.suggestions = []string{"Graph Theory"}
	ss.mu.Unlock()

	got, err := r.Suggest(context.Background(), "graphs", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Graph Theory"}, got)
}

func TestRegistrySuggestUnsupportedDoesNotTrip(t *testing.T) {
	ax := newFake(types.APIArxiv)
	ax.err = ErrSuggestionsUnsupported
	r, _ := newTestRegistry(ax)

	for i := 0; i < 5; i++ {
		_, err := r.Suggest(context.Background(), "text", types.APIArxiv)
		assert.ErrorIs(t, err, ErrSuggestionsUnsupported)
	}
	assert.Equal(t, 5, ax.count("suggest"))
}

// --- References ---

func TestRegistryReferences(t *testing.T) {
	ss := newFake(types.APISemanticScholar)
	r, _ := newTestRegistry(ss)

	_, err := r.References(context.Background(), "p1", "")
	assert.ErrorIs(t, err, ErrNoReferences)

	ss.refs = []types.Reference{{Title: "Ref", Year: 2001}}
	refs, err := r.References(context.Background(), "p1", "")
	require.NoError(t, err)
	assert.Len(t, refs, 1)
}

// --- Query files and CSL ---

func TestQueryFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.yaml")
	req := types.SearchRequest{Query: "graph neural networks", Year: 2022}
	papers := []types.PaperResult{{ID: "p1", Title: "GNNs", URL: "https://example.org", Snippet: "s", Year: 2022}}

	require.NoError(t, WriteQueryFile(path, req, papers))

	qf, err := ReadQueryFile(path)
	require.NoError(t, err)
	assert.Equal(t, types.APISemanticScholar, qf.Request.API)
	assert.Equal(t, "graph neural networks", qf.Request.Query)
	assert.Equal(t, papers, qf.Papers)
	assert.Equal(t, 1, qf.Summary.Total)
}

func TestFormatReferencesCSL(t *testing.T) {
	var buf bytes.Buffer
	refs := []types.Reference{
		{ID: "10.1000/xyz", Title: "With DOI", Year: 2010},
		{Title: "No ID", URL: "https://example.org/no-id"},
	}
	require.NoError(t, FormatReferencesCSL(refs, &buf))

	out := buf.String()
	assert.Contains(t, out, "DOI: 10.1000/xyz")
	assert.Contains(t, out, "id: https://example.org/no-id")
	assert.Contains(t, out, "- - 2010")
	assert.Equal(t, 2, strings.Count(out, "type: article"))
}
