// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package searchpage is the search results page: a query box with
// debounced autocomplete suggestions, a result list with expandable
// abstracts, and loading and error states.
//
// A Page is a serialized state machine. Every event method, timer callback
// and suggestion completion takes the page lock, so transitions happen one
// at a time in arrival order. Delays come from a Scheduler and async work
// from Options.Go, which tests replace with deterministic versions.
package searchpage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/paper-search/pkg/types"
)

// User-facing error messages.
const (
	ErrMsgSuggestions = "Failed to fetch suggestions."
	ErrMsgPapers      = "Failed to fetch papers."
)

// Suggester fetches autocomplete suggestions for text from a provider.
type Suggester interface {
	Suggest(ctx context.Context, text string, api types.API) ([]string, error)
}

// SearchFunc is the host's search callback. It receives the current
// results, the provider selector and the committed query. Re-fetching
// results is the host's job; it reports them back with SetResults.
type SearchFunc func(results []types.PaperResult, api types.API, query string) error

// Props are the inputs supplied by the host page.
type Props struct {
	Results  []types.PaperResult
	API      types.API
	Query    string
	OnSearch SearchFunc
}

// Options wires the page to its collaborators.
type Options struct {
	Suggester Suggester
	Scheduler Scheduler
	// Go runs async work; nil means a new goroutine.
	Go     func(func())
	Config types.PageConfig
	Log    logrus.FieldLogger
}

// Page holds the state of one mounted search page.
type Page struct {
	mu sync.Mutex

	props     Props
	cfg       types.PageConfig
	suggester Suggester
	sched     Scheduler
	goFn      func(func())
	log       logrus.FieldLogger
	ctx       context.Context
	cancel    context.CancelFunc

	query     string
	displayed string
	param     string
	paramSeen bool

	suggestions []string
	errMsg      string
	loading     bool
	focused     bool

	keys     []string
	byURL    bool
	expanded map[string]bool

	debounce    slot
	pendingText string
	blur        slot
	commit      slot

	// fetchSeq is the id of the latest issued suggestion fetch. Completions
	// carrying any other id are discarded.
	fetchSeq uint64
	// commitSeq is the id of the latest commit. Only that commit may clear
	// loading or publish its outcome.
	commitSeq uint64
	closed   bool
}

// New mounts a page seeded from props.
func New(props Props, opts Options) *Page {
	if props.API == "" {
		props.API = types.DefaultAPI
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler{}
	}
	if opts.Go == nil {
		opts.Go = func(f func()) { go f() }
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	opts.Config = types.AppConfig{Page: opts.Config}.WithDefaults().Page

	ctx, cancel := context.WithCancel(context.Background())
	p := &Page{
		props:     props,
		cfg:       opts.Config,
		suggester: opts.Suggester,
		sched:     opts.Scheduler,
		goFn:      opts.Go,
		log:       opts.Log,
		ctx:       ctx,
		cancel:    cancel,
		query:     props.Query,
		displayed: props.Query,
		expanded:  make(map[string]bool),
	}
	p.keys, p.byURL = rowKeys(props.Results)
	return p
}

// SetQueryParam syncs the editable query from the URL q parameter. The
// first call (mount) always applies; later calls apply only when the
// parameter changed. It reports whether the query was resynced.
func (p *Page) SetQueryParam(q string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paramSeen && q == p.param {
		return false
	}
	p.param = q
	p.paramSeen = true
	p.query = q
	return true
}

// SetResults replaces the result list supplied by the host.
func (p *Page) SetResults(results []types.PaperResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	keys, byURL := rowKeys(results)
	if byURL && p.byURL {
		live := make(map[string]bool, len(p.expanded))
		for _, k := range keys {
			if p.expanded[k] {
				live[k] = true
			}
		}
		p.expanded = live
	} else {
		p.expanded = make(map[string]bool)
	}
	p.props.Results = results
	p.keys, p.byURL = keys, byURL
}

// SetAPI changes the provider selector used by later fetches and commits.
func (p *Page) SetAPI(api types.API) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if api == "" {
		api = types.DefaultAPI
	}
	p.props.API = api
}

// Input handles a change of the query box.
func (p *Page) Input(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.query = text

	if utf8.RuneCountInString(text) < p.cfg.MinSuggestLength {
		p.debounce.cancel()
		p.fetchSeq++
		p.suggestions = nil
		return
	}

	p.pendingText = text
	gen := p.debounce.arm()
	p.debounce.timer = p.sched.AfterFunc(p.cfg.SuggestDebounce, func() {
		p.fireDebounce(gen)
	})
}

func (p *Page) fireDebounce(gen uint64) {
	p.mu.Lock()
	if p.closed || !p.debounce.current(gen) {
		p.mu.Unlock()
		return
	}
	p.fetchSeq++
	id := p.fetchSeq
	text := p.pendingText
	api := p.props.API
	ctx := p.ctx
	p.mu.Unlock()

	if p.suggester == nil {
		p.finishFetch(id, nil, fmt.Errorf("no suggester configured"))
		return
	}
	p.goFn(func() {
		list, err := p.suggester.Suggest(ctx, text, api)
		p.finishFetch(id, list, err)
	})
}

func (p *Page) finishFetch(id uint64, list []string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || id != p.fetchSeq {
		p.log.WithFields(logrus.Fields{"fetch": id, "latest": p.fetchSeq}).Debug("discarding stale suggestions")
		return
	}
	if err != nil {
		p.log.WithError(err).WithField("api", p.props.API).Warn("suggestion fetch failed")
		p.suggestions = nil
		p.errMsg = ErrMsgSuggestions
		return
	}
	p.suggestions = append([]string(nil), list...)
	p.errMsg = ""
}

// Focus marks the query box focused and cancels a pending blur.
func (p *Page) Focus() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.blur.cancel()
	p.focused = true
}

// Blur unfocuses the query box after the blur delay, so a click on a
// suggestion lands before the dropdown disappears.
func (p *Page) Blur() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	gen := p.blur.arm()
	p.blur.timer = p.sched.AfterFunc(p.cfg.BlurDelay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed || !p.blur.current(gen) {
			return
		}
		p.focused = false
	})
}

// SelectSuggestion puts s into the query box, closes the dropdown and
// commits s on the next scheduler tick.
func (p *Page) SelectSuggestion(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.query = s
	p.suggestions = nil
	p.debounce.cancel()
	p.fetchSeq++

	gen := p.commit.arm()
	p.commit.timer = p.sched.AfterFunc(0, func() {
		p.mu.Lock()
		ok := !p.closed && p.commit.current(gen)
		p.mu.Unlock()
		if ok {
			p.Commit(s)
		}
	})
}

// Submit commits the current contents of the query box.
func (p *Page) Submit() {
	p.mu.Lock()
	q := p.query
	p.mu.Unlock()
	p.Commit(q)
}

// Commit runs a search for query. Empty or whitespace-only queries are
// ignored. The loading flag is cleared once OnSearch returns, whatever
// the outcome. When commits overlap the latest one wins: an earlier commit
// that finishes later leaves loading, the error and the heading alone.
func (p *Page) Commit(query string) {
	if strings.TrimSpace(query) == "" {
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.commitSeq++
	id := p.commitSeq
	p.loading = true
	p.suggestions = nil
	results := p.props.Results
	api := p.props.API
	onSearch := p.props.OnSearch
	p.mu.Unlock()

	err := p.runSearch(onSearch, results, api, query)

	p.mu.Lock()
	defer p.mu.Unlock()
	if id != p.commitSeq {
		p.log.WithFields(logrus.Fields{"commit": id, "latest": p.commitSeq, "query": query}).Debug("discarding superseded commit")
		return
	}
	p.loading = false
	if err != nil {
		p.log.WithError(err).WithFields(logrus.Fields{"api": api, "query": query}).Warn("search failed")
		p.errMsg = ErrMsgPapers
		return
	}
	p.displayed = query
	p.errMsg = ""
}

func (p *Page) runSearch(onSearch SearchFunc, results []types.PaperResult, api types.API, query string) (err error) {
	if onSearch == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("search callback panicked: %v", r)
		}
	}()
	return onSearch(results, api, query)
}

// Toggle flips the expanded state of the row with key. Other rows are
// untouched.
func (p *Page) Toggle(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.toggle(key)
}

// ToggleIndex flips the row at position i. Out of range indexes are ignored.
func (p *Page) ToggleIndex(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.keys) {
		return
	}
	p.toggle(p.keys[i])
}

func (p *Page) toggle(key string) {
	if p.expanded[key] {
		delete(p.expanded, key)
		return
	}
	p.expanded[key] = true
}

// Close unmounts the page: timers are stopped and in-flight fetches are
// discarded.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.debounce.cancel()
	p.blur.cancel()
	p.commit.cancel()
	p.fetchSeq++
	p.cancel()
}
