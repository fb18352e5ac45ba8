// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/pdiddy/paper-search/pkg/types"
)

// Registry dispatches searches, suggestions and reference lookups to the
// provider named by an API selector.
type Registry struct {
	providers map[types.API]Provider
	breakers  map[types.API]*gobreaker.CircuitBreaker
	cache     *SuggestionCache
	observer  Observer
	log       logrus.FieldLogger
}

// Options tunes a Registry built with NewRegistryWith.
type Options struct {
	BreakerFailures uint32
	BreakerCooldown time.Duration
	Cache           *SuggestionCache
	Observer        Observer
	Log             logrus.FieldLogger
}

// NewRegistry builds the Semantic Scholar, arXiv and DOAJ clients from cfg.
func NewRegistry(cfg types.ProviderConfig, log logrus.FieldLogger, observer Observer) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	settings := Settings{
		Client:     &http.Client{Timeout: cfg.Timeout},
		UserAgent:  cfg.UserAgent,
		MaxResults: cfg.MaxResults,
		MaxRetries: cfg.MaxRetries,
	}
	providers := []Provider{
		&SemanticScholar{Settings: settings, APIKey: cfg.SemanticScholarAPIKey},
		&Arxiv{Settings: settings},
		&DOAJ{Settings: settings, APIKey: cfg.DOAJAPIKey, Log: log},
	}
	return NewRegistryWith(providers, Options{
		BreakerFailures: cfg.BreakerFailures,
		BreakerCooldown: cfg.BreakerCooldown,
		Cache:           NewSuggestionCache(cfg.SuggestionCacheSize, cfg.SuggestionCacheTTL),
		Observer:        observer,
		Log:             log,
	})
}

// NewRegistryWith wraps the given providers. A nil Cache disables
// suggestion caching.
func NewRegistryWith(providers []Provider, opts Options) *Registry {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	r := &Registry{
		providers: make(map[types.API]Provider, len(providers)),
		breakers:  make(map[types.API]*gobreaker.CircuitBreaker, len(providers)),
		cache:     opts.Cache,
		observer:  opts.Observer,
		log:       opts.Log,
	}
	for _, p := range providers {
		r.providers[p.API()] = p
		r.breakers[p.API()] = newBreaker(p.API(), opts.BreakerFailures, opts.BreakerCooldown, opts.Log)
	}
	return r
}

func (r *Registry) lookup(api types.API) (Provider, *gobreaker.CircuitBreaker, error) {
	if api == "" {
		api = types.DefaultAPI
	}
	p, ok := r.providers[api]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", types.ErrUnsupportedAPI, api)
	}
	return p, r.breakers[api], nil
}

// Search runs req against the selected provider.
func (r *Registry) Search(ctx context.Context, req types.SearchRequest) ([]types.PaperResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}
	p, cb, err := r.lookup(req.API)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	papers, err := guard(cb, func() ([]types.PaperResult, error) {
		return p.Search(ctx, req.Query, req.Year)
	})
	r.observer.ObserveCall(p.API(), "search", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", p.API(), err)
	}

	r.log.WithFields(logrus.Fields{
		"api":     p.API(),
		"query":   req.Query,
		"year":    req.Year,
		"results": len(papers),
	}).Info("search completed")
	return papers, nil
}

// Suggest returns suggestions for text from the selected provider,
// served from the cache when possible.
func (r *Registry) Suggest(ctx context.Context, text string, api types.API) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}
	p, cb, err := r.lookup(api)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if list, ok := r.cache.Get(p.API(), text); ok {
			r.observer.ObserveCache(true)
			return list, nil
		}
		r.observer.ObserveCache(false)
	}

	start := time.Now()
	list, err := guard(cb, func() ([]string, error) {
		return p.Suggest(ctx, text)
	})
	r.observer.ObserveCall(p.API(), "suggest", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%s suggest: %w", p.API(), err)
	}
	if list == nil {
		list = []string{}
	}

	if r.cache != nil {
		r.cache.Put(p.API(), text, list)
	}
	r.log.WithFields(logrus.Fields{
		"api":         p.API(),
		"query":       text,
		"suggestions": len(list),
	}).Debug("suggestions fetched")
	return list, nil
}

// References returns the references of paperID. An empty answer is
// ErrNoReferences.
func (r *Registry) References(ctx context.Context, paperID string, api types.API) ([]types.Reference, error) {
	p, cb, err := r.lookup(api)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	refs, err := guard(cb, func() ([]types.Reference, error) {
		return p.References(ctx, paperID)
	})
	r.observer.ObserveCall(p.API(), "references", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%s references: %w", p.API(), err)
	}
	if len(refs) == 0 {
		return nil, ErrNoReferences
	}

	r.log.WithFields(logrus.Fields{
		"api":        p.API(),
		"paper_id":   paperID,
		"references": len(refs),
	}).Info("references fetched")
	return refs, nil
}
