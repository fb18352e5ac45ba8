// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/pdiddy/paper-search/pkg/types"
)

// SuggestionCache keeps recent suggestion lists per provider and input.
// Only successful lookups are stored.
type SuggestionCache struct {
	lru *lru.LRU[string, []string]
}

// NewSuggestionCache creates a cache holding up to size lists for ttl.
func NewSuggestionCache(size int, ttl time.Duration) *SuggestionCache {
	if size <= 0 {
		size = 512
	}
	return &SuggestionCache{lru: lru.NewLRU[string, []string](size, nil, ttl)}
}

func cacheKey(api types.API, text string) string {
	return string(api) + "\x00" + strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// Get returns a copy of the cached list for text.
func (c *SuggestionCache) Get(api types.API, text string) ([]string, bool) {
	v, ok := c.lru.Get(cacheKey(api, text))
	if !ok {
		return nil, false
	}
	return append([]string(nil), v...), true
}

// Put stores a copy of list for text.
func (c *SuggestionCache) Put(api types.API, text string, list []string) {
	c.lru.Add(cacheKey(api, text), append([]string(nil), list...))
}

// Len returns the number of live entries.
func (c *SuggestionCache) Len() int {
	return c.lru.Len()
}
