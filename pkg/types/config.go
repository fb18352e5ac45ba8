// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by every outbound provider call.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-search/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ProviderConfig holds settings for the external paper providers.
type ProviderConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults is the number of papers requested per search (default 10).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// SemanticScholarAPIKey is an optional key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty" mapstructure:"semantic_scholar_api_key"`

	// DOAJAPIKey is sent as the api_key parameter on DOAJ requests.
	DOAJAPIKey string `json:"doaj_api_key,omitempty" yaml:"doaj_api_key,omitempty" mapstructure:"doaj_api_key"`

	// SuggestionCacheSize is the number of cached suggestion lists (default 512).
	SuggestionCacheSize int `json:"suggestion_cache_size" yaml:"suggestion_cache_size" mapstructure:"suggestion_cache_size"`

	// SuggestionCacheTTL is how long a cached suggestion list stays valid (default 5m).
	SuggestionCacheTTL time.Duration `json:"suggestion_cache_ttl" yaml:"suggestion_cache_ttl" mapstructure:"suggestion_cache_ttl"`

	// BreakerFailures is the number of consecutive failures that opens a
	// provider's circuit breaker (default 5).
	BreakerFailures uint32 `json:"breaker_failures" yaml:"breaker_failures" mapstructure:"breaker_failures"`

	// BreakerCooldown is how long an open breaker waits before probing (default 30s).
	BreakerCooldown time.Duration `json:"breaker_cooldown" yaml:"breaker_cooldown" mapstructure:"breaker_cooldown"`
}

// PageConfig holds the timing of the search page component.
type PageConfig struct {
	// SuggestDebounce is the quiet period before a suggestion fetch (default 300ms).
	SuggestDebounce time.Duration `json:"suggest_debounce" yaml:"suggest_debounce" mapstructure:"suggest_debounce"`

	// BlurDelay is how long the dropdown stays up after the input loses focus (default 150ms).
	BlurDelay time.Duration `json:"blur_delay" yaml:"blur_delay" mapstructure:"blur_delay"`

	// MinSuggestLength is the shortest input that triggers a fetch (default 3).
	MinSuggestLength int `json:"min_suggest_length" yaml:"min_suggest_length" mapstructure:"min_suggest_length"`

	// SnippetLimit is the snippet length above which a row can be expanded (default 300).
	SnippetLimit int `json:"snippet_limit" yaml:"snippet_limit" mapstructure:"snippet_limit"`
}

// ServerConfig holds settings for the HTTP server.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MaxSessions bounds the number of live page sessions (default 1024).
	MaxSessions int `json:"max_sessions" yaml:"max_sessions" mapstructure:"max_sessions"`

	// SessionTTL is how long an idle page session lives (default 30m).
	SessionTTL time.Duration `json:"session_ttl" yaml:"session_ttl" mapstructure:"session_ttl"`

	// HistoryDB is the SQLite file for the search log. Empty disables it.
	HistoryDB string `json:"history_db" yaml:"history_db" mapstructure:"history_db"`

	// LogLevel is a logrus level name (default "info").
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
}

// AppConfig groups all configuration sections.
type AppConfig struct {
	Providers ProviderConfig `json:"providers" yaml:"providers" mapstructure:"providers"`
	Page      PageConfig     `json:"page" yaml:"page" mapstructure:"page"`
	Server    ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c AppConfig) WithDefaults() AppConfig {
	p := &c.Providers
	if p.Timeout <= 0 {
		p.Timeout = 30 * time.Second
	}
	if p.UserAgent == "" {
		p.UserAgent = "paper-search/0.1"
	}
	if p.MaxResults <= 0 {
		p.MaxResults = 10
	}
	if p.SuggestionCacheSize <= 0 {
		p.SuggestionCacheSize = 512
	}
	if p.SuggestionCacheTTL <= 0 {
		p.SuggestionCacheTTL = 5 * time.Minute
	}
	if p.BreakerFailures == 0 {
		p.BreakerFailures = 5
	}
	if p.BreakerCooldown <= 0 {
		p.BreakerCooldown = 30 * time.Second
	}

	g := &c.Page
	if g.SuggestDebounce <= 0 {
		g.SuggestDebounce = 300 * time.Millisecond
	}
	if g.BlurDelay <= 0 {
		g.BlurDelay = 150 * time.Millisecond
	}
	if g.MinSuggestLength <= 0 {
		g.MinSuggestLength = 3
	}
	if g.SnippetLimit <= 0 {
		g.SnippetLimit = 300
	}

	s := &c.Server
	if s.Addr == "" {
		s.Addr = ":8000"
	}
	if s.MaxSessions <= 0 {
		s.MaxSessions = 1024
	}
	if s.SessionTTL <= 0 {
		s.SessionTTL = 30 * time.Minute
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	return c
}
