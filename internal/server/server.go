// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the paper search API and the server-rendered
// search page over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/paper-search/internal/searchpage"
	"github.com/pdiddy/paper-search/pkg/types"
)

// Searcher runs provider operations. *provider.Registry implements it.
type Searcher interface {
	Search(ctx context.Context, req types.SearchRequest) ([]types.PaperResult, error)
	Suggest(ctx context.Context, text string, api types.API) ([]string, error)
	References(ctx context.Context, paperID string, api types.API) ([]types.Reference, error)
}

// Recorder logs committed searches. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, req types.SearchRequest, results int, searchErr error) (types.HistoryEntry, error)
}

// Deps are the collaborators of a Server.
type Deps struct {
	Searcher Searcher
	// History is optional.
	History Recorder
	Metrics *Metrics
	Config  types.AppConfig
	Log     logrus.FieldLogger
	// Scheduler drives page timers; nil means wall-clock timers.
	Scheduler searchpage.Scheduler
}

// Server routes HTTP requests to the API and page handlers.
type Server struct {
	searcher  Searcher
	history   Recorder
	metrics   *Metrics
	cfg       types.AppConfig
	log       logrus.FieldLogger
	scheduler searchpage.Scheduler
	sessions  *sessionStore
	router    *mux.Router
}

// New builds a Server and registers its routes.
func New(d Deps) *Server {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Metrics == nil {
		d.Metrics = NewMetrics()
	}
	cfg := d.Config.WithDefaults()

	s := &Server{
		searcher:  d.Searcher,
		history:   d.History,
		metrics:   d.Metrics,
		cfg:       cfg,
		log:       d.Log,
		scheduler: d.Scheduler,
		router:    mux.NewRouter(),
	}
	s.sessions = newSessionStore(cfg.Server.MaxSessions, cfg.Server.SessionTTL, d.Metrics, d.Log)
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.metrics.metricsMiddleware, s.logMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/", s.welcome).Methods("GET")
	api.HandleFunc("/search_papers", s.searchPapers).Methods("POST")
	api.HandleFunc("/suggest", s.suggest).Methods("GET")
	api.HandleFunc("/download_references", s.downloadReferences).Methods("POST")

	s.router.HandleFunc("/", s.renderPage).Methods("GET")
	s.router.HandleFunc("/search", s.renderPage).Methods("GET")
	s.router.HandleFunc("/page/{event}", s.pageEvent).Methods("POST")

	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	s.router.HandleFunc("/health", s.health).Methods("GET")
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cors(s.router).ServeHTTP(w, r)
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully and closes every page session.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.sessions.purge()
	if err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// cors allows every origin.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   sw.status,
			"duration": time.Since(start),
		}).Debug("request")
	})
}
