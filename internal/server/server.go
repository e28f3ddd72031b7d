// Package server provides the HTTP API for LS3.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/CarolineDieterich/LS3/internal/config"
	"github.com/CarolineDieterich/LS3/internal/indexer"
	"github.com/CarolineDieterich/LS3/internal/search"
	"github.com/CarolineDieterich/LS3/internal/storage"
	"github.com/CarolineDieterich/LS3/internal/watcher"
)

// Server is the HTTP server for the LS3 API.
type Server struct {
	engine  *search.Engine
	indexer *indexer.Indexer
	storage storage.Storage
	watch   *watcher.Watcher
	cfg     *config.Config
	logger  *zap.Logger
	server  *http.Server

	// configPath, when set, is where watch directory changes get persisted.
	configPath string
	cfgMu      sync.Mutex
}

// NewServer creates a server with the given dependencies. watch may be nil
// when directory watching is disabled; configPath may be empty when watch
// directory changes should not be persisted.
func NewServer(
	engine *search.Engine,
	idx *indexer.Indexer,
	store storage.Storage,
	watch *watcher.Watcher,
	cfg *config.Config,
	configPath string,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:     engine,
		indexer:    idx,
		storage:    store,
		watch:      watch,
		cfg:        cfg,
		configPath: configPath,
		logger:     logger,
	}
}

// Handler builds the chi router with all API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/models", s.handleIndexModel)
	r.Get("/api/v1/models", s.handleListModels)
	r.Get("/api/v1/models/{id}", s.handleGetModel)
	r.Delete("/api/v1/models/{id}", s.handleDeleteModel)
	r.Post("/api/v1/rebuild", s.handleRebuild)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/api/v1/watch/directories", s.handleWatchDirectoriesList)
	r.Post("/api/v1/watch/directories", s.handleWatchDirectoriesAdd)
	r.Delete("/api/v1/watch/directories", s.handleWatchDirectoriesRemove)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
