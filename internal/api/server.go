// Package api exposes the expansion engine's computations over HTTP for the
// portal frontend.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/gresik-digital/expansion-cli/internal/store"
)

// Server is the HTTP API server.
type Server struct {
	router *chi.Mux
	server *http.Server
	store  store.Store
	region string
	log    *zap.Logger
}

// Options configures the server.
type Options struct {
	Port int
	// Region selects which demand grid the handlers read.
	Region string
	Store  store.Store
}

// New creates a server with routes and middleware wired.
func New(opts Options) *Server {
	s := &Server{
		router: chi.NewRouter(),
		store:  opts.Store,
		region: opts.Region,
		log:    zap.L().With(zap.String("component", "api")),
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Route("/expansion", func(r chi.Router) {
			r.Post("/score", s.handleScore)
			r.Post("/conflicts", s.handleConflicts)
			r.Post("/hotspots", s.handleHotspots)
		})
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.Get("/{id}", s.handleGetRun)
		})
	})

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the routed handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
