// Package api provides the HTTP API server and handlers for the Brainiac ideas server.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/brainiac5/brainiac-server/internal/http/response"
	"github.com/brainiac5/brainiac-server/internal/metrics"
	"github.com/brainiac5/brainiac-server/internal/service"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexStats reports the size of the similarity index.
type IndexStats interface {
	DocumentCount() (uint64, error)
}

// Services groups the business logic services used by the API server.
type Services struct {
	Auth      *service.AuthService
	Session   *service.SessionService
	Idea      *service.IdeaService
	Tag       *service.TagService
	Relation  *service.RelationService
	Hierarchy *service.HierarchyService
}

// Options configures the HTTP surface.
type Options struct {
	Title              string
	Version            string
	CORSAllowedOrigins []string
	Database           Pinger
	Search             IndexStats // nil when similarity search is disabled
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	database Pinger
	search   IndexStats
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Title == "" {
		opts.Title = "Brainiac API"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	s := &Server{
		services: services,
		database: opts.Database,
		search:   opts.Search,
		router:   chi.NewRouter(),
		logger:   logger,
	}

	s.setupMiddleware(opts.CORSAllowedOrigins)

	humaConfig := huma.DefaultConfig(opts.Title, opts.Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler(logger)

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(allowedOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(clientInfoMiddleware)

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, "Method not allowed", s.logger)
	})
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", metrics.Handler())

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerIdeaRoutes()
	s.registerSimilarRoutes()
	s.registerTagRoutes()
	s.registerRelationRoutes()
	s.registerHierarchyRoutes()
}
