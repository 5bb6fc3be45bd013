// Package api provides the HTTP API server and handlers for SRTWork.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/srtwork/srtwork-server/internal/config"
	"github.com/srtwork/srtwork-server/internal/sse"
)

// maxRequestBody caps uploads; a feature-length subtitle file is well
// under a megabyte.
const maxRequestBody = 16 << 20

// Server holds dependencies for HTTP handlers.
type Server struct {
	router     *chi.Mux
	api        huma.API
	services   *Services
	sseManager *sse.Manager
	sseHandler *sse.Handler
	config     *config.Config
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, sseManager *sse.Manager, cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		services:   services,
		sseManager: sseManager,
		config:     cfg,
		logger:     logger,
	}
	s.sseHandler = sse.NewHandler(sseManager, services.Workspaces.Exists, logger)

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("SRTWork API", "1.0.0")
	humaConfig.Info.Description = "Line-by-line subtitle translation with a shared glossary."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, used for OpenAPI generation and tests.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(chimw.Recoverer)
	s.router.Use(cors.Handler(corsOptions(s.config.Server.CORSOrigins)))
	s.router.Use(maxBodySize(maxRequestBody))
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerWorkspaceRoutes()
	s.registerTranslationRoutes()
	s.registerEditingRoutes()
	s.registerGlossaryRoutes()
	s.registerExportRoutes()

	// The event stream writes directly to the connection, outside huma.
	s.router.Get("/api/v1/workspaces/{id}/events", s.sseHandler.ServeHTTP)
}
