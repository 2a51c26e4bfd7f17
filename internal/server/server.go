// Package server provides the HTTP server and routing for the ETF advisor.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/etfadvisor/internal/config"
	"github.com/aristath/etfadvisor/internal/di"
	advisorhandlers "github.com/aristath/etfadvisor/internal/modules/advisor/handlers"
	allocationhandlers "github.com/aristath/etfadvisor/internal/modules/allocation/handlers"
	scoringhandlers "github.com/aristath/etfadvisor/internal/modules/scoring/api/handlers"
	sessionhandlers "github.com/aristath/etfadvisor/internal/modules/sessions/handlers"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container // DI container with all services
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
	limiter        *clientLimiter
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		container: cfg.Container,
		systemHandlers: NewSystemHandlers(
			cfg.Log,
			cfg.Container.Catalog,
			cfg.Container.SessionService,
			cfg.Container.AdviceCache,
			cfg.Container.Scheduler,
		),
	}
	if cfg.Config.RateLimit > 0 {
		s.limiter = newClientLimiter(cfg.Config.RateLimit, cfg.Config.RateBurst)
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	// No read or write deadline: session streams hold the connection open.
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Metrics
	s.router.Use(s.metricsMiddleware)

	// Timeout
	s.router.Use(timeoutUnlessStreaming(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5, "application/json", "application/msgpack"))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.systemHandlers.HandleHealth)
	s.router.Handle("/metrics", s.container.Metrics.Handler())

	advisorHandler := advisorhandlers.NewHandler(s.container.Advisor, s.container.ModeManager, s.log)
	allocationHandler := allocationhandlers.NewHandler(s.container.Catalog, s.log)
	scoringHandler := scoringhandlers.NewHandlers(s.container.Catalog, s.log)
	sessionHandler := sessionhandlers.NewHandler(s.container.SessionService, s.container.EventBus, originPatterns(s.cfg.AllowedOrigins), s.log)
	eventsStream := NewEventsStreamHandler(s.container.EventBus, s.log)

	s.router.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.rateLimitMiddleware)
		}

		r.Get("/system/status", s.systemHandlers.HandleSystemStatus)
		r.Get("/events/stream", eventsStream.ServeHTTP)

		advisorHandler.RegisterRoutes(r)
		allocationHandler.RegisterRoutes(r)
		scoringHandler.RegisterRoutes(r)
		sessionHandler.RegisterRoutes(r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// originPatterns converts CORS origins into websocket origin host patterns
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := parseOrigin(o); err == nil {
			patterns = append(patterns, u)
		}
	}
	return patterns
}
