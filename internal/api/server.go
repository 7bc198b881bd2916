package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"nereus/internal/api/handlers"
	"nereus/internal/api/health"
	"nereus/internal/api/live"
	"nereus/internal/metrics"
	"nereus/pkg/errors"
	"nereus/pkg/logger"
)

// ServerConfig contains configuration for the HTTP server
type ServerConfig struct {
	Port        int
	ServiceName string
	Version     string
}

// Handlers bundles all route handlers the server mounts
type Handlers struct {
	Health     *health.Handler
	Pond       *handlers.PondHandler
	Sync       *handlers.SyncHandler
	Prediction *handlers.PredictionHandler
	Model      *handlers.ModelHandler
	Schedule   *handlers.ScheduleHandler
	Live       *live.Hub
}

// Server wraps the HTTP server with lifecycle management
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer creates and configures the HTTP server with all routes
func NewServer(cfg ServerConfig, h Handlers, log *logger.Logger) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Device-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoints (Kubernetes probes)
	r.Get("/health", h.Health.HandleHealth)
	r.Get("/ready", h.Health.HandleReadiness)
	r.Get("/live", h.Health.HandleLiveness)

	// Prometheus metrics endpoint
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/ponds", func(r chi.Router) {
			r.Get("/", h.Pond.List)
			r.Post("/", h.Pond.Create)

			r.Route("/{pondID}", func(r chi.Router) {
				r.Get("/", h.Pond.Get)
				r.Put("/", h.Pond.Update)
				r.Delete("/", h.Pond.Delete)

				r.Route("/readings", func(r chi.Router) {
					r.Post("/", h.Sync.Sync)
					r.Get("/", h.Sync.Recent)
					r.Get("/latest", h.Sync.Latest)
					r.Get("/range", h.Sync.Range)
				})

				r.Route("/predictions", func(r chi.Router) {
					r.Get("/", h.Prediction.List)
					r.Post("/", h.Prediction.Run)
					r.Get("/latest", h.Prediction.Latest)
				})

				r.Route("/schedules", func(r chi.Router) {
					r.Get("/", h.Schedule.List)
					r.Post("/", h.Schedule.Create)
					r.Get("/next", h.Schedule.Next)
				})
			})
		})

		r.Post("/predictions/{predictionID}/verify", h.Prediction.Verify)
		r.Delete("/schedules/{scheduleID}", h.Schedule.Delete)

		r.Route("/models", func(r chi.Router) {
			r.Get("/", h.Model.List)
			r.Post("/", h.Model.Register)
			r.Get("/latest", h.Model.Latest)
			r.Get("/check-update", h.Model.CheckUpdate)
			r.Post("/{modelID}/activate", h.Model.Activate)
		})
	})

	// WebSocket live feed
	if h.Live != nil {
		r.HandleFunc("/ws", h.Live.HandleWebSocket)
	}

	// Root endpoint (service info)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"service":"%s","version":"%s","status":"running"}`,
			cfg.ServiceName, cfg.Version)
	})

	port := 8080
	if cfg.Port > 0 {
		port = cfg.Port
	}

	log.Infof("HTTP server configured on port %d", port)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		log:        log,
	}
}

// Start begins listening for HTTP requests.
// Blocks until the server is stopped or encounters an error.
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server, waiting for active connections
// to complete within the context deadline
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	s.log.Info("HTTP server stopped")
	return nil
}
