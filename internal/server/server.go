// internal/server/server.go

package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"regiodash/internal/config"
	"regiodash/internal/observability"
	"regiodash/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// Handlers bundles the request handlers mounted on the router
type Handlers struct {
	Page     *handlers.PageHandler
	Sessions *handlers.SessionHandler
	Views    *handlers.ViewHandler
	Metrics  http.Handler
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, h Handlers, logger *slog.Logger) *Server {
	router := NewRouter(cfg, h, logger)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// NewRouter builds the routes of the dashboard
func NewRouter(cfg config.ServerConfig, h Handlers, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(observability.AccessLog(logger))
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	metrics := h.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}

	// WebSocket endpoint, outside the request timeout
	router.Get("/ws", h.Sessions.WebSocket)
	router.Handle("/metrics", metrics)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/", h.Page.Index)

		r.Route("/api", func(r chi.Router) {
			// Health check
			r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("OK"))
			})

			// API version
			r.Route("/v1", func(r chi.Router) {
				r.Get("/options", h.Views.GetOptions)

				r.Route("/session", func(r chi.Router) {
					r.Get("/", h.Sessions.GetSession)
					r.Post("/events", h.Sessions.PostEvent)
				})

				r.Route("/views", func(r chi.Router) {
					r.Get("/map", h.Views.GetMap)
					r.Get("/timeseries", h.Views.GetTimeSeries)
					r.Get("/timeseries.png", h.Views.GetTimeSeriesPNG)
				})
			})
		})
	})

	return router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
