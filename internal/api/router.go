// Package api serves the dashboard over HTTP: the statistics report, the
// history and event recording, plus health and Prometheus endpoints.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Tiliavir/trivial-event-tracker/internal/config"
	"github.com/Tiliavir/trivial-event-tracker/internal/tracker"
)

// Server holds the handler dependencies.
type Server struct {
	tracker *tracker.Tracker
	locale  string
	cfg     config.ServerConfig
}

// NewServer returns a Server. locale is used when a request has no ?locale=.
func NewServer(t *tracker.Tracker, cfg config.ServerConfig, locale string) *Server {
	return &Server{tracker: t, locale: locale, cfg: cfg}
}

// Router builds the chi router with all middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDWithLogging)
	r.Use(chimiddleware.RealIP)
	r.Use(accessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(s.cfg.CORSOrigins))

	r.NotFound(s.notFound)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(s.cfg.RateLimit))
			r.Get("/events", s.listEvents)
			r.Post("/events", s.createEvent)
			r.Get("/stats", s.getStats)
		})
	})
	return r
}
