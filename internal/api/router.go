package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Get("/{id}", s.handleGetDevice)
		})

		r.Route("/scenes", func(r chi.Router) {
			r.Get("/", s.handleListScenes)
			r.Get("/{id}", s.handleGetScene)
		})

		r.Post("/services/{action}", s.handleService)
	})

	return r
}

// handleHealth returns the daemon status and cache counters.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	stats := s.hub.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"cache":   stats,
	})
}
