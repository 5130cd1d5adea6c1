package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP routes around a handler. Static file
// serving is mounted at the root when a directory is configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.GetHealth)
		r.Get("/config", h.GetConfig)
		r.Get("/sources", h.GetSources)
		r.Get("/availability", h.GetAvailability)
		r.Get("/variables", h.GetVariables)
		r.Get("/variables/{code}/levels", h.GetVariableLevels)
		r.Get("/data", h.GetData)
		r.Get("/compare", h.GetComparison)
		r.Get("/diff", h.GetDiff)
		r.Get("/sample", h.GetSample)
		r.Get("/snapshots", h.GetSnapshots)
		r.Get("/samples", h.GetSamples)
	})

	if dir := h.config.Server.StaticFilesDir; dir != "" {
		static := NewStaticFileHandler(dir, h.logger)
		r.NotFound(func(w http.ResponseWriter, req *http.Request) {
			static.ServeHTTP(w, req)
		})
	}

	return r
}
