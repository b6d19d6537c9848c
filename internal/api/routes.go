package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/health", h.Health)

		// Protected routes (auth required)
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.apiKey))
			r.Post("/sync", h.Sync)

			r.Get("/document", h.Document)
			r.Put("/document", h.ApplyDocument)
			r.Post("/document/render", h.Render)

			r.Get("/words", h.Words)
			r.Get("/words/{word}", h.Word)
			r.Put("/words/{word}/learned", h.SetLearned)

			r.Post("/imports/store", h.ImportStore)
			r.Post("/imports/dictionary", h.ImportDictionary)

			r.Get("/backup", h.Backup)
		})
	})

	return r
}
