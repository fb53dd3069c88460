package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/curlmap/curlmap-api/internal/middleware"
)

// Routes returns review router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public
	r.Get("/providers/{id}", h.ListByProvider)
	r.Get("/providers/{id}/summary", h.Summary)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.With(middleware.RequireCustomer()).Post("/", h.Create)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
