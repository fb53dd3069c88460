package provider

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/curlmap/curlmap-api/internal/domain/user"
	"github.com/curlmap/curlmap-api/internal/middleware"
)

// Routes returns provider router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(user.RoleProvider))
		r.Put("/me", h.UpsertProfile)
		r.Put("/me/location", h.UpdateLocation)
		r.Post("/me/services", h.CreateService)
	})

	r.Get("/{id}", h.GetByID)
	r.Get("/{id}/services", h.ListServices)

	return r
}
