package geo

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/curlmap/curlmap-api/internal/middleware"
)

// Routes returns nearby search router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Get("/providers", h.NearbyProviders)
	r.With(middleware.RequireProvider()).Get("/requests", h.NearbyRequests)

	return r
}
