package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/curlmap/curlmap-api/internal/middleware"
)

// Routes returns booking router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.With(middleware.RequireCustomer()).Post("/", h.Create)
	r.Get("/my", h.ListMy)
	r.Get("/{id}", h.GetByID)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/cancel", h.Cancel)
	r.With(middleware.RequireProvider()).Post("/{id}/fees", h.AddFee)

	return r
}
