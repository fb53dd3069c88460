package negotiation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/curlmap/curlmap-api/internal/middleware"
)

// Routes returns request router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.With(middleware.RequireCustomer()).Post("/", h.CreateRequest)
	r.With(middleware.RequireCustomer()).Get("/my", h.ListMyRequests)
	r.Get("/{id}", h.GetRequest)
	r.With(middleware.RequireCustomer()).Post("/{id}/cancel", h.CancelRequest)

	r.With(middleware.RequireProvider()).Post("/{id}/offers", h.CreateOffer)
	r.Get("/{id}/offers", h.ListOffers)
	r.With(middleware.RequireCustomer()).Post("/{id}/offers/{offerId}/accept", h.AcceptOffer)

	return r
}

// OfferRoutes returns offer router
func (h *Handler) OfferRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Post("/{id}/reject", h.RejectOffer)

	return r
}
