package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns chat router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// All routes require authentication
	r.Use(authMiddleware)

	r.Get("/", h.ListChats)
	r.Get("/booking/{bookingId}", h.OpenForBooking)

	r.Get("/{id}", h.GetChat)
	r.Post("/{id}/messages", h.SendMessage)
	r.Post("/{id}/read", h.MarkAsRead)

	return r
}
