package negotiation

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/booking"
	"github.com/curlmap/curlmap-api/internal/middleware"
	"github.com/curlmap/curlmap-api/internal/pkg/errorhandler"
	"github.com/curlmap/curlmap-api/internal/pkg/response"
	"github.com/curlmap/curlmap-api/internal/pkg/validator"
)

// Handler handles request and offer HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates negotiation handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateRequest handles POST /requests
// @Summary Post an open request
// @Tags Negotiation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRequestRequest true "Request"
// @Success 201 {object} response.Response{data=RequestResponse}
// @Failure 403,422 {object} response.Response
// @Router /requests [post]
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	created, err := h.service.CreateRequest(r.Context(), middleware.GetActor(r.Context()), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.Created(w, RequestResponseFromEntity(created))
}

// GetRequest handles GET /requests/{id}
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	req, err := h.service.GetRequest(r.Context(), middleware.GetActor(r.Context()), id)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, RequestResponseFromEntity(req))
}

// ListMyRequests handles GET /requests/my
func (h *Handler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	p := response.PaginationFromRequest(r)
	status := RequestStatus(r.URL.Query().Get("status"))

	requests, total, err := h.service.ListMyRequests(r.Context(), middleware.GetActor(r.Context()), status, p.Page, p.Limit)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	items := make([]*RequestResponse, len(requests))
	for i, req := range requests {
		items[i] = RequestResponseFromEntity(req)
	}
	response.WithMeta(w, items, response.NewMeta(total, p.Page, p.Limit))
}

// CancelRequest handles POST /requests/{id}/cancel
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	req, err := h.service.CancelRequest(r.Context(), middleware.GetActor(r.Context()), id)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, RequestResponseFromEntity(req))
}

// CreateOffer handles POST /requests/{id}/offers
// @Summary Bid on a request
// @Tags Negotiation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param request body CreateOfferRequest true "Offer"
// @Success 201 {object} response.Response{data=OfferResponse}
// @Failure 404,409,422 {object} response.Response
// @Router /requests/{id}/offers [post]
func (h *Handler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	var req CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	offer, err := h.service.CreateOffer(r.Context(), middleware.GetActor(r.Context()), requestID, &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.Created(w, OfferResponseFromEntity(offer))
}

// ListOffers handles GET /requests/{id}/offers
func (h *Handler) ListOffers(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	offers, err := h.service.ListOffers(r.Context(), middleware.GetActor(r.Context()), requestID)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	items := make([]*OfferResponse, len(offers))
	for i, o := range offers {
		items[i] = OfferResponseFromEntity(o)
	}
	response.OK(w, items)
}

// AcceptOffer handles POST /requests/{id}/offers/{offerId}/accept
// @Summary Accept an offer and book it
// @Description Rejects every other pending offer on the request. Returns 409 when another offer was accepted first.
// @Tags Negotiation
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param offerId path string true "Offer ID"
// @Success 201 {object} response.Response{data=booking.BookingResponse}
// @Failure 403,404,409 {object} response.Response
// @Router /requests/{id}/offers/{offerId}/accept [post]
func (h *Handler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}
	offerID, err := uuid.Parse(chi.URLParam(r, "offerId"))
	if err != nil {
		response.BadRequest(w, "Invalid offer ID")
		return
	}

	b, err := h.service.AcceptOffer(r.Context(), middleware.GetActor(r.Context()), requestID, offerID)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.Created(w, booking.BookingResponseFromEntity(b))
}

// RejectOffer handles POST /offers/{id}/reject
func (h *Handler) RejectOffer(w http.ResponseWriter, r *http.Request) {
	offerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid offer ID")
		return
	}

	offer, err := h.service.RejectOffer(r.Context(), middleware.GetActor(r.Context()), offerID)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, OfferResponseFromEntity(offer))
}
