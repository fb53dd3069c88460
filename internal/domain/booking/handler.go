package booking

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/pricing"
	"github.com/curlmap/curlmap-api/internal/middleware"
	"github.com/curlmap/curlmap-api/internal/pkg/errorhandler"
	"github.com/curlmap/curlmap-api/internal/pkg/response"
	"github.com/curlmap/curlmap-api/internal/pkg/validator"
)

// Handler handles booking HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates booking handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /bookings
// @Summary Book a listed service
// @Tags Booking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBookingRequest true "Booking"
// @Success 201 {object} response.Response{data=BookingResponse}
// @Failure 403,404,422 {object} response.Response
// @Router /bookings [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	b, err := h.service.Create(r.Context(), middleware.GetActor(r.Context()), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.Created(w, BookingResponseFromEntity(b))
}

// GetByID handles GET /bookings/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	b, err := h.service.GetByID(r.Context(), middleware.GetActor(r.Context()), id)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, BookingResponseFromEntity(b))
}

// ListMy handles GET /bookings/my
func (h *Handler) ListMy(w http.ResponseWriter, r *http.Request) {
	p := response.PaginationFromRequest(r)
	filter := ListFilter{
		Status: Status(r.URL.Query().Get("status")),
		Page:   p.Page,
		Limit:  p.Limit,
	}

	bookings, total, err := h.service.ListMy(r.Context(), middleware.GetActor(r.Context()), filter)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	items := make([]*BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = BookingResponseFromEntity(b)
	}
	response.WithMeta(w, items, response.NewMeta(total, p.Page, p.Limit))
}

// UpdateStatus handles PATCH /bookings/{id}/status
// @Summary Move a booking through its lifecycle
// @Description expected_status must equal the stored status, otherwise 409 is returned and the client should refetch
// @Tags Booking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body UpdateStatusRequest true "Transition"
// @Success 200 {object} response.Response{data=BookingResponse}
// @Failure 403,404,409,422 {object} response.Response
// @Router /bookings/{id}/status [patch]
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	b, err := h.service.UpdateStatus(r.Context(), middleware.GetActor(r.Context()), id, UpdateStatusInput{
		Expected:              Status(req.ExpectedStatus),
		New:                   Status(req.Status),
		Reason:                req.Reason,
		ActualDurationMinutes: req.ActualDurationMinutes,
		Notes:                 req.Notes,
	})
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, BookingResponseFromEntity(b))
}

// Cancel handles POST /bookings/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	var req CancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	b, err := h.service.Cancel(r.Context(), middleware.GetActor(r.Context()), id, Status(req.ExpectedStatus), req.Reason)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, BookingResponseFromEntity(b))
}

// AddFee handles POST /bookings/{id}/fees
func (h *Handler) AddFee(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	var req AddFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	b, err := h.service.AddFee(r.Context(), middleware.GetActor(r.Context()), id, pricing.Fee{Label: req.Label, Amount: req.Amount})
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, BookingResponseFromEntity(b))
}
