package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/middleware"
	"github.com/curlmap/curlmap-api/internal/pkg/errorhandler"
	"github.com/curlmap/curlmap-api/internal/pkg/response"
	"github.com/curlmap/curlmap-api/internal/pkg/validator"
)

// Handler handles review HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates review handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /reviews
// @Summary Review a completed booking
// @Tags Review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReviewRequest true "Review"
// @Success 201 {object} response.Response{data=ReviewResponse}
// @Failure 403,404,409,422 {object} response.Response
// @Router /reviews [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	review, err := h.service.Create(r.Context(), middleware.GetActor(r.Context()), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.Created(w, ReviewResponseFromEntity(review))
}

// ListByProvider handles GET /reviews/providers/{id}
func (h *Handler) ListByProvider(w http.ResponseWriter, r *http.Request) {
	providerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid provider ID")
		return
	}

	p := response.PaginationFromRequest(r)
	reviews, total, err := h.service.ListByProvider(r.Context(), providerID, p.Page, p.Limit)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	items := make([]*ReviewResponse, len(reviews))
	for i, rv := range reviews {
		items[i] = ReviewResponseFromEntity(rv)
	}
	response.WithMeta(w, items, response.NewMeta(total, p.Page, p.Limit))
}

// Summary handles GET /reviews/providers/{id}/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	providerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid provider ID")
		return
	}

	summary, err := h.service.Summary(r.Context(), providerID)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, SummaryResponseFromEntity(summary))
}

// Delete handles DELETE /reviews/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid review ID")
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetActor(r.Context()), id); err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.NoContent(w)
}
