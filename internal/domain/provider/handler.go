package provider

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/geo"
	"github.com/curlmap/curlmap-api/internal/middleware"
	"github.com/curlmap/curlmap-api/internal/pkg/errorhandler"
	"github.com/curlmap/curlmap-api/internal/pkg/response"
	"github.com/curlmap/curlmap-api/internal/pkg/validator"
)

// Handler handles provider catalog HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates provider handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetByID handles GET /providers/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid provider ID")
		return
	}

	p, err := h.service.GetProvider(r.Context(), id)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, ProviderResponseFromEntity(p))
}

// ListServices handles GET /providers/{id}/services
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid provider ID")
		return
	}

	services, err := h.service.ListServices(r.Context(), id)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	items := make([]*ServiceResponse, len(services))
	for i, s := range services {
		items[i] = ServiceResponseFromEntity(s)
	}
	response.OK(w, items)
}

// UpsertProfile handles PUT /providers/me
func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	p, err := h.service.UpsertProfile(r.Context(), middleware.GetActor(r.Context()), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, ProviderResponseFromEntity(p))
}

// UpdateLocation handles PUT /providers/me/location
func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req UpdateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	p, err := h.service.UpsertLocation(r.Context(), middleware.GetActor(r.Context()), geo.Point{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, ProviderResponseFromEntity(p))
}

// CreateService handles POST /providers/me/services
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	svc, err := h.service.CreateService(r.Context(), middleware.GetActor(r.Context()), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.Created(w, ServiceResponseFromEntity(svc))
}
