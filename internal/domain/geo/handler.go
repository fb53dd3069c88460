package geo

import (
	"net/http"
	"strconv"

	"github.com/curlmap/curlmap-api/internal/pkg/errorhandler"
	"github.com/curlmap/curlmap-api/internal/pkg/response"
)

const defaultRadiusKm = 10

// Handler handles nearby search HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates geo handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// NearbyProviders handles GET /nearby/providers
// @Summary Providers around a point
// @Tags Geo
// @Produce json
// @Security BearerAuth
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius_km query number false "Search radius, km"
// @Param min_rating query number false "Minimum rating"
// @Param category query string false "Service category"
// @Success 200 {object} response.Response{data=[]NearbyItemResponse}
// @Failure 422 {object} response.Response
// @Router /nearby/providers [get]
func (h *Handler) NearbyProviders(w http.ResponseWriter, r *http.Request) {
	h.nearby(w, r, KindProviders)
}

// NearbyRequests handles GET /nearby/requests
func (h *Handler) NearbyRequests(w http.ResponseWriter, r *http.Request) {
	h.nearby(w, r, KindRequests)
}

func (h *Handler) nearby(w http.ResponseWriter, r *http.Request, kind Kind) {
	q, fieldErrors := parseQuery(r, kind)
	if fieldErrors != nil {
		errorhandler.HandleValidation(r.Context(), w, fieldErrors)
		return
	}

	page, err := h.service.FindNearby(r.Context(), q)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.WithMeta(w, NearbyItemsFromPage(kind, page), response.NewMeta(page.Total, page.Page, page.Limit))
}

func parseQuery(r *http.Request, kind Kind) (Query, map[string]string) {
	query := r.URL.Query()
	errs := make(map[string]string)

	parse := func(name string, required bool) float64 {
		raw := query.Get(name)
		if raw == "" {
			if required {
				errs[name] = "This field is required"
			}
			return 0
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs[name] = "Must be a number"
		}
		return v
	}

	q := Query{
		Kind:     kind,
		Origin:   Point{Lat: parse("lat", true), Lng: parse("lng", true)},
		RadiusKm: defaultRadiusKm,
	}
	if query.Get("radius_km") != "" {
		q.RadiusKm = parse("radius_km", false)
	}
	if kind == KindProviders {
		if query.Get("min_rating") != "" {
			rating := parse("min_rating", false)
			q.Filters.MinRating = &rating
		}
		q.Filters.Category = query.Get("category")
	}

	p := response.PaginationFromRequest(r)
	q.Page, q.Limit = p.Page, p.Limit

	if len(errs) > 0 {
		return q, errs
	}
	return q, nil
}
