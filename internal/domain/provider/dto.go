package provider

import (
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/geo"
)

// UpsertProfileRequest represents PUT /providers/me
type UpsertProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=2,max=100"`
	Bio         string `json:"bio" validate:"max=2000"`
}

// UpdateLocationRequest represents PUT /providers/me/location
type UpdateLocationRequest struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lng *float64 `json:"lng" validate:"required"`
}

// CreateServiceRequest represents POST /providers/me/services
type CreateServiceRequest struct {
	Name            string  `json:"name" validate:"required,min=2,max=120"`
	Category        string  `json:"category" validate:"required,service_category"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gt=0,lte=1440"`
	BasePrice       float64 `json:"base_price" validate:"gt=0"`
}

// ProviderResponse represents provider in API response
type ProviderResponse struct {
	ID            uuid.UUID  `json:"id"`
	DisplayName   string     `json:"display_name"`
	Bio           string     `json:"bio,omitempty"`
	Location      *geo.Point `json:"location,omitempty"`
	RatingAverage float64    `json:"rating_average"`
	RatingCount   int        `json:"rating_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ProviderResponseFromEntity converts entity to response
func ProviderResponseFromEntity(p *Provider) *ProviderResponse {
	resp := &ProviderResponse{
		ID:            p.ID,
		DisplayName:   p.DisplayName,
		Bio:           p.Bio.String,
		RatingAverage: p.RatingAverage,
		RatingCount:   p.RatingCount,
		CreatedAt:     p.CreatedAt,
	}
	if point, ok := p.Location(); ok {
		resp.Location = &point
	}
	return resp
}

// ServiceResponse represents a catalog entry in API response
type ServiceResponse struct {
	ID              uuid.UUID `json:"id"`
	ProviderID      uuid.UUID `json:"provider_id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	DurationMinutes int       `json:"duration_minutes"`
	BasePrice       float64   `json:"base_price"`
}

// ServiceResponseFromEntity converts entity to response
func ServiceResponseFromEntity(s *Listing) *ServiceResponse {
	return &ServiceResponse{
		ID:              s.ID,
		ProviderID:      s.ProviderID,
		Name:            s.Name,
		Category:        s.Category,
		DurationMinutes: s.DurationMinutes,
		BasePrice:       s.BasePrice,
	}
}
