package negotiation

import (
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/booking"
)

// CreateRequestRequest represents POST /requests
type CreateRequestRequest struct {
	StyleDescription string                  `json:"style_description" validate:"required,max=1000"`
	OfferPrice       float64                 `json:"offer_price" validate:"gt=0"`
	Location         booking.LocationRequest `json:"location"`
	PreferredAt      *time.Time              `json:"preferred_at,omitempty"`
}

// CreateOfferRequest represents POST /requests/{id}/offers.
// EstimatedTime is in minutes.
type CreateOfferRequest struct {
	Price         float64 `json:"price" validate:"gte=0"`
	EstimatedTime int     `json:"estimated_time" validate:"required,gt=0,lte=1440"`
	Message       string  `json:"message" validate:"max=1000"`
}

// LocationResponse is a point in API responses
type LocationResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RequestResponse represents request in API response
type RequestResponse struct {
	ID                 uuid.UUID        `json:"id"`
	CustomerID         uuid.UUID        `json:"customer_id"`
	StyleDescription   string           `json:"style_description"`
	OfferPrice         float64          `json:"offer_price"`
	Location           LocationResponse `json:"location"`
	PreferredAt        *time.Time       `json:"preferred_at,omitempty"`
	Status             RequestStatus    `json:"status"`
	AcceptedOfferID    *uuid.UUID       `json:"accepted_offer_id,omitempty"`
	AcceptedProviderID *uuid.UUID       `json:"accepted_provider_id,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// RequestResponseFromEntity converts entity to response
func RequestResponseFromEntity(r *Request) *RequestResponse {
	resp := &RequestResponse{
		ID:               r.ID,
		CustomerID:       r.CustomerID,
		StyleDescription: r.StyleDescription,
		OfferPrice:       r.OfferPrice,
		Location:         LocationResponse{Lat: r.Lat, Lng: r.Lng},
		Status:           r.Status,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.PreferredAt.Valid {
		resp.PreferredAt = &r.PreferredAt.Time
	}
	if r.AcceptedOfferID.Valid {
		resp.AcceptedOfferID = &r.AcceptedOfferID.UUID
	}
	if r.AcceptedProviderID.Valid {
		resp.AcceptedProviderID = &r.AcceptedProviderID.UUID
	}
	return resp
}

// OfferResponse represents offer in API response
type OfferResponse struct {
	ID            uuid.UUID   `json:"id"`
	RequestID     uuid.UUID   `json:"request_id"`
	ProviderID    uuid.UUID   `json:"provider_id"`
	Price         float64     `json:"price"`
	EstimatedTime int         `json:"estimated_time"`
	Message       string      `json:"message"`
	Status        OfferStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OfferResponseFromEntity converts entity to response
func OfferResponseFromEntity(o *Offer) *OfferResponse {
	return &OfferResponse{
		ID:            o.ID,
		RequestID:     o.RequestID,
		ProviderID:    o.ProviderID,
		Price:         o.Price,
		EstimatedTime: o.EstimatedMinutes,
		Message:       o.Message,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// OfferedPayload is the RequestOffered event body
type OfferedPayload struct {
	RequestID  uuid.UUID `json:"request_id"`
	OfferID    uuid.UUID `json:"offer_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Price      float64   `json:"price"`
}

// AcceptedPayload is the OfferAccepted event body
type AcceptedPayload struct {
	RequestID        uuid.UUID   `json:"request_id"`
	OfferID          uuid.UUID   `json:"offer_id"`
	CustomerID       uuid.UUID   `json:"customer_id"`
	ProviderID       uuid.UUID   `json:"provider_id"`
	RejectedOfferIDs []uuid.UUID `json:"rejected_offer_ids"`
	BookingID        uuid.UUID   `json:"booking_id"`
	NegotiatedPrice  float64     `json:"negotiated_price"`
}
