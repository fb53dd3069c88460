package negotiation

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/geo"
)

// RequestStatus represents request status
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestOffered   RequestStatus = "offered"
	RequestAccepted  RequestStatus = "accepted"
	RequestCompleted RequestStatus = "completed"
	RequestCancelled RequestStatus = "cancelled"
)

// IsOpen reports whether the request still takes offers
func (s RequestStatus) IsOpen() bool {
	return s == RequestPending || s == RequestOffered
}

// IsValid reports whether s is a known request status
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestPending, RequestOffered, RequestAccepted, RequestCompleted, RequestCancelled:
		return true
	}
	return false
}

// OfferStatus represents offer status
type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
)

// Request is a customer's open call for a style at an opening price
type Request struct {
	ID                 uuid.UUID     `db:"id"`
	CustomerID         uuid.UUID     `db:"customer_id"`
	StyleDescription   string        `db:"style_description"`
	OfferPrice         float64       `db:"offer_price"`
	Lat                float64       `db:"lat"`
	Lng                float64       `db:"lng"`
	PreferredAt        sql.NullTime  `db:"preferred_at"`
	Status             RequestStatus `db:"status"`
	AcceptedOfferID    uuid.NullUUID `db:"accepted_offer_id"`
	AcceptedProviderID uuid.NullUUID `db:"accepted_provider_id"`
	CreatedAt          time.Time     `db:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at"`
}

// Location returns the request location
func (r *Request) Location() geo.Point {
	return geo.Point{Lat: r.Lat, Lng: r.Lng}
}

// Offer is a provider's bid against a request
type Offer struct {
	ID               uuid.UUID   `db:"id"`
	RequestID        uuid.UUID   `db:"request_id"`
	ProviderID       uuid.UUID   `db:"provider_id"`
	Price            float64     `db:"price"`
	EstimatedMinutes int         `db:"estimated_minutes"`
	Message          string      `db:"message"`
	Status           OfferStatus `db:"status"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

// Acceptance is the result of a committed acceptOffer
type Acceptance struct {
	Request  *Request
	Offer    *Offer
	Rejected []uuid.UUID
}

// checkAcceptance decides whether customerID may accept offer on req.
// Callers run it against rows locked for the duration of the write.
func checkAcceptance(req *Request, offer *Offer, customerID uuid.UUID) error {
	if req.CustomerID != customerID {
		return ErrNotRequestOwner
	}
	switch {
	case req.Status == RequestAccepted:
		return ErrAlreadyAccepted
	case !req.Status.IsOpen():
		return ErrRequestClosed
	}
	if offer == nil || offer.RequestID != req.ID {
		return ErrOfferNotFound
	}
	if offer.Status != OfferPending {
		return ErrOfferNotPending
	}
	return nil
}
