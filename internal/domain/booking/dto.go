package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/geo"
	"github.com/curlmap/curlmap-api/internal/domain/pricing"
)

// LocationRequest is a point in a request body
type LocationRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// CreateBookingRequest represents POST /bookings
type CreateBookingRequest struct {
	ServiceID     uuid.UUID       `json:"service_id" validate:"required"`
	ProposedPrice float64         `json:"proposed_price" validate:"gt=0"`
	AppointmentAt time.Time       `json:"appointment_at" validate:"required"`
	Location      LocationRequest `json:"location"`
}

// UpdateStatusRequest represents PATCH /bookings/{id}/status
type UpdateStatusRequest struct {
	ExpectedStatus        string `json:"expected_status" validate:"required,booking_status"`
	Status                string `json:"status" validate:"required,booking_status"`
	Reason                string `json:"reason" validate:"max=500"`
	ActualDurationMinutes *int   `json:"actual_duration_minutes"`
	Notes                 string `json:"notes" validate:"max=2000"`
}

// CancelBookingRequest represents POST /bookings/{id}/cancel
type CancelBookingRequest struct {
	ExpectedStatus string `json:"expected_status" validate:"required,booking_status"`
	Reason         string `json:"reason" validate:"required,max=500"`
}

// AddFeeRequest represents POST /bookings/{id}/fees
type AddFeeRequest struct {
	Label  string  `json:"label" validate:"required,max=100"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// PricingResponse is the pricing block of a booking
type PricingResponse struct {
	BasePrice       float64       `json:"base_price"`
	NegotiatedPrice float64       `json:"negotiated_price"`
	DepositAmount   float64       `json:"deposit_amount"`
	AdditionalFees  []pricing.Fee `json:"additional_fees"`
	TotalAmount     float64       `json:"total_amount"`
	Currency        string        `json:"currency"`
}

// ServiceSnapshot is the booked service
type ServiceSnapshot struct {
	ID              *uuid.UUID `json:"id,omitempty"`
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	DurationMinutes int        `json:"duration_minutes"`
	BasePrice       float64    `json:"base_price"`
}

// CompletionResponse is attached to completed bookings
type CompletionResponse struct {
	CompletedAt           time.Time `json:"completed_at"`
	ActualDurationMinutes int       `json:"actual_duration_minutes"`
	Notes                 string    `json:"notes,omitempty"`
}

// BookingResponse represents booking in API response
type BookingResponse struct {
	ID                  uuid.UUID           `json:"id"`
	CustomerID          uuid.UUID           `json:"customer_id"`
	ProviderID          uuid.UUID           `json:"provider_id"`
	RequestID           *uuid.UUID          `json:"request_id,omitempty"`
	Service             ServiceSnapshot     `json:"service"`
	Pricing             PricingResponse     `json:"pricing"`
	AppointmentDateTime time.Time           `json:"appointment_date_time"`
	Location            geo.Point           `json:"location"`
	Status              Status              `json:"status"`
	CancellationReason  string              `json:"cancellation_reason,omitempty"`
	Completion          *CompletionResponse `json:"completion,omitempty"`
	ChatID              *uuid.UUID          `json:"chat_id,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

func nullableID(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	v := id.UUID
	return &v
}

// BookingResponseFromEntity converts entity to response
func BookingResponseFromEntity(b *Booking) *BookingResponse {
	fees := []pricing.Fee(b.AdditionalFees)
	if fees == nil {
		fees = []pricing.Fee{}
	}

	resp := &BookingResponse{
		ID:         b.ID,
		CustomerID: b.CustomerID,
		ProviderID: b.ProviderID,
		RequestID:  nullableID(b.RequestID),
		Service: ServiceSnapshot{
			ID:              nullableID(b.ServiceID),
			Name:            b.ServiceName,
			Category:        b.ServiceCategory,
			DurationMinutes: b.DurationMinutes,
			BasePrice:       b.BasePrice,
		},
		Pricing: PricingResponse{
			BasePrice:       b.BasePrice,
			NegotiatedPrice: b.NegotiatedPrice,
			DepositAmount:   b.DepositAmount,
			AdditionalFees:  fees,
			TotalAmount:     b.TotalAmount,
			Currency:        b.Currency,
		},
		AppointmentDateTime: b.AppointmentAt,
		Location:            b.Location(),
		Status:              b.Status,
		CancellationReason:  b.CancellationReason.String,
		ChatID:              nullableID(b.ChatID),
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
	if b.CompletedAt.Valid {
		resp.Completion = &CompletionResponse{
			CompletedAt:           b.CompletedAt.Time,
			ActualDurationMinutes: int(b.ActualDurationMinutes.Int32),
			Notes:                 b.CompletionNotes.String,
		}
	}
	return resp
}

// StatusChangedPayload is the BookingStatusChanged event body
type StatusChangedPayload struct {
	BookingID  uuid.UUID `json:"booking_id"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
	Reason     string    `json:"reason,omitempty"`
	ActorID    uuid.UUID `json:"actor_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ProviderID uuid.UUID `json:"provider_id"`
}
