package booking

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/geo"
	"github.com/curlmap/curlmap-api/internal/domain/pricing"
)

// Status represents booking status (matches booking_status enum)
type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// Fees is stored as a JSONB array
type Fees []pricing.Fee

func (f Fees) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (f *Fees) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*f = Fees{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("booking: unsupported fees column type")
	}
	return json.Unmarshal(raw, f)
}

// Booking represents an appointment between a customer and a provider
type Booking struct {
	ID         uuid.UUID     `db:"id"`
	InvoiceNo  int64         `db:"invoice_no"`
	CustomerID uuid.UUID     `db:"customer_id"`
	ProviderID uuid.UUID     `db:"provider_id"`
	RequestID  uuid.NullUUID `db:"request_id"`
	ServiceID  uuid.NullUUID `db:"service_id"`

	// Service snapshot
	ServiceName     string  `db:"service_name"`
	ServiceCategory string  `db:"service_category"`
	DurationMinutes int     `db:"duration_minutes"`
	BasePrice       float64 `db:"base_price"`

	// Pricing
	NegotiatedPrice float64 `db:"negotiated_price"`
	DepositAmount   float64 `db:"deposit_amount"`
	AdditionalFees  Fees    `db:"additional_fees"`
	TotalAmount     float64 `db:"total_amount"`
	Currency        string  `db:"currency"`

	AppointmentAt time.Time `db:"appointment_at"`
	Lat           float64   `db:"lat"`
	Lng           float64   `db:"lng"`

	Status             Status         `db:"status"`
	CancellationReason sql.NullString `db:"cancellation_reason"`

	// Completion
	CompletedAt           sql.NullTime   `db:"completed_at"`
	ActualDurationMinutes sql.NullInt32  `db:"actual_duration_minutes"`
	CompletionNotes       sql.NullString `db:"completion_notes"`

	ChatID uuid.NullUUID `db:"chat_id"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Location returns the appointment location
func (b *Booking) Location() geo.Point {
	return geo.Point{Lat: b.Lat, Lng: b.Lng}
}

// IsParticipant reports whether userID is the customer or the provider
func (b *Booking) IsParticipant(userID uuid.UUID) bool {
	return b.CustomerID == userID || b.ProviderID == userID
}

// Completion is attached when a booking completes
type Completion struct {
	CompletedAt           time.Time
	ActualDurationMinutes int
	Notes                 string
}

// Transition is one applied status change
type Transition struct {
	From       Status
	To         Status
	Reason     string
	Completion *Completion
}

// Derived describes a booking produced by accepting an offer
type Derived struct {
	RequestID        uuid.UUID
	CustomerID       uuid.UUID
	ProviderID       uuid.UUID
	StyleDescription string
	EstimatedMinutes int
	OpeningPrice     float64
	AgreedPrice      float64
	AppointmentAt    time.Time
	Location         geo.Point
}

// NewDerived builds the booking for an accepted offer. The provider agreed
// by making the offer and the customer by accepting it, so the booking
// starts accepted.
func NewDerived(policy pricing.Policy, d Derived) *Booking {
	now := time.Now().UTC()
	return &Booking{
		ID:              uuid.New(),
		CustomerID:      d.CustomerID,
		ProviderID:      d.ProviderID,
		RequestID:       uuid.NullUUID{UUID: d.RequestID, Valid: true},
		ServiceName:     d.StyleDescription,
		ServiceCategory: "custom",
		DurationMinutes: d.EstimatedMinutes,
		BasePrice:       d.OpeningPrice,
		NegotiatedPrice: d.AgreedPrice,
		DepositAmount:   policy.Deposit(d.AgreedPrice),
		AdditionalFees:  Fees{},
		TotalAmount:     pricing.Total(d.AgreedPrice, nil),
		Currency:        policy.Currency,
		AppointmentAt:   d.AppointmentAt,
		Lat:             d.Location.Lat,
		Lng:             d.Location.Lng,
		Status:          StatusAccepted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
