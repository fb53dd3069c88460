// Package payment informs the payment side of the marketplace about amounts
// owed for a booking. Settlement happens elsewhere.
package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/pkg/logger"
	"github.com/curlmap/curlmap-api/internal/pkg/robokassa"
)

// BookingCharge is what the customer owes for a booking
type BookingCharge struct {
	BookingID     uuid.UUID
	InvoiceNo     int64
	DepositAmount float64
	TotalAmount   float64
	Currency      string
}

// Collaborator is notified once per created booking
type Collaborator interface {
	BookingCreated(ctx context.Context, charge BookingCharge) error
}

// Noop ignores charges
type Noop struct{}

func (Noop) BookingCreated(ctx context.Context, charge BookingCharge) error { return nil }

// RoboKassaCollaborator prepares a deposit checkout link for each booking
type RoboKassaCollaborator struct {
	client *robokassa.Client
}

// NewRoboKassaCollaborator creates a collaborator backed by client
func NewRoboKassaCollaborator(client *robokassa.Client) *RoboKassaCollaborator {
	return &RoboKassaCollaborator{client: client}
}

func (c *RoboKassaCollaborator) BookingCreated(ctx context.Context, charge BookingCharge) error {
	if charge.DepositAmount <= 0 {
		return nil
	}
	link, err := c.client.CheckoutURL(robokassa.CheckoutRequest{
		Amount:      charge.DepositAmount,
		InvID:       charge.InvoiceNo,
		Description: "Booking deposit",
		Shp: map[string]string{
			"booking": charge.BookingID.String(),
			"kind":    "deposit",
		},
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info().
		Str("booking_id", charge.BookingID.String()).
		Float64("deposit", charge.DepositAmount).
		Float64("total", charge.TotalAmount).
		Str("currency", charge.Currency).
		Str("checkout_url", link).
		Msg("Deposit checkout prepared")
	return nil
}

// New picks the RoboKassa collaborator when credentials exist and Noop otherwise
func New(cfg robokassa.Config) Collaborator {
	client := robokassa.NewClient(cfg)
	if !client.Configured() {
		return Noop{}
	}
	return NewRoboKassaCollaborator(client)
}
