// Package events carries domain events out of the core after a write has
// committed. Formatting and delivery to end users is the notifier's job.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/pkg/logger"
)

// Type names a domain event
type Type string

const (
	RequestCreated       Type = "RequestCreated"
	RequestOffered       Type = "RequestOffered"
	RequestCancelled     Type = "RequestCancelled"
	OfferAccepted        Type = "OfferAccepted"
	OfferRejected        Type = "OfferRejected"
	BookingCreated       Type = "BookingCreated"
	BookingStatusChanged Type = "BookingStatusChanged"
	MessageSent          Type = "MessageSent"
	ChatRead             Type = "ChatRead"
)

// Event is the envelope written to every sink
type Event struct {
	ID          uuid.UUID       `json:"id"`
	Type        Type            `json:"type"`
	AggregateID uuid.UUID       `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload"`
}

// New builds an event, encoding payload as JSON
func New(eventType Type, aggregateID uuid.UUID, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:          uuid.New(),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Payload:     raw,
	}, nil
}

// Publisher delivers events to a sink
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// Emit builds and publishes one event. Failures are logged, not returned:
// the write the event describes has already committed.
func Emit(ctx context.Context, p Publisher, eventType Type, aggregateID uuid.UUID, payload any) {
	if p == nil {
		return
	}
	evt, err := New(eventType, aggregateID, payload)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("event_type", string(eventType)).Msg("Failed to encode event")
		return
	}
	if err := p.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("event_type", string(eventType)).
			Str("aggregate_id", aggregateID.String()).
			Msg("Failed to publish event")
	}
}

// Multi fans out to several publishers and joins their errors
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, events ...Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, events...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPublisher writes events to the structured log
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, events ...Event) error {
	for _, evt := range events {
		logger.FromContext(ctx).Info().
			Str("event_type", string(evt.Type)).
			Str("aggregate_id", evt.AggregateID.String()).
			RawJSON("payload", evt.Payload).
			Msg("Domain event")
	}
	return nil
}
