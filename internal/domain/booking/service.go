package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/curlmap/curlmap-api/internal/domain/geo"
	"github.com/curlmap/curlmap-api/internal/domain/pricing"
	"github.com/curlmap/curlmap-api/internal/domain/provider"
	"github.com/curlmap/curlmap-api/internal/domain/user"
	"github.com/curlmap/curlmap-api/internal/pkg/events"
	"github.com/curlmap/curlmap-api/internal/pkg/logger"
	"github.com/curlmap/curlmap-api/internal/pkg/payment"
)

// ServiceCatalog resolves listed services for direct bookings
type ServiceCatalog interface {
	GetService(ctx context.Context, id uuid.UUID) (*provider.Listing, error)
}

// RequestCompleter closes the negotiation request a booking came from
type RequestCompleter interface {
	CompleteRequestTx(ctx context.Context, tx *sqlx.Tx, requestID uuid.UUID) error
}

// ChatProvisioner opens the conversation between the two parties
type ChatProvisioner interface {
	EnsureBookingChat(ctx context.Context, bookingID, customerID, providerID uuid.UUID) (uuid.UUID, error)
}

// Service handles booking business logic
type Service struct {
	repo      Repository
	catalog   ServiceCatalog
	policy    pricing.Policy
	payments  payment.Collaborator
	publisher events.Publisher

	requests RequestCompleter
	chats    ChatProvisioner

	now func() time.Time
}

// NewService creates booking service
func NewService(repo Repository, catalog ServiceCatalog, policy pricing.Policy, payments payment.Collaborator, publisher events.Publisher) *Service {
	if payments == nil {
		payments = payment.Noop{}
	}
	return &Service{
		repo:      repo,
		catalog:   catalog,
		policy:    policy,
		payments:  payments,
		publisher: publisher,
		now:       time.Now,
	}
}

// SetRequestCompleter sets the negotiation hook (to avoid circular dependency)
func (s *Service) SetRequestCompleter(c RequestCompleter) {
	s.requests = c
}

// SetChatProvisioner sets chat provisioning (to avoid circular dependency)
func (s *Service) SetChatProvisioner(c ChatProvisioner) {
	s.chats = c
}

// Create books a listed service directly at a customer-proposed price
func (s *Service) Create(ctx context.Context, actor user.Actor, req *CreateBookingRequest) (*Booking, error) {
	if !actor.IsCustomer() {
		return nil, ErrOnlyCustomersBook
	}

	location := geo.Point{Lat: req.Location.Lat, Lng: req.Location.Lng}
	if err := location.Validate(); err != nil {
		return nil, err
	}
	if !req.AppointmentAt.After(s.now()) {
		return nil, ErrAppointmentInPast
	}

	svc, err := s.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, provider.ErrServiceInactive
	}
	if svc.ProviderID == actor.ID {
		return nil, ErrSelfBooking
	}
	price := pricing.Round(req.ProposedPrice)
	if err := s.policy.CheckMinimum(price, svc.BasePrice); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	b := &Booking{
		ID:              uuid.New(),
		CustomerID:      actor.ID,
		ProviderID:      svc.ProviderID,
		ServiceID:       uuid.NullUUID{UUID: svc.ID, Valid: true},
		ServiceName:     svc.Name,
		ServiceCategory: svc.Category,
		DurationMinutes: svc.DurationMinutes,
		BasePrice:       svc.BasePrice,
		NegotiatedPrice: price,
		DepositAmount:   s.policy.Deposit(price),
		AdditionalFees:  Fees{},
		TotalAmount:     pricing.Total(price, nil),
		Currency:        s.policy.Currency,
		AppointmentAt:   req.AppointmentAt.UTC(),
		Lat:             location.Lat,
		Lng:             location.Lng,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.Announce(ctx, b)
	return b, nil
}

// Announce runs the after-commit side effects of a new booking: payment
// notice, chat for already-accepted bookings, BookingCreated event
func (s *Service) Announce(ctx context.Context, b *Booking) {
	log := logger.FromContext(ctx)

	err := s.payments.BookingCreated(ctx, payment.BookingCharge{
		BookingID:     b.ID,
		InvoiceNo:     b.InvoiceNo,
		DepositAmount: b.DepositAmount,
		TotalAmount:   b.TotalAmount,
		Currency:      b.Currency,
	})
	if err != nil {
		log.Warn().Err(err).Str("booking_id", b.ID.String()).Msg("Payment collaborator rejected booking charge")
	}

	if b.Status == StatusAccepted {
		s.provisionChat(ctx, b)
	}

	events.Emit(ctx, s.publisher, events.BookingCreated, b.ID, BookingResponseFromEntity(b))
	log.Info().
		Str("booking_id", b.ID.String()).
		Str("status", string(b.Status)).
		Float64("negotiated_price", b.NegotiatedPrice).
		Msg("Booking created")
}

// GetByID returns a booking visible to actor
func (s *Service) GetByID(ctx context.Context, actor user.Actor, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if !actor.IsAdmin() && !b.IsParticipant(actor.ID) {
		return nil, ErrNotParticipant
	}
	return b, nil
}

// Parties returns the customer and provider of a booking visible to actor
func (s *Service) Parties(ctx context.Context, actor user.Actor, id uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	b, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return b.CustomerID, b.ProviderID, nil
}

// ListMy returns the actor's bookings, as customer or provider by role
func (s *Service) ListMy(ctx context.Context, actor user.Actor, filter ListFilter) ([]*Booking, int, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.ListByParticipant(ctx, actor.ID, actor.Role, filter)
}

// UpdateStatusInput is one updateBookingStatus call
type UpdateStatusInput struct {
	Expected              Status
	New                   Status
	Reason                string
	ActualDurationMinutes *int
	Notes                 string
}

// UpdateStatus moves a booking from in.Expected to in.New. The write only
// applies while the stored status still equals in.Expected; otherwise the
// caller gets ErrStaleStatus and must refetch.
func (s *Service) UpdateStatus(ctx context.Context, actor user.Actor, id uuid.UUID, in UpdateStatusInput) (*Booking, error) {
	if !in.Expected.IsValid() || !in.New.IsValid() {
		return nil, ErrInvalidStatus
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if in.New.RequiresReason() && in.Reason == "" {
		return nil, ErrReasonRequired
	}

	t := Transition{From: in.Expected, To: in.New, Reason: in.Reason}
	if in.New == StatusCompleted {
		if in.ActualDurationMinutes == nil {
			return nil, ErrCompletionRequired
		}
		if *in.ActualDurationMinutes < 0 {
			return nil, ErrNegativeDuration
		}
		t.Completion = &Completion{
			CompletedAt:           s.now().UTC(),
			ActualDurationMinutes: *in.ActualDurationMinutes,
			Notes:                 strings.TrimSpace(in.Notes),
		}
	}

	b, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !MayDrive(actor.Role, in.New) {
		return nil, ErrRoleCannotDrive
	}
	if b.Status != in.Expected {
		return nil, ErrStaleStatus
	}
	if in.Expected.IsTerminal() {
		return nil, ErrBookingClosed
	}
	if !in.Expected.CanTransitionTo(in.New) {
		return nil, ErrInvalidTransition
	}

	var hook TxHook
	if in.New == StatusCompleted && b.RequestID.Valid && s.requests != nil {
		requestID := b.RequestID.UUID
		hook = func(ctx context.Context, tx *sqlx.Tx) error {
			return s.requests.CompleteRequestTx(ctx, tx, requestID)
		}
	}

	applied, err := s.repo.ApplyTransition(ctx, id, t, hook)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrStaleStatus
	}

	b.Status = in.New
	if in.New.RequiresReason() {
		b.CancellationReason.String, b.CancellationReason.Valid = in.Reason, true
	}
	if t.Completion != nil {
		b.CompletedAt.Time, b.CompletedAt.Valid = t.Completion.CompletedAt, true
		b.ActualDurationMinutes.Int32, b.ActualDurationMinutes.Valid = int32(t.Completion.ActualDurationMinutes), true
		b.CompletionNotes.String, b.CompletionNotes.Valid = t.Completion.Notes, t.Completion.Notes != ""
	}
	b.UpdatedAt = s.now().UTC()

	logger.FromContext(ctx).Info().
		Str("booking_id", id.String()).
		Str("from", string(in.Expected)).
		Str("to", string(in.New)).
		Str("actor_id", actor.ID.String()).
		Msg("Booking status changed")

	if in.New == StatusAccepted {
		s.provisionChat(ctx, b)
	}

	events.Emit(ctx, s.publisher, events.BookingStatusChanged, b.ID, StatusChangedPayload{
		BookingID:  b.ID,
		From:       in.Expected,
		To:         in.New,
		Reason:     in.Reason,
		ActorID:    actor.ID,
		CustomerID: b.CustomerID,
		ProviderID: b.ProviderID,
	})

	return b, nil
}

// Cancel is UpdateStatus into cancelled
func (s *Service) Cancel(ctx context.Context, actor user.Actor, id uuid.UUID, expected Status, reason string) (*Booking, error) {
	return s.UpdateStatus(ctx, actor, id, UpdateStatusInput{Expected: expected, New: StatusCancelled, Reason: reason})
}

// AddFee appends a fee and recomputes the total. The deposit stays as
// computed at creation. Concurrent additions all land; the storage update
// appends in place.
func (s *Service) AddFee(ctx context.Context, actor user.Actor, id uuid.UUID, fee pricing.Fee) (*Booking, error) {
	fee.Label = strings.TrimSpace(fee.Label)
	if fee.Amount < 0 {
		return nil, pricing.ErrInvalidFee
	}
	fee.Amount = pricing.Round(fee.Amount)

	b, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && b.ProviderID != actor.ID {
		return nil, ErrOnlyProviderAddsFees
	}
	if b.Status.IsTerminal() {
		return nil, ErrBookingClosed
	}

	updated, err := s.repo.AppendFee(ctx, id, fee)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrBookingClosed
	}
	return updated, nil
}

func (s *Service) provisionChat(ctx context.Context, b *Booking) {
	if s.chats == nil || b.ChatID.Valid {
		return
	}
	chatID, err := s.chats.EnsureBookingChat(ctx, b.ID, b.CustomerID, b.ProviderID)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("booking_id", b.ID.String()).Msg("Failed to provision booking chat")
		return
	}
	if err := s.repo.SetChatID(ctx, b.ID, chatID); err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("booking_id", b.ID.String()).Msg("Failed to link booking chat")
		return
	}
	b.ChatID = uuid.NullUUID{UUID: chatID, Valid: true}
}
