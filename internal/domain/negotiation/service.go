package negotiation

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/curlmap/curlmap-api/internal/domain/booking"
	"github.com/curlmap/curlmap-api/internal/domain/geo"
	"github.com/curlmap/curlmap-api/internal/domain/pricing"
	"github.com/curlmap/curlmap-api/internal/domain/user"
	"github.com/curlmap/curlmap-api/internal/pkg/events"
	"github.com/curlmap/curlmap-api/internal/pkg/logger"
)

// BookingAnnouncer runs the side effects of a committed booking
type BookingAnnouncer interface {
	Announce(ctx context.Context, b *booking.Booking)
}

// Service handles the request/offer protocol
type Service struct {
	repo      Repository
	indexer   geo.Indexer
	policy    pricing.Policy
	publisher events.Publisher
	bookings  BookingAnnouncer

	now func() time.Time
}

// NewService creates negotiation service
func NewService(repo Repository, indexer geo.Indexer, policy pricing.Policy, publisher events.Publisher) *Service {
	if indexer == nil {
		indexer = geo.NoopIndexer{}
	}
	return &Service{
		repo:      repo,
		indexer:   indexer,
		policy:    policy,
		publisher: publisher,
		now:       time.Now,
	}
}

// SetBookingAnnouncer sets booking side effects (to avoid circular dependency)
func (s *Service) SetBookingAnnouncer(a BookingAnnouncer) {
	s.bookings = a
}

// CreateRequest opens a request at the customer's opening price
func (s *Service) CreateRequest(ctx context.Context, actor user.Actor, in *CreateRequestRequest) (*Request, error) {
	if !actor.IsCustomer() {
		return nil, ErrOnlyCustomers
	}
	description := strings.TrimSpace(in.StyleDescription)
	if description == "" {
		return nil, ErrDescriptionEmpty
	}
	if !(in.OfferPrice > 0) {
		return nil, pricing.ErrInvalidPrice
	}
	location := geo.Point{Lat: in.Location.Lat, Lng: in.Location.Lng}
	if err := location.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	req := &Request{
		ID:               uuid.New(),
		CustomerID:       actor.ID,
		StyleDescription: description,
		OfferPrice:       pricing.Round(in.OfferPrice),
		Lat:              location.Lat,
		Lng:              location.Lng,
		Status:           RequestPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if in.PreferredAt != nil {
		if !in.PreferredAt.After(now) {
			return nil, ErrPreferredInPast
		}
		req.PreferredAt = sql.NullTime{Time: in.PreferredAt.UTC(), Valid: true}
	}

	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	if err := s.indexer.Put(ctx, geo.KindRequests, req.ID, location); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("request_id", req.ID.String()).Msg("Failed to index request location")
	}
	events.Emit(ctx, s.publisher, events.RequestCreated, req.ID, RequestResponseFromEntity(req))

	logger.FromContext(ctx).Info().
		Str("request_id", req.ID.String()).
		Float64("offer_price", req.OfferPrice).
		Msg("Request created")

	return req, nil
}

// GetRequest returns a request. Providers may view any request so they
// can bid on it; customers only their own.
func (s *Service) GetRequest(ctx context.Context, actor user.Actor, id uuid.UUID) (*Request, error) {
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if actor.IsCustomer() && req.CustomerID != actor.ID {
		return nil, ErrNotRequestOwner
	}
	return req, nil
}

// ListMyRequests returns the caller's requests
func (s *Service) ListMyRequests(ctx context.Context, actor user.Actor, status RequestStatus, page, limit int) ([]*Request, int, error) {
	if status != "" && !status.IsValid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.ListRequestsByCustomer(ctx, actor.ID, status, page, limit)
}

// CancelRequest withdraws an open request
func (s *Service) CancelRequest(ctx context.Context, actor user.Actor, id uuid.UUID) (*Request, error) {
	req, err := s.GetRequest(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && req.CustomerID != actor.ID {
		return nil, ErrNotRequestOwner
	}
	if !req.Status.IsOpen() {
		return nil, ErrRequestClosed
	}

	ok, err := s.repo.CancelRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRequestChanged
	}
	req.Status = RequestCancelled
	req.UpdatedAt = s.now().UTC()

	if err := s.indexer.Remove(ctx, geo.KindRequests, id); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("request_id", id.String()).Msg("Failed to unindex request")
	}
	events.Emit(ctx, s.publisher, events.RequestCancelled, id, RequestResponseFromEntity(req))
	return req, nil
}

// CreateOffer places the caller's bid on an open request
func (s *Service) CreateOffer(ctx context.Context, actor user.Actor, requestID uuid.UUID, in *CreateOfferRequest) (*Offer, error) {
	if !actor.IsProvider() {
		return nil, ErrOnlyProviders
	}
	if in.Price < 0 {
		return nil, ErrNegativeOfferPrice
	}
	if in.EstimatedTime <= 0 {
		return nil, ErrInvalidEstimate
	}

	now := s.now().UTC()
	offer := &Offer{
		ID:               uuid.New(),
		RequestID:        requestID,
		ProviderID:       actor.ID,
		Price:            pricing.Round(in.Price),
		EstimatedMinutes: in.EstimatedTime,
		Message:          strings.TrimSpace(in.Message),
		Status:           OfferPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	req, err := s.repo.CreateOffer(ctx, offer)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("request_id", requestID.String()).
		Str("offer_id", offer.ID.String()).
		Float64("price", offer.Price).
		Msg("Offer created")

	events.Emit(ctx, s.publisher, events.RequestOffered, requestID, OfferedPayload{
		RequestID:  requestID,
		OfferID:    offer.ID,
		CustomerID: req.CustomerID,
		ProviderID: offer.ProviderID,
		Price:      offer.Price,
	})
	return offer, nil
}

// ListOffers returns the offers on a request. The owner sees all of them,
// a provider only its own.
func (s *Service) ListOffers(ctx context.Context, actor user.Actor, requestID uuid.UUID) ([]*Offer, error) {
	req, err := s.GetRequest(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	offers, err := s.repo.ListOffers(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || req.CustomerID == actor.ID {
		return offers, nil
	}

	own := make([]*Offer, 0, 1)
	for _, o := range offers {
		if o.ProviderID == actor.ID {
			own = append(own, o)
		}
	}
	return own, nil
}

// AcceptOffer accepts one offer and books it. The sibling offers, the
// request and the new booking are written in one transaction.
func (s *Service) AcceptOffer(ctx context.Context, actor user.Actor, requestID, offerID uuid.UUID) (*booking.Booking, error) {
	acceptedAt := s.now().UTC()
	build := func(req *Request, offer *Offer) *booking.Booking {
		appointment := acceptedAt
		if req.PreferredAt.Valid {
			appointment = req.PreferredAt.Time
		}
		return booking.NewDerived(s.policy, booking.Derived{
			RequestID:        req.ID,
			CustomerID:       req.CustomerID,
			ProviderID:       offer.ProviderID,
			StyleDescription: req.StyleDescription,
			EstimatedMinutes: offer.EstimatedMinutes,
			OpeningPrice:     req.OfferPrice,
			AgreedPrice:      offer.Price,
			AppointmentAt:    appointment,
			Location:         req.Location(),
		})
	}

	acceptance, b, err := s.repo.AcceptOffer(ctx, actor.ID, requestID, offerID, build)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("request_id", requestID.String()).
		Str("offer_id", offerID.String()).
		Str("booking_id", b.ID.String()).
		Int("rejected_siblings", len(acceptance.Rejected)).
		Msg("Offer accepted")

	if err := s.indexer.Remove(ctx, geo.KindRequests, requestID); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("request_id", requestID.String()).Msg("Failed to unindex request")
	}
	events.Emit(ctx, s.publisher, events.OfferAccepted, requestID, AcceptedPayload{
		RequestID:        requestID,
		OfferID:          offerID,
		CustomerID:       acceptance.Request.CustomerID,
		ProviderID:       acceptance.Offer.ProviderID,
		RejectedOfferIDs: acceptance.Rejected,
		BookingID:        b.ID,
		NegotiatedPrice:  b.NegotiatedPrice,
	})
	if s.bookings != nil {
		s.bookings.Announce(ctx, b)
	}
	return b, nil
}

// RejectOffer rejects a pending offer. Either the offering provider
// (withdrawing) or the request owner may reject; siblings are untouched.
func (s *Service) RejectOffer(ctx context.Context, actor user.Actor, offerID uuid.UUID) (*Offer, error) {
	offer, err := s.repo.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}
	req, err := s.repo.GetRequest(ctx, offer.RequestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if !actor.IsAdmin() && actor.ID != offer.ProviderID && actor.ID != req.CustomerID {
		return nil, ErrNotOfferParty
	}
	if offer.Status != OfferPending {
		return nil, ErrOfferNotPending
	}

	ok, err := s.repo.RejectOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOfferNotPending
	}
	offer.Status = OfferRejected
	offer.UpdatedAt = s.now().UTC()

	events.Emit(ctx, s.publisher, events.OfferRejected, offer.RequestID, OfferResponseFromEntity(offer))
	return offer, nil
}

// CompleteRequestTx closes the request behind a completed booking
func (s *Service) CompleteRequestTx(ctx context.Context, tx *sqlx.Tx, requestID uuid.UUID) error {
	return s.repo.CompleteRequestTx(ctx, tx, requestID)
}
