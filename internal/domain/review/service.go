package review

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/booking"
	"github.com/curlmap/curlmap-api/internal/domain/user"
	"github.com/curlmap/curlmap-api/internal/pkg/logger"
)

const recentReviews = 3

// BookingLookup resolves a booking visible to actor
type BookingLookup interface {
	GetByID(ctx context.Context, actor user.Actor, id uuid.UUID) (*booking.Booking, error)
}

// Service handles review business logic
type Service struct {
	repo     Repository
	bookings BookingLookup
	now      func() time.Time
}

// NewService creates review service
func NewService(repo Repository, bookings BookingLookup) *Service {
	return &Service{repo: repo, bookings: bookings, now: time.Now}
}

// Create rates a completed booking. Each booking can be reviewed once, by
// its customer.
func (s *Service) Create(ctx context.Context, actor user.Actor, in *CreateReviewRequest) (*Review, error) {
	if in.Rating < MinRating || in.Rating > MaxRating {
		return nil, ErrInvalidRating
	}

	b, err := s.bookings.GetByID(ctx, actor, in.BookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != actor.ID {
		return nil, ErrNotBookingCustomer
	}
	if b.Status != booking.StatusCompleted {
		return nil, ErrBookingNotCompleted
	}

	comment := strings.TrimSpace(in.Comment)
	review := &Review{
		ID:         uuid.New(),
		BookingID:  b.ID,
		ProviderID: b.ProviderID,
		CustomerID: actor.ID,
		Rating:     in.Rating,
		Comment:    sql.NullString{String: comment, Valid: comment != ""},
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("review_id", review.ID.String()).
		Str("booking_id", b.ID.String()).
		Str("provider_id", b.ProviderID.String()).
		Int("rating", review.Rating).
		Msg("Booking reviewed")
	return review, nil
}

// ListByProvider returns a provider's reviews, newest first
func (s *Service) ListByProvider(ctx context.Context, providerID uuid.UUID, page, limit int) ([]*Review, int, error) {
	return s.repo.ListByProvider(ctx, providerID, limit, (page-1)*limit)
}

// Summary returns the rating overview of a provider
func (s *Service) Summary(ctx context.Context, providerID uuid.UUID) (*Summary, error) {
	dist, err := s.repo.Distribution(ctx, providerID)
	if err != nil {
		return nil, err
	}
	recent, _, err := s.repo.ListByProvider(ctx, providerID, recentReviews, 0)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Distribution: dist, Recent: recent}
	sum := 0
	for rating, n := range dist {
		summary.TotalReviews += n
		sum += rating * n
	}
	if summary.TotalReviews > 0 {
		summary.AverageRating = float64(sum) / float64(summary.TotalReviews)
	}
	return summary, nil
}

// Delete removes the caller's own review
func (s *Service) Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrReviewNotFound
	}
	if review.CustomerID != actor.ID && !actor.IsAdmin() {
		return ErrNotReviewAuthor
	}
	return s.repo.Delete(ctx, review)
}
