package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/booking"
	"github.com/curlmap/curlmap-api/internal/domain/user"
)

type fakeRepo struct {
	mu      sync.Mutex
	reviews map[uuid.UUID]*Review
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{reviews: make(map[uuid.UUID]*Review)}
}

func (f *fakeRepo) Create(_ context.Context, review *Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reviews {
		if r.BookingID == review.BookingID {
			return ErrAlreadyReviewed
		}
	}
	f.reviews[review.ID] = review
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reviews[id], nil
}

func (f *fakeRepo) ListByProvider(_ context.Context, providerID uuid.UUID, limit, offset int) ([]*Review, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Review
	for _, r := range f.reviews {
		if r.ProviderID == providerID {
			out = append(out, r)
		}
	}
	total := len(out)
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeRepo) Distribution(_ context.Context, providerID uuid.UUID) (map[int]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range f.reviews {
		if r.ProviderID == providerID {
			dist[r.Rating]++
		}
	}
	return dist, nil
}

func (f *fakeRepo) Delete(_ context.Context, review *Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.reviews, review.ID)
	return nil
}

type fakeBookings map[uuid.UUID]*booking.Booking

func (f fakeBookings) GetByID(_ context.Context, _ user.Actor, id uuid.UUID) (*booking.Booking, error) {
	b, ok := f[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return b, nil
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	bookings fakeBookings
	customer user.Actor
	provider user.Actor
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newFakeRepo(),
		bookings: fakeBookings{},
		customer: user.Actor{ID: uuid.New(), Role: user.RoleCustomer},
		provider: user.Actor{ID: uuid.New(), Role: user.RoleProvider},
	}
	f.svc = NewService(f.repo, f.bookings)
	f.svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) booking(status booking.Status) *booking.Booking {
	b := &booking.Booking{
		ID:         uuid.New(),
		CustomerID: f.customer.ID,
		ProviderID: f.provider.ID,
		Status:     status,
	}
	f.bookings[b.ID] = b
	return b
}

func TestCreateReview(t *testing.T) {
	f := newFixture()
	b := f.booking(booking.StatusCompleted)

	got, err := f.svc.Create(context.Background(), f.customer, &CreateReviewRequest{
		BookingID: b.ID,
		Rating:    5,
		Comment:   "  great cut  ",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got.ProviderID != f.provider.ID {
		t.Errorf("ProviderID = %v, want %v", got.ProviderID, f.provider.ID)
	}
	if got.Comment.String != "great cut" || !got.Comment.Valid {
		t.Errorf("Comment = %+v, want trimmed text", got.Comment)
	}

	_, err = f.svc.Create(context.Background(), f.customer, &CreateReviewRequest{BookingID: b.ID, Rating: 4})
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Errorf("second Create() error = %v, want ErrAlreadyReviewed", err)
	}
}

func TestCreateReviewGuards(t *testing.T) {
	f := newFixture()
	completed := f.booking(booking.StatusCompleted)
	confirmed := f.booking(booking.StatusConfirmed)
	stranger := user.Actor{ID: uuid.New(), Role: user.RoleCustomer}

	tests := []struct {
		name    string
		actor   user.Actor
		req     CreateReviewRequest
		wantErr error
	}{
		{"rating too low", f.customer, CreateReviewRequest{BookingID: completed.ID, Rating: 0}, ErrInvalidRating},
		{"rating too high", f.customer, CreateReviewRequest{BookingID: completed.ID, Rating: 6}, ErrInvalidRating},
		{"not completed", f.customer, CreateReviewRequest{BookingID: confirmed.ID, Rating: 4}, ErrBookingNotCompleted},
		{"not the customer", stranger, CreateReviewRequest{BookingID: completed.ID, Rating: 4}, ErrNotBookingCustomer},
		{"unknown booking", f.customer, CreateReviewRequest{BookingID: uuid.New(), Rating: 4}, booking.ErrBookingNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tt.actor, &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	f := newFixture()
	for _, rating := range []int{5, 4, 5} {
		b := f.booking(booking.StatusCompleted)
		if _, err := f.svc.Create(context.Background(), f.customer, &CreateReviewRequest{BookingID: b.ID, Rating: rating}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	summary, err := f.svc.Summary(context.Background(), f.provider.ID)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.TotalReviews != 3 {
		t.Errorf("TotalReviews = %d, want 3", summary.TotalReviews)
	}
	if want := 14.0 / 3.0; summary.AverageRating != want {
		t.Errorf("AverageRating = %v, want %v", summary.AverageRating, want)
	}
	if summary.Distribution[5] != 2 || summary.Distribution[1] != 0 {
		t.Errorf("Distribution = %v", summary.Distribution)
	}
	if len(summary.Recent) != 3 {
		t.Errorf("len(Recent) = %d, want 3", len(summary.Recent))
	}
}

func TestSummaryWithoutReviews(t *testing.T) {
	f := newFixture()
	summary, err := f.svc.Summary(context.Background(), f.provider.ID)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.TotalReviews != 0 || summary.AverageRating != 0 {
		t.Errorf("summary = %+v, want empty", summary)
	}
}

func TestDeleteReview(t *testing.T) {
	f := newFixture()
	b := f.booking(booking.StatusCompleted)
	rv, err := f.svc.Create(context.Background(), f.customer, &CreateReviewRequest{BookingID: b.ID, Rating: 3})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := f.svc.Delete(context.Background(), f.provider, rv.ID); !errors.Is(err, ErrNotReviewAuthor) {
		t.Errorf("Delete() by provider error = %v, want ErrNotReviewAuthor", err)
	}
	if err := f.svc.Delete(context.Background(), f.customer, rv.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := f.svc.Delete(context.Background(), f.customer, rv.ID); !errors.Is(err, ErrReviewNotFound) {
		t.Errorf("Delete() again error = %v, want ErrReviewNotFound", err)
	}
}
