package review

import (
	"time"

	"github.com/google/uuid"
)

// CreateReviewRequest represents POST /reviews
type CreateReviewRequest struct {
	BookingID uuid.UUID `json:"booking_id" validate:"required"`
	Rating    int       `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   string    `json:"comment" validate:"max=2000"`
}

// ReviewResponse for API response
type ReviewResponse struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"booking_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewResponseFromEntity converts entity to response
func ReviewResponseFromEntity(r *Review) *ReviewResponse {
	return &ReviewResponse{
		ID:         r.ID,
		BookingID:  r.BookingID,
		ProviderID: r.ProviderID,
		CustomerID: r.CustomerID,
		Rating:     r.Rating,
		Comment:    r.Comment.String,
		CreatedAt:  r.CreatedAt,
	}
}

// SummaryResponse is the provider rating overview
type SummaryResponse struct {
	AverageRating float64           `json:"average_rating"`
	TotalReviews  int               `json:"total_reviews"`
	Distribution  map[int]int       `json:"distribution"`
	RecentReviews []*ReviewResponse `json:"recent_reviews"`
}

// SummaryResponseFromEntity converts summary to response
func SummaryResponseFromEntity(s *Summary) *SummaryResponse {
	resp := &SummaryResponse{
		AverageRating: s.AverageRating,
		TotalReviews:  s.TotalReviews,
		Distribution:  s.Distribution,
		RecentReviews: make([]*ReviewResponse, len(s.Recent)),
	}
	for i, r := range s.Recent {
		resp.RecentReviews[i] = ReviewResponseFromEntity(r)
	}
	return resp
}
