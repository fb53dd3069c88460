package review

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a customer's rating of a completed booking
type Review struct {
	ID         uuid.UUID      `db:"id"`
	BookingID  uuid.UUID      `db:"booking_id"`
	ProviderID uuid.UUID      `db:"provider_id"`
	CustomerID uuid.UUID      `db:"customer_id"`
	Rating     int            `db:"rating"`
	Comment    sql.NullString `db:"comment"`
	CreatedAt  time.Time      `db:"created_at"`
}

// Summary is the rating overview of one provider
type Summary struct {
	AverageRating float64
	TotalReviews  int
	Distribution  map[int]int
	Recent        []*Review
}
