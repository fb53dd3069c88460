package review

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/curlmap/curlmap-api/internal/pkg/database"
)

// Repository defines review data access interface
type Repository interface {
	// Create stores the review and refreshes the provider's rating in one
	// transaction
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Review, int, error)
	Distribution(ctx context.Context, providerID uuid.UUID) (map[int]int, error)
	// Delete removes the review and refreshes the provider's rating
	Delete(ctx context.Context, review *Review) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new review repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// refreshRating recomputes the provider's denormalized rating columns that
// nearby search filters on
const refreshRating = `
	UPDATE providers p
	SET rating_average = COALESCE(s.avg, 0), rating_count = s.cnt, updated_at = NOW()
	FROM (SELECT AVG(rating)::float8 AS avg, COUNT(*) AS cnt FROM reviews WHERE provider_id = $1) s
	WHERE p.id = $1
`

func (r *repository) Create(ctx context.Context, review *Review) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reviews (id, booking_id, provider_id, customer_id, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, review.ID, review.BookingID, review.ProviderID, review.CustomerID, review.Rating, review.Comment, review.CreatedAt)
		if err != nil {
			if database.IsUniqueViolation(err, "reviews_booking_id_key") {
				return ErrAlreadyReviewed
			}
			return fmt.Errorf("insert review: %w", err)
		}
		if _, err := tx.ExecContext(ctx, refreshRating, review.ProviderID); err != nil {
			return fmt.Errorf("refresh provider rating: %w", err)
		}
		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	var review Review
	err := r.db.GetContext(ctx, &review, `SELECT * FROM reviews WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *repository) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Review, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reviews WHERE provider_id = $1`, providerID); err != nil {
		return nil, 0, err
	}

	var reviews []*Review
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT * FROM reviews
		WHERE provider_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, providerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *repository) Distribution(ctx context.Context, providerID uuid.UUID) (map[int]int, error) {
	type ratingCount struct {
		Rating int `db:"rating"`
		Count  int `db:"count"`
	}
	var counts []ratingCount
	err := r.db.SelectContext(ctx, &counts, `
		SELECT rating, COUNT(*) AS count
		FROM reviews
		WHERE provider_id = $1
		GROUP BY rating
	`, providerID)
	if err != nil {
		return nil, err
	}

	dist := make(map[int]int, MaxRating)
	for i := MinRating; i <= MaxRating; i++ {
		dist[i] = 0
	}
	for _, c := range counts {
		dist[c.Rating] = c.Count
	}
	return dist, nil
}

func (r *repository) Delete(ctx context.Context, review *Review) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, review.ID); err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		if _, err := tx.ExecContext(ctx, refreshRating, review.ProviderID); err != nil {
			return fmt.Errorf("refresh provider rating: %w", err)
		}
		return nil
	})
}
