package provider

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/geo"
)

// Provider is a stylist's public profile. ID equals the provider's user id.
type Provider struct {
	ID            uuid.UUID       `db:"id"`
	DisplayName   string          `db:"display_name"`
	Bio           sql.NullString  `db:"bio"`
	Lat           sql.NullFloat64 `db:"lat"`
	Lng           sql.NullFloat64 `db:"lng"`
	RatingAverage float64         `db:"rating_average"`
	RatingCount   int             `db:"rating_count"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// Location returns the provider's point, if set
func (p *Provider) Location() (geo.Point, bool) {
	if !p.Lat.Valid || !p.Lng.Valid {
		return geo.Point{}, false
	}
	return geo.Point{Lat: p.Lat.Float64, Lng: p.Lng.Float64}, true
}

// Listing is a listed service with a published base price
type Listing struct {
	ID              uuid.UUID `db:"id"`
	ProviderID      uuid.UUID `db:"provider_id"`
	Name            string    `db:"name"`
	Category        string    `db:"category"`
	DurationMinutes int       `db:"duration_minutes"`
	BasePrice       float64   `db:"base_price"`
	IsActive        bool      `db:"is_active"`
	CreatedAt       time.Time `db:"created_at"`
}
