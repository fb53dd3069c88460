package geo

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Point is a WGS84 coordinate
type Point struct {
	Lat float64 `json:"lat" db:"lat"`
	Lng float64 `json:"lng" db:"lng"`
}

// Validate rejects non-finite and out-of-range coordinates
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return ErrInvalidCoordinates
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// Kind selects what is being searched
type Kind string

const (
	KindProviders Kind = "providers"
	KindRequests  Kind = "requests"
)

// Filters narrows a provider search. Request searches ignore them.
type Filters struct {
	MinRating *float64
	Category  string
}

// Candidate is an entity with a location, as stored
type Candidate struct {
	ID            uuid.UUID `db:"id"`
	Title         string    `db:"title"`
	Lat           float64   `db:"lat"`
	Lng           float64   `db:"lng"`
	RatingAverage float64   `db:"rating_average"`
	Price         *float64  `db:"price"`
	CreatedAt     time.Time `db:"created_at"`
}

// Location returns the candidate's point
func (c Candidate) Location() Point {
	return Point{Lat: c.Lat, Lng: c.Lng}
}

// Ranked is a candidate with its distance from the search origin attached
type Ranked struct {
	Candidate
	DistanceKm float64
}

// Query is a findNearby call
type Query struct {
	Kind     Kind
	Origin   Point
	RadiusKm float64
	Filters  Filters
	Page     int
	Limit    int
}

// Page is a window of ranked results plus the total match count
type Page struct {
	Items []Ranked
	Total int
	Page  int
	Limit int
}
