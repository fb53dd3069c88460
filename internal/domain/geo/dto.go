package geo

import (
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NearbyItemResponse is one ranked result
type NearbyItemResponse struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Location      Point     `json:"location"`
	DistanceKm    float64   `json:"distance_km"`
	RatingAverage *float64  `json:"rating_average,omitempty"`
	OfferPrice    *float64  `json:"offer_price,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NearbyItemsFromPage converts a page for the given kind
func NearbyItemsFromPage(kind Kind, page *Page) []NearbyItemResponse {
	items := make([]NearbyItemResponse, len(page.Items))
	for i, r := range page.Items {
		item := NearbyItemResponse{
			ID:         r.ID,
			Title:      r.Title,
			Location:   r.Location(),
			DistanceKm: math.Round(r.DistanceKm*1000) / 1000,
			CreatedAt:  r.CreatedAt,
		}
		if kind == KindProviders {
			rating := r.RatingAverage
			item.RatingAverage = &rating
		} else {
			item.OfferPrice = r.Price
		}
		items[i] = item
	}
	return items
}

func formatKm(km float64) string {
	return strconv.FormatFloat(km, 'f', -1, 64)
}
