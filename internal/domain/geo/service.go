package geo

import (
	"context"
	"sort"

	"github.com/curlmap/curlmap-api/internal/pkg/apperr"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Service ranks located entities around a point
type Service struct {
	locator     Locator
	maxRadiusKm float64
}

// NewService creates geo service. maxRadiusKm <= 0 disables the upper bound.
func NewService(locator Locator, maxRadiusKm float64) *Service {
	return &Service{locator: locator, maxRadiusKm: maxRadiusKm}
}

// Validate checks origin and radius without running a search
func (s *Service) Validate(origin Point, radiusKm float64) error {
	if err := origin.Validate(); err != nil {
		return err
	}
	if !(radiusKm > 0) {
		return ErrInvalidRadius
	}
	if s.maxRadiusKm > 0 && radiusKm > s.maxRadiusKm {
		return apperr.WithDetails(ErrRadiusTooLarge, map[string]string{
			"max_radius_km": formatKm(s.maxRadiusKm),
		})
	}
	return nil
}

// FindNearby returns one page of entities within the radius, closest first.
// Ties are broken by rating (highest first), then by age (oldest first).
func (s *Service) FindNearby(ctx context.Context, q Query) (*Page, error) {
	if q.Kind != KindProviders && q.Kind != KindRequests {
		return nil, ErrUnknownKind
	}
	if err := s.Validate(q.Origin, q.RadiusKm); err != nil {
		return nil, err
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > maxLimit {
		q.Limit = defaultLimit
	}

	candidates, err := s.locator.Within(ctx, q.Kind, q.Origin, q.RadiusKm, q.Filters)
	if err != nil {
		return nil, err
	}

	ranked := Rank(q.Origin, q.RadiusKm, candidates)

	page := &Page{Total: len(ranked), Page: q.Page, Limit: q.Limit, Items: []Ranked{}}
	start := (q.Page - 1) * q.Limit
	if start < len(ranked) {
		end := start + q.Limit
		if end > len(ranked) {
			end = len(ranked)
		}
		page.Items = ranked[start:end]
	}
	return page, nil
}

// Rank attaches distances, drops candidates outside radiusKm and orders the rest
func Rank(origin Point, radiusKm float64, candidates []Candidate) []Ranked {
	ranked := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		d := DistanceKm(origin, c.Location())
		if d > radiusKm {
			continue
		}
		ranked = append(ranked, Ranked{Candidate: c, DistanceKm: d})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		if a.RatingAverage != b.RatingAverage {
			return a.RatingAverage > b.RatingAverage
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return ranked
}
