package geo

import (
	"context"

	"github.com/google/uuid"
)

// Locator returns every candidate of kind within radiusKm of origin.
// Results may include a few entries slightly outside the radius; the
// service filters by exact distance.
type Locator interface {
	Within(ctx context.Context, kind Kind, origin Point, radiusKm float64, filters Filters) ([]Candidate, error)
}

// Indexer keeps a secondary spatial index in step with the database.
// The database remains the source of truth.
type Indexer interface {
	Put(ctx context.Context, kind Kind, id uuid.UUID, p Point) error
	Remove(ctx context.Context, kind Kind, id uuid.UUID) error
}

// NoopIndexer is used when no secondary index is configured
type NoopIndexer struct{}

func (NoopIndexer) Put(ctx context.Context, kind Kind, id uuid.UUID, p Point) error { return nil }
func (NoopIndexer) Remove(ctx context.Context, kind Kind, id uuid.UUID) error        { return nil }
