package geo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository reads located entities from PostgreSQL
type Repository interface {
	Locator
	ByIDs(ctx context.Context, kind Kind, ids []uuid.UUID, filters Filters) ([]Candidate, error)
	All(ctx context.Context, kind Kind) ([]Candidate, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new geo repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const providerSelect = `
	SELECT p.id, p.display_name AS title, p.lat, p.lng, p.rating_average, NULL::float8 AS price, p.created_at
	FROM providers p`

const requestSelect = `
	SELECT r.id, r.style_description AS title, r.lat, r.lng, 0::float8 AS rating_average, r.offer_price AS price, r.created_at
	FROM requests r`

// baseQuery returns the select and the always-on conditions for kind
func baseQuery(kind Kind) (string, string, []string, error) {
	switch kind {
	case KindProviders:
		return providerSelect, "p", []string{"p.lat IS NOT NULL", "p.lng IS NOT NULL"}, nil
	case KindRequests:
		return requestSelect, "r", []string{"r.status IN ('pending', 'offered')"}, nil
	default:
		return "", "", nil, ErrUnknownKind
	}
}

func appendFilters(kind Kind, alias string, filters Filters, conditions []string, args []interface{}) ([]string, []interface{}) {
	if kind != KindProviders {
		return conditions, args
	}
	if filters.MinRating != nil {
		args = append(args, *filters.MinRating)
		conditions = append(conditions, fmt.Sprintf("%s.rating_average >= $%d", alias, len(args)))
	}
	if filters.Category != "" {
		args = append(args, filters.Category)
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM provider_services s WHERE s.provider_id = %s.id AND s.is_active AND s.category = $%d)",
			alias, len(args)))
	}
	return conditions, args
}

func (r *repository) Within(ctx context.Context, kind Kind, origin Point, radiusKm float64, filters Filters) ([]Candidate, error) {
	sel, alias, conditions, err := baseQuery(kind)
	if err != nil {
		return nil, err
	}

	b := boundingBox(origin, radiusKm)
	args := []interface{}{b.minLat, b.maxLat}
	conditions = append(conditions, fmt.Sprintf("%s.lat BETWEEN $1 AND $2", alias))
	if !b.wrapsLng {
		args = append(args, b.minLng, b.maxLng)
		conditions = append(conditions, fmt.Sprintf("%s.lng BETWEEN $3 AND $4", alias))
	}
	conditions, args = appendFilters(kind, alias, filters, conditions, args)

	query := sel + " WHERE " + strings.Join(conditions, " AND ")

	var candidates []Candidate
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		return nil, fmt.Errorf("select %s within radius: %w", kind, err)
	}
	return candidates, nil
}

func (r *repository) ByIDs(ctx context.Context, kind Kind, ids []uuid.UUID, filters Filters) ([]Candidate, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sel, alias, conditions, err := baseQuery(kind)
	if err != nil {
		return nil, err
	}

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	args := []interface{}{pq.Array(raw)}
	conditions = append(conditions, fmt.Sprintf("%s.id = ANY($1::uuid[])", alias))
	conditions, args = appendFilters(kind, alias, filters, conditions, args)

	query := sel + " WHERE " + strings.Join(conditions, " AND ")

	var candidates []Candidate
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		return nil, fmt.Errorf("select %s by ids: %w", kind, err)
	}
	return candidates, nil
}

func (r *repository) All(ctx context.Context, kind Kind) ([]Candidate, error) {
	sel, _, conditions, err := baseQuery(kind)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	if err := r.db.SelectContext(ctx, &candidates, sel+" WHERE "+strings.Join(conditions, " AND ")); err != nil {
		return nil, fmt.Errorf("select all %s: %w", kind, err)
	}
	return candidates, nil
}
