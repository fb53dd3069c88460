package provider

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines provider catalog data access
type Repository interface {
	Upsert(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	UpdateLocation(ctx context.Context, id uuid.UUID, lat, lng float64) error
	CreateService(ctx context.Context, s *Listing) error
	GetService(ctx context.Context, id uuid.UUID) (*Listing, error)
	ListServices(ctx context.Context, providerID uuid.UUID) ([]*Listing, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new provider repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, p *Provider) error {
	query := `
		INSERT INTO providers (id, display_name, bio)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name, bio = EXCLUDED.bio, updated_at = NOW()
		RETURNING lat, lng, rating_average, rating_count, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query, p.ID, p.DisplayName, p.Bio).
		Scan(&p.Lat, &p.Lng, &p.RatingAverage, &p.RatingCount, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	var p Provider
	err := r.db.GetContext(ctx, &p, `SELECT * FROM providers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lng float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE providers SET lat = $2, lng = $3, updated_at = NOW() WHERE id = $1`, id, lat, lng)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProviderNotFound
	}
	return nil
}

func (r *repository) CreateService(ctx context.Context, s *Listing) error {
	query := `
		INSERT INTO provider_services (id, provider_id, name, category, duration_minutes, base_price, is_active, created_at)
		VALUES (:id, :provider_id, :name, :category, :duration_minutes, :base_price, :is_active, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, s)
	return err
}

func (r *repository) GetService(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var s Listing
	err := r.db.GetContext(ctx, &s, `SELECT * FROM provider_services WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListServices(ctx context.Context, providerID uuid.UUID) ([]*Listing, error) {
	var services []*Listing
	err := r.db.SelectContext(ctx, &services, `
		SELECT * FROM provider_services
		WHERE provider_id = $1 AND is_active
		ORDER BY category, name
	`, providerID)
	return services, err
}
