package provider

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/curlmap/curlmap-api/internal/domain/geo"
	"github.com/curlmap/curlmap-api/internal/domain/user"
)

// Service handles the provider catalog
type Service struct {
	repo    Repository
	indexer geo.Indexer
}

// NewService creates provider service
func NewService(repo Repository, indexer geo.Indexer) *Service {
	if indexer == nil {
		indexer = geo.NoopIndexer{}
	}
	return &Service{repo: repo, indexer: indexer}
}

// GetProvider returns a provider profile
func (s *Service) GetProvider(ctx context.Context, id uuid.UUID) (*Provider, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProviderNotFound
	}
	return p, nil
}

// UpsertProfile creates or updates the caller's provider profile
func (s *Service) UpsertProfile(ctx context.Context, actor user.Actor, req *UpsertProfileRequest) (*Provider, error) {
	if !actor.IsProvider() {
		return nil, ErrNotProvider
	}
	p := &Provider{
		ID:          actor.ID,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Bio:         sql.NullString{String: req.Bio, Valid: req.Bio != ""},
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpsertLocation moves the caller's pin and re-indexes it
func (s *Service) UpsertLocation(ctx context.Context, actor user.Actor, point geo.Point) (*Provider, error) {
	if !actor.IsProvider() {
		return nil, ErrNotProvider
	}
	if err := point.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLocation(ctx, actor.ID, point.Lat, point.Lng); err != nil {
		return nil, err
	}
	if err := s.indexer.Put(ctx, geo.KindProviders, actor.ID, point); err != nil {
		log.Warn().Err(err).Str("provider_id", actor.ID.String()).Msg("Failed to index provider location")
	}
	return s.GetProvider(ctx, actor.ID)
}

// CreateService lists a new offering for the caller
func (s *Service) CreateService(ctx context.Context, actor user.Actor, req *CreateServiceRequest) (*Listing, error) {
	if !actor.IsProvider() {
		return nil, ErrNotProvider
	}
	if _, err := s.GetProvider(ctx, actor.ID); err != nil {
		return nil, err
	}

	svc := &Listing{
		ID:              uuid.New(),
		ProviderID:      actor.ID,
		Name:            strings.TrimSpace(req.Name),
		Category:        req.Category,
		DurationMinutes: req.DurationMinutes,
		BasePrice:       req.BasePrice,
		IsActive:        true,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// ListServices returns a provider's active offerings
func (s *Service) ListServices(ctx context.Context, providerID uuid.UUID) ([]*Listing, error) {
	if _, err := s.GetProvider(ctx, providerID); err != nil {
		return nil, err
	}
	return s.repo.ListServices(ctx, providerID)
}

// GetService returns an offering by id
func (s *Service) GetService(ctx context.Context, id uuid.UUID) (*Listing, error) {
	svc, err := s.repo.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	return svc, nil
}
