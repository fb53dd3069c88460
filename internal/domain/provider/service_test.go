package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/geo"
	"github.com/curlmap/curlmap-api/internal/domain/user"
)

type fakeRepo struct {
	providers map[uuid.UUID]*Provider
	services  map[uuid.UUID]*Listing
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{providers: map[uuid.UUID]*Provider{}, services: map[uuid.UUID]*Listing{}}
}

func (f *fakeRepo) Upsert(ctx context.Context, p *Provider) error {
	f.providers[p.ID] = p
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return f.providers[id], nil
}

func (f *fakeRepo) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lng float64) error {
	p, ok := f.providers[id]
	if !ok {
		return ErrProviderNotFound
	}
	p.Lat.Float64, p.Lat.Valid = lat, true
	p.Lng.Float64, p.Lng.Valid = lng, true
	return nil
}

func (f *fakeRepo) CreateService(ctx context.Context, s *Listing) error {
	f.services[s.ID] = s
	return nil
}

func (f *fakeRepo) GetService(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return f.services[id], nil
}

func (f *fakeRepo) ListServices(ctx context.Context, providerID uuid.UUID) ([]*Listing, error) {
	var out []*Listing
	for _, s := range f.services {
		if s.ProviderID == providerID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeIndexer struct {
	puts map[uuid.UUID]geo.Point
	err  error
}

func (f *fakeIndexer) Put(ctx context.Context, kind geo.Kind, id uuid.UUID, p geo.Point) error {
	if f.puts == nil {
		f.puts = map[uuid.UUID]geo.Point{}
	}
	f.puts[id] = p
	return f.err
}

func (f *fakeIndexer) Remove(ctx context.Context, kind geo.Kind, id uuid.UUID) error { return f.err }

func TestUpsertLocationIndexesProvider(t *testing.T) {
	repo := newFakeRepo()
	idx := &fakeIndexer{}
	svc := NewService(repo, idx)

	actor := user.Actor{ID: uuid.New(), Role: user.RoleProvider}
	if _, err := svc.UpsertProfile(context.Background(), actor, &UpsertProfileRequest{DisplayName: "Aigerim"}); err != nil {
		t.Fatalf("upsert profile: %v", err)
	}

	point := geo.Point{Lat: 43.25, Lng: 76.95}
	p, err := svc.UpsertLocation(context.Background(), actor, point)
	if err != nil {
		t.Fatalf("upsert location: %v", err)
	}
	if got, ok := p.Location(); !ok || got != point {
		t.Fatalf("expected stored location %v, got %v", point, got)
	}
	if idx.puts[actor.ID] != point {
		t.Fatal("expected location to be indexed")
	}
}

func TestUpsertLocationIndexFailureIsNotFatal(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeIndexer{err: errors.New("redis down")})

	actor := user.Actor{ID: uuid.New(), Role: user.RoleProvider}
	repo.providers[actor.ID] = &Provider{ID: actor.ID}

	if _, err := svc.UpsertLocation(context.Background(), actor, geo.Point{Lat: 1, Lng: 1}); err != nil {
		t.Fatalf("expected success despite index failure, got %v", err)
	}
}

func TestUpsertLocationValidation(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	_, err := svc.UpsertLocation(context.Background(), user.Actor{ID: uuid.New(), Role: user.RoleProvider}, geo.Point{Lat: 120})
	if !errors.Is(err, geo.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}

	_, err = svc.UpsertLocation(context.Background(), user.Actor{ID: uuid.New(), Role: user.RoleCustomer}, geo.Point{})
	if !errors.Is(err, ErrNotProvider) {
		t.Fatalf("expected ErrNotProvider, got %v", err)
	}
}

func TestCreateServiceRequiresProfile(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	actor := user.Actor{ID: uuid.New(), Role: user.RoleProvider}

	_, err := svc.CreateService(context.Background(), actor, &CreateServiceRequest{Name: "Cut", Category: "haircut", DurationMinutes: 30, BasePrice: 100})
	if !errors.Is(err, ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestGetServiceNotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	if _, err := svc.GetService(context.Background(), uuid.New()); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
}
