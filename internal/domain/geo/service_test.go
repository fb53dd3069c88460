package geo

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeLocator struct {
	candidates []Candidate
	calls      int
}

func (f *fakeLocator) Within(ctx context.Context, kind Kind, origin Point, radiusKm float64, filters Filters) ([]Candidate, error) {
	f.calls++
	return f.candidates, nil
}

var almaty = Point{Lat: 43.2389, Lng: 76.8897}

func candidateAt(title string, lat, lng, rating float64, created time.Time) Candidate {
	return Candidate{ID: uuid.New(), Title: title, Lat: lat, Lng: lng, RatingAverage: rating, CreatedAt: created}
}

func TestFindNearbyValidation(t *testing.T) {
	svc := NewService(&fakeLocator{}, 50)

	tests := []struct {
		name   string
		origin Point
		radius float64
		want   error
	}{
		{"lat out of range", Point{Lat: 91, Lng: 0}, 5, ErrInvalidCoordinates},
		{"lng out of range", Point{Lat: 0, Lng: -180.5}, 5, ErrInvalidCoordinates},
		{"nan", Point{Lat: math.NaN(), Lng: 0}, 5, ErrInvalidCoordinates},
		{"inf", Point{Lat: 0, Lng: math.Inf(1)}, 5, ErrInvalidCoordinates},
		{"zero radius", almaty, 0, ErrInvalidRadius},
		{"negative radius", almaty, -1, ErrInvalidRadius},
		{"nan radius", almaty, math.NaN(), ErrInvalidRadius},
		{"radius above max", almaty, 51, ErrRadiusTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.FindNearby(context.Background(), Query{Kind: KindProviders, Origin: tt.origin, RadiusKm: tt.radius})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFindNearbyRanking(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	near := candidateAt("near", 43.2400, 76.8900, 3.0, base)
	tieHighRating := candidateAt("tie-high", 43.2500, 76.8897, 4.9, base.Add(2*time.Hour))
	tieOld := candidateAt("tie-old", 43.2500, 76.8897, 4.0, base)
	tieNew := candidateAt("tie-new", 43.2500, 76.8897, 4.0, base.Add(time.Hour))
	far := candidateAt("outside", 44.0, 77.5, 5.0, base)

	loc := &fakeLocator{candidates: []Candidate{far, tieNew, tieOld, near, tieHighRating}}
	svc := NewService(loc, 100)

	page, err := svc.FindNearby(context.Background(), Query{Kind: KindProviders, Origin: almaty, RadiusKm: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"near", "tie-high", "tie-old", "tie-new"}
	if page.Total != len(want) {
		t.Fatalf("expected total %d, got %d", len(want), page.Total)
	}
	for i, title := range want {
		if page.Items[i].Title != title {
			t.Fatalf("position %d: expected %s, got %s", i, title, page.Items[i].Title)
		}
	}
	for _, item := range page.Items {
		if item.DistanceKm <= 0 || item.DistanceKm > 5 {
			t.Fatalf("unexpected distance %v for %s", item.DistanceKm, item.Title)
		}
	}
}

func TestFindNearbyPagination(t *testing.T) {
	var candidates []Candidate
	for i := 0; i < 5; i++ {
		candidates = append(candidates, candidateAt("c", almaty.Lat+float64(i)*0.001, almaty.Lng, 0, time.Time{}))
	}
	svc := NewService(&fakeLocator{candidates: candidates}, 0)

	page, err := svc.FindNearby(context.Background(), Query{Kind: KindRequests, Origin: almaty, RadiusKm: 10, Page: 3, Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 5 || len(page.Items) != 1 || page.Items[0].ID != candidates[4].ID {
		t.Fatalf("unexpected page: total=%d items=%d", page.Total, len(page.Items))
	}

	page, _ = svc.FindNearby(context.Background(), Query{Kind: KindRequests, Origin: almaty, RadiusKm: 10, Page: 9, Limit: 2})
	if page.Total != 5 || len(page.Items) != 0 {
		t.Fatalf("expected empty window past the end, got %d items", len(page.Items))
	}
}

func TestFindNearbyDoesNotMutateCandidates(t *testing.T) {
	c := candidateAt("c", 43.24, 76.89, 1, time.Time{})
	loc := &fakeLocator{candidates: []Candidate{c}}
	svc := NewService(loc, 0)

	if _, err := svc.FindNearby(context.Background(), Query{Kind: KindProviders, Origin: almaty, RadiusKm: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.candidates[0] != c {
		t.Fatal("candidate was modified by the search")
	}
}

func TestDistanceKm(t *testing.T) {
	// Almaty to Astana is roughly 970 km
	astana := Point{Lat: 51.1694, Lng: 71.4491}
	d := DistanceKm(almaty, astana)
	if d < 950 || d > 990 {
		t.Fatalf("unexpected distance %v", d)
	}
	if DistanceKm(almaty, almaty) != 0 {
		t.Fatal("expected zero distance to self")
	}
}

func TestBoundingBoxContainsCircle(t *testing.T) {
	b := boundingBox(almaty, 10)
	if b.wrapsLng {
		t.Fatal("did not expect wrap near Almaty")
	}
	east := Point{Lat: almaty.Lat, Lng: almaty.Lng + 0.12}
	if DistanceKm(almaty, east) < 10 && east.Lng > b.maxLng {
		t.Fatal("point within radius falls outside the box")
	}

	if !boundingBox(Point{Lat: 0, Lng: 179.99}, 10).wrapsLng {
		t.Fatal("expected wrap at the antimeridian")
	}
	if !boundingBox(Point{Lat: 89.99, Lng: 0}, 10).wrapsLng {
		t.Fatal("expected wrap near the pole")
	}
}

// destination returns the point distanceKm from origin along bearingDeg
func destination(origin Point, distanceKm, bearingDeg float64) Point {
	delta := distanceKm / earthRadiusKm
	theta := bearingDeg * math.Pi / 180
	lat1 := origin.Lat * math.Pi / 180
	lng1 := origin.Lng * math.Pi / 180

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta))
	lng2 := lng1 + math.Atan2(math.Sin(theta)*math.Sin(delta)*math.Cos(lat1), math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2))
	return Point{Lat: lat2 * 180 / math.Pi, Lng: lng2 * 180 / math.Pi}
}

func TestBoundingBoxContainsCircleAtHighLatitudes(t *testing.T) {
	const radiusKm = 300
	for _, lat := range []float64{0, 45, 70, 80, -75} {
		origin := Point{Lat: lat, Lng: 10}
		b := boundingBox(origin, radiusKm)
		if b.wrapsLng {
			t.Fatalf("lat %v: did not expect wrap", lat)
		}
		for bearing := 0.0; bearing < 360; bearing++ {
			p := destination(origin, radiusKm*0.999, bearing)
			if p.Lat < b.minLat || p.Lat > b.maxLat || p.Lng < b.minLng || p.Lng > b.maxLng {
				t.Fatalf("lat %v bearing %v: %+v lies outside box %+v", lat, bearing, p, b)
			}
		}
	}
}
