package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// redisMaxLat is the latitude limit of Redis GEO (EPSG:3857)
const redisMaxLat = 85.05112878

func redisKey(kind Kind) string {
	return "geo:" + string(kind)
}

// indexable reports whether Redis GEO accepts p
func indexable(p Point) bool {
	return p.Lat >= -redisMaxLat && p.Lat <= redisMaxLat
}

// coveredByIndex reports whether every point within radiusKm of origin is
// representable in the GEO set. Searches reaching the polar caps go to
// PostgreSQL instead.
func coveredByIndex(origin Point, radiusKm float64) bool {
	b := boundingBox(origin, radiusKm)
	return b.minLat >= -redisMaxLat && b.maxLat <= redisMaxLat
}

// geoLocations converts candidates to GEO members, dropping the ones Redis
// cannot store. It returns the number of dropped candidates.
func geoLocations(candidates []Candidate) ([]*redis.GeoLocation, int) {
	locations := make([]*redis.GeoLocation, 0, len(candidates))
	skipped := 0
	for _, c := range candidates {
		if !indexable(c.Location()) {
			skipped++
			continue
		}
		locations = append(locations, &redis.GeoLocation{
			Name:      c.ID.String(),
			Longitude: c.Lng,
			Latitude:  c.Lat,
		})
	}
	return locations, skipped
}

// RedisLocator answers radius queries from a Redis GEO set and hydrates the
// matching ids from PostgreSQL
type RedisLocator struct {
	rdb  *redis.Client
	repo Repository
}

// NewRedisLocator creates a new locator
func NewRedisLocator(rdb *redis.Client, repo Repository) *RedisLocator {
	return &RedisLocator{rdb: rdb, repo: repo}
}

// Put indexes id at p. Points beyond the GEO latitude limit are left to the
// PostgreSQL fallback, and any previous member for id is removed.
func (l *RedisLocator) Put(ctx context.Context, kind Kind, id uuid.UUID, p Point) error {
	if !indexable(p) {
		log.Warn().Str("id", id.String()).Float64("lat", p.Lat).Msg("Latitude outside geo index range")
		return l.Remove(ctx, kind, id)
	}
	return l.rdb.GeoAdd(ctx, redisKey(kind), &redis.GeoLocation{
		Name:      id.String(),
		Longitude: p.Lng,
		Latitude:  p.Lat,
	}).Err()
}

func (l *RedisLocator) Remove(ctx context.Context, kind Kind, id uuid.UUID) error {
	return l.rdb.ZRem(ctx, redisKey(kind), id.String()).Err()
}

func (l *RedisLocator) Within(ctx context.Context, kind Kind, origin Point, radiusKm float64, filters Filters) ([]Candidate, error) {
	if kind != KindProviders && kind != KindRequests {
		return nil, ErrUnknownKind
	}
	if !coveredByIndex(origin, radiusKm) {
		return l.repo.Within(ctx, kind, origin, radiusKm, filters)
	}

	res, err := l.rdb.GeoSearch(ctx, redisKey(kind), &redis.GeoSearchQuery{
		Longitude:  origin.Lng,
		Latitude:   origin.Lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("geosearch %s: %w", kind, err)
	}

	ids := make([]uuid.UUID, 0, len(res))
	for _, member := range res {
		id, err := uuid.Parse(member)
		if err != nil {
			log.Warn().Str("member", member).Str("key", redisKey(kind)).Msg("Skipping invalid geo member")
			continue
		}
		ids = append(ids, id)
	}

	return l.repo.ByIDs(ctx, kind, ids, filters)
}

// Rebuild replaces both GEO sets with the current database state. Each set
// is built under a temporary key and renamed over the live one, so a failed
// rebuild leaves the previous index in place.
func (l *RedisLocator) Rebuild(ctx context.Context) error {
	for _, kind := range []Kind{KindProviders, KindRequests} {
		candidates, err := l.repo.All(ctx, kind)
		if err != nil {
			return err
		}

		key := redisKey(kind)
		locations, skipped := geoLocations(candidates)
		if skipped > 0 {
			log.Warn().Str("key", key).Int("skipped", skipped).Msg("Skipping members outside geo index range")
		}
		if len(locations) == 0 {
			if err := l.rdb.Del(ctx, key).Err(); err != nil {
				return fmt.Errorf("rebuild %s: %w", key, err)
			}
			log.Info().Str("key", key).Int("members", 0).Msg("Geo index rebuilt")
			continue
		}

		tmp := key + ":rebuild"
		if err := l.rdb.Del(ctx, tmp).Err(); err != nil {
			return fmt.Errorf("rebuild %s: %w", key, err)
		}
		if err := l.rdb.GeoAdd(ctx, tmp, locations...).Err(); err != nil {
			l.rdb.Del(ctx, tmp)
			return fmt.Errorf("rebuild %s: %w", key, err)
		}
		if err := l.rdb.Rename(ctx, tmp, key).Err(); err != nil {
			return fmt.Errorf("rebuild %s: %w", key, err)
		}

		log.Info().Str("key", key).Int("members", len(locations)).Msg("Geo index rebuilt")
	}
	return nil
}
