package geo

import "math"

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between a and b
func DistanceKm(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1)*math.Cos(lat2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// box is a lat/lng rectangle enclosing a circle. wrapsLng is set when the
// circle crosses the antimeridian or a pole, in which case the longitude
// bounds must not be used.
type box struct {
	minLat, maxLat float64
	minLng, maxLng float64
	wrapsLng       bool
}

func boundingBox(origin Point, radiusKm float64) box {
	delta := radiusKm / earthRadiusKm
	dLat := delta * 180 / math.Pi
	b := box{
		minLat: math.Max(origin.Lat-dLat, -90),
		maxLat: math.Min(origin.Lat+dLat, 90),
	}

	cosLat := math.Cos(origin.Lat * math.Pi / 180)
	if cosLat < 1e-6 || b.minLat == -90 || b.maxLat == 90 {
		b.wrapsLng = true
		return b
	}
	// the widest point of the circle sits poleward of the origin, so the
	// half-width is asin(sin δ / cos φ) rather than δ / cos φ
	ratio := math.Sin(delta) / cosLat
	if ratio >= 1 {
		b.wrapsLng = true
		return b
	}
	dLng := math.Asin(ratio) * 180 / math.Pi
	b.minLng = origin.Lng - dLng
	b.maxLng = origin.Lng + dLng
	if b.minLng < -180 || b.maxLng > 180 {
		b.wrapsLng = true
	}
	return b
}
