package geo

import "github.com/curlmap/curlmap-api/internal/pkg/apperr"

var (
	ErrInvalidCoordinates = apperr.Validation("coordinates must be finite with lat in [-90,90] and lng in [-180,180]")
	ErrInvalidRadius      = apperr.Validation("radius_km must be greater than 0")
	ErrRadiusTooLarge     = apperr.Validation("radius_km exceeds the maximum search radius")
	ErrUnknownKind        = apperr.Validation("unknown search kind")
)
