package provider

import "github.com/curlmap/curlmap-api/internal/pkg/apperr"

var (
	ErrProviderNotFound = apperr.NotFound("provider")
	ErrServiceNotFound  = apperr.NotFound("service")
	ErrServiceInactive  = apperr.Validation("service is no longer offered")
	ErrNotProvider      = apperr.Forbidden("only providers can manage a catalog")
)
