package user

import "github.com/curlmap/curlmap-api/internal/pkg/apperr"

var (
	ErrUserNotFound = apperr.NotFound("user")
	ErrInvalidRole  = apperr.Validation("role must be customer, provider or admin")
)
