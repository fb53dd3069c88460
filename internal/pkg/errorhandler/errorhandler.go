package errorhandler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/curlmap/curlmap-api/internal/pkg/apperr"
	"github.com/curlmap/curlmap-api/internal/pkg/logger"
	"github.com/curlmap/curlmap-api/internal/pkg/response"
)

// StatusFor maps an error kind to its HTTP status
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindMinimumPrice:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict, apperr.KindTransition:
		return http.StatusConflict
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Handle writes the error envelope for err.
// Classified errors surface their kind, message and details; anything else
// is logged and hidden behind INTERNAL_ERROR.
func Handle(ctx context.Context, w http.ResponseWriter, err error) {
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind == apperr.KindInternal {
		logger.FromContext(ctx).Error().Err(err).Msg("Request failed")
		response.InternalError(w)
		return
	}

	status := StatusFor(appErr.Kind)
	event := logger.FromContext(ctx).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.FromContext(ctx).Error()
	}
	event.
		Str("error_code", string(appErr.Kind)).
		Int("status_code", status).
		Err(err).
		Msg("Request error")

	response.ErrorWithDetails(w, status, string(appErr.Kind), appErr.Message, appErr.Details)
}

// HandleValidation logs field errors and writes a 422 response
func HandleValidation(ctx context.Context, w http.ResponseWriter, fieldErrors map[string]string) {
	errJSON, _ := json.Marshal(fieldErrors)
	logger.FromContext(ctx).Warn().
		RawJSON("validation_errors", errJSON).
		Msg("Validation error")
	response.ValidationError(w, fieldErrors)
}

// LogExternalServiceError logs errors from external service calls
func LogExternalServiceError(ctx context.Context, service string, endpoint string, statusCode int, err error, body string) {
	logger.FromContext(ctx).Error().
		Str("external_service", service).
		Str("endpoint", endpoint).
		Int("status_code", statusCode).
		Err(err).
		Str("response_body", truncateString(body, 1000)).
		Msg("External service error")
}

func truncateString(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "...<truncated>"
	}
	return s
}
