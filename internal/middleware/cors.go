package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// corsMaxAge is how long browsers may cache a preflight, in seconds
const corsMaxAge = 600

// CORSHandler lets the customer and stylist web apps call the API. Browsers
// may read X-Request-ID from failed calls and Retry-After from rate-limited
// chat sends.
func CORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader, "Retry-After"},
		MaxAge:         corsMaxAge,
	}
	// credentials cannot be combined with a wildcard origin
	opts.AllowCredentials = !(len(allowedOrigins) == 1 && allowedOrigins[0] == "*")
	return cors.Handler(opts)
}
