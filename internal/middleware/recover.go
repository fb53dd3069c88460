package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/curlmap/curlmap-api/internal/pkg/logger"
	"github.com/curlmap/curlmap-api/internal/pkg/response"
)

// Recover answers a panicking handler with a 500 envelope and logs the
// stack. http.ErrAbortHandler is re-raised so net/http aborts the response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.FromContext(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("method", r.Method).
				Str("route", routePattern(r)).
				Msg("Handler panicked")
			response.InternalError(w)
		}()

		next.ServeHTTP(w, r)
	})
}
