package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/curlmap/curlmap-api/internal/pkg/response"
)

// Timeout bounds how long a handler may run. An overrun answers 503 with
// the usual error envelope; the handler's context is cancelled.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	body, _ := json.Marshal(response.Response{
		Success: false,
		Error:   &response.ErrorInfo{Code: "TIMEOUT", Message: "Request timed out, please retry"},
	})
	return func(next http.Handler) http.Handler {
		th := http.TimeoutHandler(next, timeout, string(body))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// replaced by the handler's own headers when it finishes in time
			w.Header().Set("Content-Type", "application/json")
			th.ServeHTTP(w, r)
		})
	}
}
