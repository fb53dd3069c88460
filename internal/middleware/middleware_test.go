package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/curlmap/curlmap-api/internal/pkg/logger"
	"github.com/curlmap/curlmap-api/internal/pkg/response"
)

func withBufferLogger(r *http.Request, buf *bytes.Buffer) *http.Request {
	l := zerolog.New(buf)
	return r.WithContext(logger.WithContext(r.Context(), &l))
}

func TestRequestIDReuseAndReplace(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"reuses well formed id", "client-retry-7", true},
		{"replaces empty id", "", false},
		{"replaces oversized id", strings.Repeat("a", maxRequestIDLen+1), false},
		{"replaces id with spaces", "two words", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/chats", nil)
			if tt.incoming != "" {
				req.Header.Set(requestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Header().Get(requestIDHeader) != seen {
				t.Fatalf("header %q does not match context id %q", w.Header().Get(requestIDHeader), seen)
			}
			if tt.keep {
				if seen != tt.incoming {
					t.Fatalf("expected %q to be kept, got %q", tt.incoming, seen)
				}
				return
			}
			if _, err := uuid.Parse(seen); err != nil {
				t.Fatalf("expected a generated uuid, got %q", seen)
			}
		})
	}
}

func TestRecoverWritesEnvelopeAndLogs(t *testing.T) {
	var buf bytes.Buffer
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil booking")
	}))

	req := withBufferLogger(httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil), &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body response.Response
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Error == nil || body.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	if !strings.Contains(buf.String(), "nil booking") || !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected panic logged at error, got %s", buf.String())
	}
}

func TestRecoverReraisesAbortHandler(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestLoggerLevelFollowsStatus(t *testing.T) {
	tests := []struct {
		path   string
		status int
		level  string
	}{
		{"/api/v1/bookings", http.StatusOK, "info"},
		{"/api/v1/bookings", http.StatusConflict, "warn"},
		{"/api/v1/bookings", http.StatusBadGateway, "error"},
		{"/health", http.StatusOK, "debug"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		req := withBufferLogger(httptest.NewRequest(http.MethodGet, tt.path, nil), &buf)
		h.ServeHTTP(httptest.NewRecorder(), req)

		var line map[string]any
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("%s %d: decode log line: %v", tt.path, tt.status, err)
		}
		if line["level"] != tt.level {
			t.Fatalf("%s %d: expected level %s, got %v", tt.path, tt.status, tt.level, line["level"])
		}
		if int(line["status"].(float64)) != tt.status {
			t.Fatalf("%s: expected status %d logged, got %v", tt.path, tt.status, line["status"])
		}
	}
}

func TestTimeoutWritesEnvelope(t *testing.T) {
	h := Timeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nearby", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}
	var body response.Response
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error == nil || body.Error.Code != "TIMEOUT" {
		t.Fatalf("unexpected envelope: %+v", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		credentials string
	}{
		{"listed origin", []string{"https://app.curlmap.test"}, "true"},
		{"wildcard origin", []string{"*"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CORSHandler(tt.origins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("preflight must not reach the handler")
			}))

			req := httptest.NewRequest(http.MethodOptions, "/api/v1/bookings", nil)
			req.Header.Set("Origin", "https://app.curlmap.test")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if w.Header().Get("Access-Control-Allow-Origin") == "" {
				t.Fatal("expected Access-Control-Allow-Origin")
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials"); got != tt.credentials {
				t.Fatalf("expected credentials %q, got %q", tt.credentials, got)
			}
		})
	}
}
