package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/config"
	"github.com/curlmap/curlmap-api/internal/domain/booking"
	"github.com/curlmap/curlmap-api/internal/domain/chat"
	"github.com/curlmap/curlmap-api/internal/domain/geo"
	"github.com/curlmap/curlmap-api/internal/domain/negotiation"
	"github.com/curlmap/curlmap-api/internal/domain/provider"
	"github.com/curlmap/curlmap-api/internal/domain/review"
	"github.com/curlmap/curlmap-api/internal/domain/user"
	"github.com/curlmap/curlmap-api/internal/middleware"
	"github.com/curlmap/curlmap-api/internal/pkg/jwt"
)

func testRouter(t *testing.T) (http.Handler, *jwt.Service) {
	t.Helper()
	jwtService := jwt.NewService("test-secret", time.Minute)
	h := handlers{
		geo:         geo.NewHandler(nil),
		provider:    provider.NewHandler(nil),
		negotiation: negotiation.NewHandler(nil),
		booking:     booking.NewHandler(nil),
		chat:        chat.NewHandler(nil),
		review:      review.NewHandler(nil),
	}
	cfg := &config.Config{AllowedOrigins: []string{"http://localhost:3000"}}
	return newRouter(cfg, middleware.Auth(jwtService), h, nil), jwtService
}

func TestRouterPublicEndpoints(t *testing.T) {
	r, _ := testRouter(t)

	for _, path := range []string{"/health", "/api/v1/ping"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", path, rr.Code)
		}
	}
}

func TestRouterRequiresToken(t *testing.T) {
	r, _ := testRouter(t)

	routes := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/nearby/providers?lat=43.2&lng=76.9"},
		{http.MethodPost, "/api/v1/requests"},
		{http.MethodPost, "/api/v1/offers/" + uuid.NewString() + "/reject"},
		{http.MethodGet, "/api/v1/bookings/my"},
		{http.MethodGet, "/api/v1/chats"},
		{http.MethodPut, "/api/v1/providers/me"},
		{http.MethodPost, "/api/v1/reviews"},
	}
	for _, rt := range routes {
		req := httptest.NewRequest(rt.method, rt.path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected status 401, got %d", rt.method, rt.path, rr.Code)
		}
	}
}

func TestRouterRoleGuards(t *testing.T) {
	r, jwtService := testRouter(t)

	customerToken, err := jwtService.GenerateAccessToken(uuid.New(), string(user.RoleCustomer))
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	providerToken, err := jwtService.GenerateAccessToken(uuid.New(), string(user.RoleProvider))
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	routes := []struct {
		name, method, path, token string
	}{
		{"provider cannot book", http.MethodPost, "/api/v1/bookings", providerToken},
		{"provider cannot post request", http.MethodPost, "/api/v1/requests", providerToken},
		{"customer cannot offer", http.MethodPost, "/api/v1/requests/" + uuid.NewString() + "/offers", customerToken},
		{"customer cannot browse open requests", http.MethodGet, "/api/v1/nearby/requests?lat=1&lng=1", customerToken},
		{"customer cannot add fees", http.MethodPost, "/api/v1/bookings/" + uuid.NewString() + "/fees", customerToken},
		{"customer cannot edit provider profile", http.MethodPut, "/api/v1/providers/me", customerToken},
		{"provider cannot review", http.MethodPost, "/api/v1/reviews", providerToken},
	}
	for _, rt := range routes {
		t.Run(rt.name, func(t *testing.T) {
			req := httptest.NewRequest(rt.method, rt.path, nil)
			req.Header.Set("Authorization", "Bearer "+rt.token)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if rr.Code != http.StatusForbidden {
				t.Fatalf("expected status 403, got %d", rr.Code)
			}
		})
	}
}
