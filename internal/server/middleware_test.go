package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/mowind/walletrpc-go/internal/errors"
)

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	secret := "test-secret"
	whitelist := []string{"/health", "/ready", "/metrics"}

	tests := []struct {
		name           string
		enabled        bool
		path           string
		authHeader     string
		apiKeyHeader   string
		expectedStatus int
	}{
		{
			name:           "disabled auth - passes without credentials",
			enabled:        false,
			path:           "/api/connection",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "whitelisted path - passes without credentials",
			enabled:        true,
			path:           "/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "whitelisted metrics path - passes without credentials",
			enabled:        true,
			path:           "/metrics",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "valid Bearer token - passes",
			enabled:        true,
			path:           "/api/connection",
			authHeader:     "Bearer " + secret,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid Bearer token - rejected",
			enabled:        true,
			path:           "/api/connection",
			authHeader:     "Bearer wrong",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed Authorization header - rejected",
			enabled:        true,
			path:           "/rpc",
			authHeader:     secret,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "valid X-API-Key - passes",
			enabled:        true,
			path:           "/rpc",
			apiKeyHeader:   secret,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid X-API-Key - rejected",
			enabled:        true,
			path:           "/rpc",
			apiKeyHeader:   "wrong",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "no credentials - rejected",
			enabled:        true,
			path:           "/api/methods",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid Bearer is not rescued by valid API key",
			enabled:        true,
			path:           "/api/methods",
			authHeader:     "Bearer wrong",
			apiKeyHeader:   secret,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(AuthMiddleware(tt.enabled, secret, whitelist))
			router.Any("/*path", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "ok"})
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.apiKeyHeader != "" {
				req.Header.Set("X-API-Key", tt.apiKeyHeader)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestAuthMiddleware_RootWhitelist(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(AuthMiddleware(true, "secret", []string{"/"}))
	router.Any("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		path           string
		expectedStatus int
	}{
		{path: "/", expectedStatus: http.StatusOK},
		{path: "/api/connection", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != tt.expectedStatus {
			t.Errorf("%s: expected status %d, got %d", tt.path, tt.expectedStatus, w.Code)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		seen = apperrors.RequestIDFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		header := w.Header().Get(RequestIDHeader)
		if header == "" {
			t.Fatal("expected generated request id header")
		}
		if seen != header {
			t.Errorf("context request id %q does not match header %q", seen, header)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := w.Header().Get(RequestIDHeader); got != "req-123" {
			t.Errorf("expected request id req-123, got %q", got)
		}
		if seen != "req-123" {
			t.Errorf("expected context request id req-123, got %q", seen)
		}
	})
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CORSMiddleware())
	router.POST("/rpc", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodOptions, "/rpc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin *, got %s", got)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rpc", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}
