package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"smartcareer-backend/internal/shared/auth"
)

func newTestIssuer(t *testing.T) *auth.Issuer {
	t.Helper()
	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return issuer
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(newTestIssuer(t)))
	router.OPTIONS("/api/v1/resume", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/resume", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := newTestIssuer(t)
	token, err := issuer.Sign("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	router := gin.New()
	router.Use(Auth(issuer))
	router.GET("/api/v1/resume", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": UserIDFromContext(c), "email": UserEmailFromContext(c)})
	})
	router.POST("/api/v1/auth/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{name: "valid token", method: http.MethodGet, path: "/api/v1/resume", header: "Bearer " + token, want: http.StatusOK},
		{name: "missing header", method: http.MethodGet, path: "/api/v1/resume", want: http.StatusUnauthorized},
		{name: "wrong scheme", method: http.MethodGet, path: "/api/v1/resume", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "bad token", method: http.MethodGet, path: "/api/v1/resume", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "auth route is public", method: http.MethodPost, path: "/api/v1/auth/login", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.Code)
			}
		})
	}
}
