package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"smartcareer-backend/internal/coverletters"
	"smartcareer-backend/internal/interviewprep"
	"smartcareer-backend/internal/llm"
	"smartcareer-backend/internal/resumes"
	"smartcareer-backend/internal/shared/auth"
	"smartcareer-backend/internal/shared/config"
	"smartcareer-backend/internal/users"
)

func newTestRouter(t *testing.T, perMinute int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	gateway := llm.GatewayFunc(func(ctx context.Context, prompt string) (string, error) {
		return `{"letter": "Dear team"}`, nil
	})
	resumeRepo := resumes.NewMemoryRepo()
	return NewRouter(RouterDeps{
		Config:             config.Config{Env: "dev", CORSAllowOrigin: []string{"http://localhost:5173"}, RateLimitPerMinute: perMinute},
		Verifier:           issuer,
		UserHandler:        users.NewHandler(users.NewService(users.NewMemoryRepo()), issuer),
		ResumeHandler:      resumes.NewHandler(resumes.NewService(resumeRepo, nil, gateway)),
		CoverLetterHandler: coverletters.NewHandler(coverletters.NewService(coverletters.NewMemoryRepo(), resumeRepo, gateway)),
		InterviewHandler:   interviewprep.NewHandler(interviewprep.NewService(interviewprep.NewMemoryRepo(), resumeRepo, gateway)),
	})
}

func registerUser(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": "secret1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var session struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return session.Token
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	r := newTestRouter(t, 10)
	for _, path := range []string{"/health", "/metrics"} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t, 10)
	for _, path := range []string{"/api/v1/me", "/api/v1/resume", "/api/v1/cover-letters", "/api/v1/interview-preps"} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, resp.Code)
		}
	}
}

func TestCoverLetterNeedsResume(t *testing.T) {
	r := newTestRouter(t, 10)
	token := registerUser(t, r, "ivy@example.com")

	body := strings.NewReader(`{"job_title": "Engineer", "job_description": "Build"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cover-letters", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest || !strings.Contains(resp.Body.String(), "resume_required") {
		t.Fatalf("expected resume_required, got %d %s", resp.Code, resp.Body.String())
	}
}

func TestGenerationIsRateLimited(t *testing.T) {
	r := newTestRouter(t, 2)
	token := registerUser(t, r, "jack@example.com")

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cover-letters", strings.NewReader(`{"job_title": "E", "job_description": "B"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third request to be limited, got %v", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cover-letters", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("reads must not be limited, got %d", resp.Code)
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
