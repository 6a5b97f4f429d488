package resumes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"smartcareer-backend/internal/llm"
)

func setupResumeRouter(t *testing.T, reply func(prompt string) (string, error)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _, _ := newTestService(t, reply)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"), nil)
	return router
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("resume", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resume/analyze", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestAnalyzeHandlerFlow(t *testing.T) {
	router := setupResumeRouter(t, func(prompt string) (string, error) {
		return analysisReply, nil
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analysis", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before upload, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, uploadRequest(t, "cv.pdf", []byte("Go developer")))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var analyzed struct {
		Success  bool     `json:"success"`
		Analysis Feedback `json:"analysis"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&analyzed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !analyzed.Success || analyzed.Analysis.ATSScore != 8 {
		t.Fatalf("unexpected response %+v", analyzed)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/resume", nil))
	var status struct {
		HasResume bool   `json:"hasResume"`
		Filename  string `json:"filename"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.HasResume || status.Filename != "cv.pdf" {
		t.Fatalf("unexpected resume status %+v", status)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analysis", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var got struct {
		Feedback       Feedback `json:"feedback"`
		ResumeFilename string   `json:"resumeFilename"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ResumeFilename != "cv.pdf" || len(got.Feedback.KeySkills) != 2 {
		t.Fatalf("unexpected analysis %+v", got)
	}
}

func TestGetResumeWithoutUpload(t *testing.T) {
	router := setupResumeRouter(t, func(prompt string) (string, error) { return analysisReply, nil })
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/resume", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte(`"hasResume":false`)) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestAnalyzeHandlerErrors(t *testing.T) {
	tests := []struct {
		name     string
		reply    error
		filename string
		want     int
		code     string
	}{
		{name: "not pdf", filename: "cv.docx", want: http.StatusBadRequest, code: "unsupported_file"},
		{name: "overloaded", filename: "cv.pdf", reply: llm.ErrOverloaded, want: http.StatusServiceUnavailable, code: "model_unavailable"},
		{name: "rejected", filename: "cv.pdf", reply: &llm.HTTPError{Status: 400, Body: "API key not valid"}, want: http.StatusBadGateway, code: "generation_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupResumeRouter(t, func(prompt string) (string, error) {
				return "", tt.reply
			})
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, uploadRequest(t, tt.filename, []byte("text")))
			if resp.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.Code)
			}
			var body struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, body.Error.Code)
			}
			if bytes.Contains([]byte(body.Error.Message), []byte("API key")) {
				t.Fatalf("upstream detail leaked: %s", body.Error.Message)
			}
		})
	}
}

func TestAnalyzeHandlerMissingFile(t *testing.T) {
	router := setupResumeRouter(t, func(prompt string) (string, error) { return analysisReply, nil })
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resume/analyze", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestDownloadResumeFile(t *testing.T) {
	router := setupResumeRouter(t, func(prompt string) (string, error) { return analysisReply, nil })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/resume/file", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before upload, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, uploadRequest(t, "cv.pdf", []byte("%PDF-1.4 body")))
	if resp.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/resume/file", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.String() != "%PDF-1.4 body" {
		t.Fatalf("unexpected file body %q", resp.Body.String())
	}
	if got := resp.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type %q", got)
	}
}
