package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"smartcareer-backend/internal/llm"
)

const okBody = `{"candidates":[{"content":{"parts":[{"text":"{\"ok\":true}"}]}}]}`

type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return nil
}

func (s *sleepRecorder) total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum time.Duration
	for _, d := range s.waits {
		sum += d
	}
	return sum
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestClient(t *testing.T, baseURL string, httpClient *http.Client) (*Client, *sleepRecorder) {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:     "test-key",
		Model:      "gemini-1.5-flash",
		BaseURL:    baseURL,
		MaxRetries: 3,
		HTTPClient: httpClient,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	rec := &sleepRecorder{}
	client.sleep = rec.sleep
	return client, rec
}

func TestInvokeSendsGenerateContentRequest(t *testing.T) {
	var gotPath, gotKey string
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okBody))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, nil)
	text, err := client.Invoke(context.Background(), "hello model")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if text != `{"ok":true}` {
		t.Fatalf("unexpected text %q", text)
	}
	if gotPath != "/v1/models/gemini-1.5-flash:generateContent" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key query param, got %q", gotKey)
	}

	contents := payload["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	if parts[0].(map[string]any)["text"] != "hello model" {
		t.Fatalf("unexpected prompt in request: %v", payload)
	}
	cfg := payload["generationConfig"].(map[string]any)
	if cfg["temperature"] != 0.4 || cfg["topK"] != float64(32) || cfg["topP"] != 0.9 || cfg["maxOutputTokens"] != float64(1024) {
		t.Fatalf("unexpected generation config %v", cfg)
	}
}

func TestInvokeRetriesOverloadedThenSucceeds(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(okBody))
	}))
	defer server.Close()

	client, rec := newTestClient(t, server.URL, nil)
	if _, err := client.Invoke(context.Background(), "p"); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 4 attempts, got %d", calls)
	}
	total := rec.total()
	if total < 7*time.Second || total >= 10*time.Second {
		t.Fatalf("expected total backoff in [7s,10s), got %v", total)
	}
	for i, wait := range rec.waits {
		base := time.Duration(1<<i) * time.Second
		if wait < base || wait >= base+time.Second {
			t.Fatalf("wait %d = %v, expected in [%v,%v)", i, wait, base, base+time.Second)
		}
	}
}

func TestInvokeOverloadedExhausted(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, rec := newTestClient(t, server.URL, nil)
	_, err := client.Invoke(context.Background(), "p")
	if !errors.Is(err, llm.ErrOverloaded) {
		t.Fatalf("expected ErrOverloaded, got %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 4 attempts, got %d", calls)
	}
	if len(rec.waits) != 3 {
		t.Fatalf("expected 3 waits, got %d", len(rec.waits))
	}
}

func TestInvokeDoesNotRetryRejection(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer server.Close()

	client, rec := newTestClient(t, server.URL, nil)
	_, err := client.Invoke(context.Background(), "p")
	var httpErr *llm.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Status != http.StatusBadRequest || !strings.Contains(httpErr.Body, "API key not valid") {
		t.Fatalf("unexpected error %+v", httpErr)
	}
	if calls != 1 || len(rec.waits) != 0 {
		t.Fatalf("expected a single attempt without waiting, got calls=%d waits=%d", calls, len(rec.waits))
	}
}

func TestInvokeRetriesNetworkErrors(t *testing.T) {
	var calls int
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection reset by peer")
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(okBody)),
			Header:     make(http.Header),
		}, nil
	})

	client, rec := newTestClient(t, "http://gemini.test", &http.Client{Transport: transport})
	if _, err := client.Invoke(context.Background(), "p"); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(rec.waits) != len(want) {
		t.Fatalf("expected waits %v, got %v", want, rec.waits)
	}
	for i := range want {
		if rec.waits[i] != want[i] {
			t.Fatalf("expected waits %v, got %v", want, rec.waits)
		}
	}
}

func TestInvokeNetworkErrorsExhausted(t *testing.T) {
	var calls int
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("dial tcp: connection refused")
	})

	client, rec := newTestClient(t, "http://gemini.test", &http.Client{Transport: transport})
	_, err := client.Invoke(context.Background(), "p")
	var netErr *llm.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if netErr.Attempts != 4 || calls != 4 {
		t.Fatalf("expected 4 attempts, got attempts=%d calls=%d", netErr.Attempts, calls)
	}
	if strings.Contains(err.Error(), "test-key") {
		t.Fatalf("api key leaked in error: %v", err)
	}
	if rec.total() != 7*time.Second {
		t.Fatalf("expected 1+2+4 seconds of backoff, got %v", rec.total())
	}
}

func TestInvokeMalformedResponse(t *testing.T) {
	bodies := map[string]string{
		"not json":      `<html>oops</html>`,
		"no candidates": `{"candidates":[]}`,
		"no parts":      `{"candidates":[{"content":{"parts":[]}}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			client, _ := newTestClient(t, server.URL, nil)
			if _, err := client.Invoke(context.Background(), "p"); !errors.Is(err, llm.ErrMalformedResponse) {
				t.Fatalf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestInvokeZeroRetriesMakesSingleAttempt(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient(Options{APIKey: "k", Model: "m", BaseURL: server.URL, MaxRetries: 0})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Invoke(context.Background(), "p"); !errors.Is(err, llm.ErrOverloaded) {
		t.Fatalf("expected ErrOverloaded, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls)
	}
}

func TestNewClientValidatesOptions(t *testing.T) {
	cases := []Options{
		{Model: "m", BaseURL: "http://x"},
		{APIKey: "k", BaseURL: "http://x"},
		{APIKey: "k", Model: "m"},
	}
	for _, opts := range cases {
		if _, err := NewClient(opts); err == nil {
			t.Fatalf("expected error for %+v", opts)
		}
	}
}
