package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smartcareer-backend/internal/llm"
	"smartcareer-backend/internal/shared/metrics"
	"smartcareer-backend/internal/shared/telemetry"
)

const (
	defaultMaxRetries      = 3
	defaultMaxOutputTokens = 1024
	defaultTimeout         = 60 * time.Second
	maxErrorBodyBytes      = 2048
)

// Options configures a Client.
type Options struct {
	APIKey          string
	Model           string
	BaseURL         string
	Timeout         time.Duration
	MaxRetries      int
	MaxOutputTokens int
	HTTPClient      *http.Client
}

// Client calls the Gemini generateContent endpoint with bounded retries.
// It keeps no per-call state and is safe for concurrent use.
type Client struct {
	endpoint   string
	apiKey     string
	maxRetries int
	genConfig  generationConfig
	httpClient *http.Client

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() float64
}

// NewClient constructs a new Gemini client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("GEMINI_MODEL is required")
	}
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("GEMINI_BASE_URL is required")
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = defaultMaxOutputTokens
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		endpoint:   fmt.Sprintf("%s/v1/models/%s:generateContent", strings.TrimRight(opts.BaseURL, "/"), url.PathEscape(opts.Model)),
		apiKey:     opts.APIKey,
		maxRetries: opts.MaxRetries,
		genConfig: generationConfig{
			Temperature:     0.4,
			TopK:            32,
			TopP:            0.9,
			MaxOutputTokens: opts.MaxOutputTokens,
		},
		httpClient: httpClient,
		sleep:      sleepContext,
		jitter:     rand.Float64,
	}, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Invoke sends prompt to the model and returns the generated text.
//
// A 503 is retried after 2^attempt seconds plus up to one second of jitter and
// becomes llm.ErrOverloaded once attempts run out. A transport failure is
// retried after 2^attempt seconds and becomes *llm.NetworkError. Any other
// non-200 status is returned at once as *llm.HTTPError.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: c.genConfig,
	})
	if err != nil {
		return "", err
	}

	attempts := c.maxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		last := attempt == attempts-1
		metrics.IncLLMRequest()

		status, body, err := c.post(ctx, payload)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", fmt.Errorf("model request cancelled: %w", ctxErr)
			}
			lastErr = err
			telemetry.Warn("llm.attempt_failed", map[string]any{
				"attempt": attempt + 1,
				"reason":  "network",
				"error":   err.Error(),
			})
			if last {
				break
			}
			if err := c.backoff(ctx, "network", attempt, 1<<attempt, 0); err != nil {
				return "", err
			}
			continue
		}

		switch {
		case status == http.StatusOK:
			return parseText(body)
		case status == http.StatusServiceUnavailable:
			telemetry.Warn("llm.attempt_failed", map[string]any{
				"attempt": attempt + 1,
				"reason":  "overloaded",
				"status":  status,
			})
			if last {
				metrics.IncLLMFailure("overloaded")
				return "", llm.ErrOverloaded
			}
			if err := c.backoff(ctx, "overloaded", attempt, 1<<attempt, c.jitter()); err != nil {
				return "", err
			}
		default:
			metrics.IncLLMFailure("rejected")
			return "", &llm.HTTPError{Status: status, Body: truncateBody(body)}
		}
	}

	metrics.IncLLMFailure("network")
	return "", &llm.NetworkError{Attempts: attempts, Err: lastErr}
}

func (c *Client) backoff(ctx context.Context, reason string, attempt, baseSeconds int, jitter float64) error {
	wait := time.Duration(baseSeconds)*time.Second + time.Duration(jitter*float64(time.Second))
	metrics.IncLLMRetry(reason)
	telemetry.Info("llm.retry", map[string]any{
		"attempt": attempt + 1,
		"reason":  reason,
		"wait_ms": wait.Milliseconds(),
	})
	if err := c.sleep(ctx, wait); err != nil {
		return fmt.Errorf("model request cancelled: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, payload []byte) (int, []byte, error) {
	endpoint := c.endpoint + "?" + url.Values{"key": {c.apiKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, redactKey(err, c.apiKey)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func parseText(body []byte) (string, error) {
	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrMalformedResponse, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidate text", llm.ErrMalformedResponse)
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func truncateBody(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}
	return strings.TrimSpace(string(body))
}

// redactKey strips the API key from transport errors, which embed the request URL.
func redactKey(err error, key string) error {
	msg := err.Error()
	if key == "" || !strings.Contains(msg, key) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(msg, key, "REDACTED"))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ llm.Gateway = (*Client)(nil)
