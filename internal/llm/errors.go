package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrOverloaded is returned when the model API kept answering 503 until retries ran out.
	ErrOverloaded = errors.New("model api is overloaded, please try again later")
	// ErrMalformedResponse means the API answered 200 with a body missing the generated text.
	ErrMalformedResponse = errors.New("malformed model api response")
	// ErrMalformedOutput means the generated text did not yield the expected JSON payload.
	ErrMalformedOutput = errors.New("malformed model output")
)

// HTTPError is a non-retryable rejection from the model API.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("model api returned HTTP %d: %s", e.Status, e.Body)
}

// NetworkError wraps the last transport failure after every attempt failed.
type NetworkError struct {
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("model api request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a temporary upstream condition.
func IsTransient(err error) bool {
	var netErr *NetworkError
	return errors.Is(err, ErrOverloaded) || errors.As(err, &netErr)
}

// IsRejected reports whether the model API refused the request outright.
func IsRejected(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// Kind classifies a generation failure for logs and metrics.
func Kind(err error) string {
	var httpErr *HTTPError
	var netErr *NetworkError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrOverloaded):
		return "overloaded"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &httpErr):
		return "rejected"
	case errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrMalformedOutput):
		return "malformed"
	default:
		return "unknown"
	}
}

// Response maps a generation failure to an HTTP status, error code and a
// message safe to show to end users. Upstream details stay in the logs.
func Response(err error) (status int, code, message string) {
	switch Kind(err) {
	case "overloaded", "network":
		return 503, "model_unavailable", "The AI service is busy right now, please try again in a moment."
	default:
		return 502, "generation_failed", "We could not generate a response, please try again."
	}
}
