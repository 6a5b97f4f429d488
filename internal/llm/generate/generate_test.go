package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"smartcareer-backend/internal/llm"
	"smartcareer-backend/internal/llm/extract"
	"smartcareer-backend/internal/shared/telemetry"
)

func TestJSONParsesFencedReply(t *testing.T) {
	gw := llm.GatewayFunc(func(ctx context.Context, prompt string) (string, error) {
		if prompt != "hello" {
			t.Fatalf("unexpected prompt %q", prompt)
		}
		return "Sure!\n```json\n{\"letter\": \"Dear team\"}\n```", nil
	})

	obj, strategy, err := JSON(context.Background(), gw, TaskCoverLetter, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy != extract.StrategyBracketScan {
		t.Fatalf("expected bracket scan, got %s", strategy)
	}
	if obj["letter"] != "Dear team" {
		t.Fatalf("unexpected object %v", obj)
	}
}

func TestJSONPropagatesGatewayError(t *testing.T) {
	gw := llm.GatewayFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", llm.ErrOverloaded
	})
	if _, _, err := JSON(context.Background(), gw, TaskAnalysis, "p"); !errors.Is(err, llm.ErrOverloaded) {
		t.Fatalf("expected overloaded, got %v", err)
	}
}

func TestJSONNoObject(t *testing.T) {
	gw := llm.GatewayFunc(func(ctx context.Context, prompt string) (string, error) {
		return "I cannot help with that.", nil
	})
	_, _, err := JSON(context.Background(), gw, TaskAnalysis, "p")
	if !errors.Is(err, extract.ErrNoValidJSON) || !errors.Is(err, llm.ErrMalformedOutput) {
		t.Fatalf("expected no valid json, got %v", err)
	}
}

func TestJSONLogsUnusableReply(t *testing.T) {
	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	reply := "Sorry, I cannot score this resume today."
	gw := llm.GatewayFunc(func(ctx context.Context, prompt string) (string, error) {
		return reply, nil
	})
	if _, _, err := JSON(context.Background(), gw, TaskAnalysis, "p"); err == nil {
		t.Fatalf("expected extraction error")
	}

	var payload map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if entry["msg"] == "llm.extract_failed" {
			payload = entry
		}
	}
	if payload == nil {
		t.Fatalf("missing llm.extract_failed line in %q", buf.String())
	}
	if payload["raw"] != reply || payload["task"] != TaskAnalysis {
		t.Fatalf("expected raw reply in log, got %v", payload)
	}
}

func TestTruncateRaw(t *testing.T) {
	if got := truncateRaw("short"); got != "short" {
		t.Fatalf("expected short reply unchanged, got %q", got)
	}

	long := strings.Repeat("é", maxLoggedRawBytes)
	got := truncateRaw(long)
	if !strings.HasSuffix(got, "...(truncated)") {
		t.Fatalf("expected truncation marker, got suffix %q", got[len(got)-20:])
	}
	body := strings.TrimSuffix(got, "...(truncated)")
	if len(body) > maxLoggedRawBytes || !utf8.ValidString(body) {
		t.Fatalf("expected valid utf-8 within %d bytes, got %d bytes", maxLoggedRawBytes, len(body))
	}
}
