package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestInfoWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Info("gateway.attempt", map[string]any{"attempt": 2, "err": errors.New("boom")})

	line := strings.TrimSpace(buf.String())
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("decode log line %q: %v", line, err)
	}
	if payload["msg"] != "gateway.attempt" || payload["level"] != "info" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if payload["attempt"] != float64(2) {
		t.Fatalf("unexpected attempt %v", payload["attempt"])
	}
	if payload["err"] != "boom" {
		t.Fatalf("expected error rendered as string, got %v", payload["err"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("missing ts field")
	}
}
