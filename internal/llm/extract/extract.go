// Package extract recovers a JSON object from free-form model output.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"smartcareer-backend/internal/llm"
)

// Strategy names the step that produced the parsed object.
type Strategy string

const (
	StrategyDirect      Strategy = "direct"
	StrategyBracketScan Strategy = "bracket_scan"
	StrategyRepair      Strategy = "repair"
)

// ErrNoValidJSON is returned when no step yields a JSON object.
var ErrNoValidJSON = fmt.Errorf("%w: no valid JSON object found", llm.ErrMalformedOutput)

// Extract parses raw as a JSON object, trying in order: the whole text, the
// span from the first '{' to the last '}', and a repaired version of that span.
// Without a closing brace the span runs to the end of the text.
func Extract(raw string) (map[string]any, Strategy, error) {
	if obj, ok := parseObject(raw); ok {
		return obj, StrategyDirect, nil
	}

	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return nil, "", ErrNoValidJSON
	}
	span := raw[start:]
	if end := strings.LastIndexByte(raw, '}'); end > start {
		span = raw[start : end+1]
		if obj, ok := parseObject(span); ok {
			return obj, StrategyBracketScan, nil
		}
	}

	if obj, ok := repair(span); ok {
		return obj, StrategyRepair, nil
	}
	return nil, "", ErrNoValidJSON
}

func repair(span string) (map[string]any, bool) {
	escaped := escapeStrayQuotes(span)
	if obj, ok := parseObject(escaped); ok {
		return obj, true
	}
	for _, candidate := range []string{escaped, span} {
		fixed, err := jsonrepair.JSONRepair(candidate)
		if err != nil {
			continue
		}
		if obj, ok := parseObject(fixed); ok {
			return obj, true
		}
	}
	return nil, false
}

func parseObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// escapeStrayQuotes escapes double quotes inside string values that are not
// followed by a JSON delimiter, e.g. `"he said "hi" twice"`.
func escapeStrayQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !inString {
			if ch == '"' {
				inString = true
			}
			b.WriteByte(ch)
			continue
		}
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			if !closesString(s[i+1:]) {
				b.WriteString(`\"`)
				continue
			}
			inString = false
		}
		b.WriteByte(ch)
	}
	return b.String()
}

func closesString(rest string) bool {
	sawNewline := false
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case ' ', '\t', '\r':
		case '\n':
			sawNewline = true
		case ',', ':', '}', ']':
			return true
		case '"':
			// A quote on a following line starts the next key (missing comma).
			return sawNewline
		default:
			return false
		}
	}
	return true
}
