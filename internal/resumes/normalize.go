package resumes

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const maxATSScore = 10

// NormalizeFeedback turns a parsed model object into Feedback. Missing fields
// default to zero or empty lists. Scores are rounded and clamped to 0..10.
// Improvements may be {issue, suggestion} objects or bare strings.
func NormalizeFeedback(obj map[string]any) Feedback {
	return Feedback{
		ATSScore:        normalizeScore(obj["ats_score"]),
		KeySkills:       stringList(obj["key_skills"]),
		Strengths:       stringList(obj["strengths"]),
		MissingSections: stringList(obj["missing_sections"]),
		Improvements:    improvementList(obj["improvements"]),
	}
}

func normalizeScore(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		// Accept "8" and "8/10".
		head, _, _ := strings.Cut(strings.TrimSpace(n), "/")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(head), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Max(0, math.Min(maxATSScore, math.Round(f))))
}

func stringList(v any) []string {
	out := []string{}
	switch items := v.(type) {
	case []any:
		for _, item := range items {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(items); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func improvementList(v any) []Improvement {
	out := []Improvement{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		switch it := item.(type) {
		case map[string]any:
			imp := Improvement{
				Issue:      scalarString(it["issue"]),
				Suggestion: scalarString(it["suggestion"]),
			}
			if imp.Issue != "" || imp.Suggestion != "" {
				out = append(out, imp)
			}
		default:
			if s := scalarString(it); s != "" {
				out = append(out, Improvement{Issue: s})
			}
		}
	}
	return out
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64, bool:
		return fmt.Sprint(s)
	default:
		return ""
	}
}
