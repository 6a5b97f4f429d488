package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderIncludesLabeledCounters(t *testing.T) {
	IncLLMRequest()
	IncLLMRetry("overloaded")
	IncLLMRetry("overloaded")
	IncExtraction("repair")
	IncGeneration("analysis", "ok")

	out := Render()
	for _, want := range []string{
		`llm_retries_total{reason="overloaded"} 2`,
		`llm_extractions_total{strategy="repair"} 1`,
		`generations_total{task="analysis",outcome="ok"} 1`,
		"# TYPE llm_requests_total counter",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	var buf bytes.Buffer
	writeHistogram(&buf, "h", "test", h.Snapshot())
	out := buf.String()
	for _, want := range []string{`h_bucket{le="10"} 1`, `h_bucket{le="100"} 2`, `h_bucket{le="+Inf"} 3`, "h_sum 555"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
