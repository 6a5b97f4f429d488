package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	llmRequestsTotal atomic.Uint64
	llmRetries       = newCounterVec("reason")
	llmFailures      = newCounterVec("kind")
	extractions      = newCounterVec("strategy")
	generations      = newCounterVec("task", "outcome")

	generationDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncLLMRequest counts one HTTP attempt against the model API.
func IncLLMRequest() {
	llmRequestsTotal.Add(1)
}

// IncLLMRetry counts a retry scheduled for the given reason (overloaded, network).
func IncLLMRetry(reason string) {
	llmRetries.Inc(reason)
}

// IncLLMFailure counts a gateway call that gave up.
func IncLLMFailure(kind string) {
	llmFailures.Inc(kind)
}

// IncExtraction counts which parse strategy recovered a JSON object.
func IncExtraction(strategy string) {
	extractions.Inc(strategy)
}

// IncGeneration counts a finished generation task by outcome.
func IncGeneration(task, outcome string) {
	generations.Inc(task, outcome)
}

// ObserveGenerationDurationMs records a generation duration in milliseconds.
func ObserveGenerationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	generationDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "llm_requests_total", "Total model API attempts", llmRequestsTotal.Load())
	writeCounterVec(&buf, "llm_retries_total", "Model API retries by reason", llmRetries)
	writeCounterVec(&buf, "llm_failures_total", "Model API calls that gave up, by kind", llmFailures)
	writeCounterVec(&buf, "llm_extractions_total", "Recovered JSON objects by parse strategy", extractions)
	writeCounterVec(&buf, "generations_total", "Generation tasks by outcome", generations)
	writeHistogram(&buf, "generation_duration_ms", "Generation duration in milliseconds", generationDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

type counterVec struct {
	mu     sync.Mutex
	labels []string
	values map[string]uint64
}

func newCounterVec(labels ...string) *counterVec {
	return &counterVec{labels: labels, values: make(map[string]uint64)}
}

func (v *counterVec) Inc(labelValues ...string) {
	key := ""
	for i := range v.labels {
		val := ""
		if i < len(labelValues) {
			val = labelValues[i]
		}
		if i > 0 {
			key += ","
		}
		key += fmt.Sprintf("%s=%q", v.labels[i], val)
	}
	v.mu.Lock()
	v.values[key]++
	v.mu.Unlock()
}

func (v *counterVec) snapshot() ([]string, map[string]uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	keys := make([]string, 0, len(v.values))
	out := make(map[string]uint64, len(v.values))
	for k, n := range v.values {
		keys = append(keys, k)
		out[k] = n
	}
	sort.Strings(keys)
	return keys, out
}

func writeCounterVec(buf *bytes.Buffer, name, help string, v *counterVec) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys, values := v.snapshot()
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s} %d\n", name, k, values[k])
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
