// Package generate runs a prompt through the model gateway and recovers the
// JSON object from the reply.
package generate

import (
	"context"
	"time"
	"unicode/utf8"

	"smartcareer-backend/internal/llm"
	"smartcareer-backend/internal/llm/extract"
	"smartcareer-backend/internal/shared/metrics"
	"smartcareer-backend/internal/shared/telemetry"
)

// maxLoggedRawBytes caps how much of an unusable reply is logged.
const maxLoggedRawBytes = 2048

// Task names used in logs and metrics.
const (
	TaskAnalysis      = "analysis"
	TaskCoverLetter   = "cover_letter"
	TaskInterviewPrep = "interview_prep"
)

// JSON invokes the gateway once and extracts a JSON object from the text.
func JSON(ctx context.Context, gw llm.Gateway, task, prompt string) (map[string]any, extract.Strategy, error) {
	raw, err := gw.Invoke(ctx, prompt)
	if err != nil {
		return nil, "", err
	}
	obj, strategy, err := extract.Extract(raw)
	if err != nil {
		telemetry.Warn("llm.extract_failed", map[string]any{
			"task":      task,
			"raw_bytes": len(raw),
			"raw":       truncateRaw(raw),
		})
		return nil, "", err
	}
	metrics.IncExtraction(string(strategy))
	if strategy != extract.StrategyDirect {
		telemetry.Info("llm.extract_recovered", map[string]any{
			"task":     task,
			"strategy": string(strategy),
		})
	}
	return obj, strategy, nil
}

// Observe records the outcome and duration of a generation task.
func Observe(task string, start time.Time, err error) {
	elapsed := time.Since(start)
	metrics.ObserveGenerationDurationMs(float64(elapsed.Milliseconds()))
	if err == nil {
		metrics.IncGeneration(task, "success")
		return
	}
	kind := llm.Kind(err)
	metrics.IncGeneration(task, kind)
	telemetry.Warn("generation.failed", map[string]any{
		"task":        task,
		"kind":        kind,
		"duration_ms": elapsed.Milliseconds(),
		"error":       err.Error(),
	})
}

// truncateRaw cuts raw to maxLoggedRawBytes on a rune boundary.
func truncateRaw(raw string) string {
	if len(raw) <= maxLoggedRawBytes {
		return raw
	}
	cut := maxLoggedRawBytes
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}
	return raw[:cut] + "...(truncated)"
}
