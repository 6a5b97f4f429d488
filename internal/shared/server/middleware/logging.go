package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"smartcareer-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	LogResumeIDKey = "resumeId"
	LogRecordIDKey = "recordId"
	LogStrategyKey = "extractStrategy"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		for key, field := range map[string]string{
			LogResumeIDKey: "resume_id",
			LogRecordIDKey: "record_id",
			LogStrategyKey: "extract_strategy",
		} {
			if v, ok := c.Get(key); ok {
				fields[field] = v
			}
		}
		telemetry.Info("request.complete", fields)
	}
}
