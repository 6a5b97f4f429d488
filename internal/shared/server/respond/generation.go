package respond

import (
	"github.com/gin-gonic/gin"

	"smartcareer-backend/internal/llm"
)

// GenerationError writes the client-facing response for a failed model call.
// Upstream status codes and bodies are logged, never returned.
func GenerationError(c *gin.Context, err error) {
	status, code, message := llm.Response(err)
	c.Set(causeKey, err.Error())
	Error(c, status, code, message, nil)
}
