package respond

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError writes a 400 for a request that failed binding.
// Validator failures are listed per field; other decode errors get a generic message.
func ValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field: jsonFieldName(fe.Field()),
				Rule:  fe.Tag(),
			})
		}
		Error(c, http.StatusBadRequest, "validation_failed", "request validation failed", fields)
		return
	}
	Error(c, http.StatusBadRequest, "invalid_request", "malformed request body", nil)
}

// jsonFieldName turns a Go field name such as JobTitle into job_title.
func jsonFieldName(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
