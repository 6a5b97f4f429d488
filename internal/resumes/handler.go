package resumes

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartcareer-backend/internal/llm"
	"smartcareer-backend/internal/shared/server/middleware"
	"smartcareer-backend/internal/shared/server/respond"
)

const uploadField = "resume"

// Handler wires HTTP handlers to the resume service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes. limit guards the model-backed route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}
	rg.POST("/resume/analyze", limit, h.analyze)
	rg.GET("/resume", h.getResume)
	rg.GET("/resume/file", h.downloadResume)
	rg.GET("/analysis", h.getAnalysis)
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+(1<<20))
	fileHeader, err := c.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "resume must be 10MB or smaller", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "a PDF file is required in the \"resume\" field", []map[string]string{
			{"field": uploadField, "issue": "required"},
		})
		return
	}
	if fileHeader.Size > MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "resume must be 10MB or smaller", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read uploaded file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read uploaded file", nil)
		return
	}

	resume, analysis, err := h.Svc.Analyze(c.Request.Context(), userID, fileHeader.Filename, data)
	if err != nil {
		h.writeAnalyzeError(c, err)
		return
	}
	c.Set(middleware.LogResumeIDKey, resume.ID)

	respond.OK(c, gin.H{
		"success":  true,
		"analysis": analysis.Feedback,
		"resume": gin.H{
			"id":        resume.ID,
			"filename":  resume.Filename,
			"updatedAt": resume.UpdatedAt,
		},
	})
}

func (h *Handler) writeAnalyzeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnsupportedFile):
		respond.Error(c, http.StatusBadRequest, "unsupported_file", "only PDF files are supported", []map[string]string{
			{"field": uploadField, "issue": "must_be_pdf"},
		})
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid resume upload", nil)
	case errors.Is(err, ErrUnreadable):
		respond.Error(c, http.StatusUnprocessableEntity, "unreadable_resume", "could not extract text from the PDF", nil)
	case errors.Is(err, ErrPersistence):
		respond.Error(c, http.StatusInternalServerError, "internal_error", "could not save your resume, please try again", nil)
	case llm.Kind(err) != "unknown":
		respond.GenerationError(c, err)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "resume analysis failed", nil)
	}
}

func (h *Handler) getResume(c *gin.Context) {
	resume, err := h.Svc.Current(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.OK(c, gin.H{"hasResume": false})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch resume", nil)
		return
	}
	respond.OK(c, gin.H{
		"hasResume": true,
		"id":        resume.ID,
		"filename":  resume.Filename,
		"updatedAt": resume.UpdatedAt,
	})
}

func (h *Handler) downloadResume(c *gin.Context) {
	resume, rc, err := h.Svc.OpenFile(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "no resume uploaded yet", nil)
		case errors.Is(err, ErrFileUnavailable):
			respond.Error(c, http.StatusNotFound, "not_found", "resume file is not available", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open resume", nil)
		}
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resume.Filename))
	c.DataFromReader(http.StatusOK, -1, "application/pdf", rc, nil)
}

func (h *Handler) getAnalysis(c *gin.Context) {
	resume, analysis, err := h.Svc.CurrentAnalysis(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "no resume uploaded yet", nil)
		case errors.Is(err, ErrAnalysisNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume has not been analyzed", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}
	respond.OK(c, gin.H{
		"feedback":       analysis.Feedback,
		"resumeFilename": resume.Filename,
		"analyzedOn":     analysis.UpdatedAt,
	})
}
