package coverletters

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartcareer-backend/internal/resumes"
	"smartcareer-backend/internal/shared/server/middleware"
	"smartcareer-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the cover letter service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches cover letter routes. limit guards generation.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}
	rg.POST("/cover-letters", limit, h.create)
	rg.GET("/cover-letters", h.list)
	rg.GET("/cover-letters/:id", h.get)
	rg.DELETE("/cover-letters/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ValidationError(c, err)
		return
	}

	letter, err := h.Svc.Generate(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "job_title and job_description are required", nil)
		case errors.Is(err, resumes.ErrResumeRequired):
			respond.Error(c, http.StatusBadRequest, "resume_required", "Please upload and analyze your resume first.", nil)
		case errors.Is(err, ErrPersistence):
			respond.Error(c, http.StatusInternalServerError, "internal_error", "could not save the cover letter, please try again", nil)
		default:
			respond.GenerationError(c, err)
		}
		return
	}
	c.Set(middleware.LogRecordIDKey, letter.ID)

	respond.Created(c, gin.H{
		"success": true,
		"id":      letter.ID,
		"letter":  letter.Content,
	})
}

func (h *Handler) list(c *gin.Context) {
	letters, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list cover letters", nil)
		return
	}
	items := make([]Summary, 0, len(letters))
	for _, l := range letters {
		items = append(items, Summary{ID: l.ID, JobTitle: l.JobTitle, CreatedAt: l.CreatedAt})
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) get(c *gin.Context) {
	letter, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeLookupError(c, err)
		return
	}
	respond.OK(c, letter)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeLookupError(c, err)
		return
	}
	respond.NoContent(c)
}

func writeLookupError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "cover letter not found", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load cover letter", nil)
}
