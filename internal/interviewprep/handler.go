package interviewprep

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartcareer-backend/internal/resumes"
	"smartcareer-backend/internal/shared/server/middleware"
	"smartcareer-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches interview prep routes. limit guards generation.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}
	rg.POST("/interview-preps", limit, h.create)
	rg.GET("/interview-preps", h.list)
	rg.GET("/interview-preps/:id", h.get)
	rg.DELETE("/interview-preps/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ValidationError(c, err)
		return
	}

	prep, guide, err := h.Svc.Generate(c.Request.Context(), middleware.UserIDFromContext(c), req)
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "job_title and job_description are required", nil)
		return
	case errors.Is(err, resumes.ErrResumeRequired):
		respond.Error(c, http.StatusBadRequest, "resume_required", "Please upload and analyze your resume first.", nil)
		return
	case errors.Is(err, ErrPersistence):
		respond.Error(c, http.StatusInternalServerError, "internal_error", "could not save the interview prep, please try again", nil)
		return
	default:
		respond.GenerationError(c, err)
		return
	}
	c.Set(middleware.LogRecordIDKey, prep.ID)

	respond.Created(c, gin.H{
		"success": true,
		"id":      prep.ID,
		"content": guide,
	})
}

func (h *Handler) list(c *gin.Context) {
	preps, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list interview preps", nil)
		return
	}
	items := make([]Summary, 0, len(preps))
	for _, p := range preps {
		items = append(items, Summary{ID: p.ID, JobTitle: p.JobTitle, CreatedAt: p.CreatedAt})
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) get(c *gin.Context) {
	prep, guide, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "interview prep not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load interview prep", nil)
		return
	}
	respond.OK(c, gin.H{
		"id":              prep.ID,
		"job_title":       prep.JobTitle,
		"job_description": prep.JobDescription,
		"options":         prep.Options,
		"created_at":      prep.CreatedAt,
		"content":         guide,
	})
}

func (h *Handler) delete(c *gin.Context) {
	err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "interview prep not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete interview prep", nil)
		return
	}
	respond.NoContent(c)
}
