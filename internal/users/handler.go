package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartcareer-backend/internal/shared/server/middleware"
	"smartcareer-backend/internal/shared/server/respond"
)

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Sign(userID, email string) (string, error)
}

type Handler struct {
	Svc    *Service
	Issuer TokenIssuer
}

func NewHandler(svc *Service, issuer TokenIssuer) *Handler {
	return &Handler{Svc: svc, Issuer: issuer}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
	rg.GET("/me", h.me)
}

type credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ValidationError(c, err)
		return
	}
	user, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			respond.Error(c, http.StatusConflict, "email_taken", "an account with this email already exists", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create account", nil)
		}
		return
	}
	h.writeSession(c, http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ValidationError(c, err)
		return
	}
	user, err := h.Svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to sign in", nil)
		return
	}
	h.writeSession(c, http.StatusOK, user)
}

func (h *Handler) writeSession(c *gin.Context, status int, user User) {
	token, err := h.Issuer.Sign(user.ID, user.Email)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	respond.JSON(c, status, gin.H{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.Svc.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		}
		return
	}
	respond.OK(c, user)
}
