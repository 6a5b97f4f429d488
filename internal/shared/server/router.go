package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "smartcareer-backend/internal/auth"
	"smartcareer-backend/internal/coverletters"
	"smartcareer-backend/internal/interviewprep"
	"smartcareer-backend/internal/resumes"
	"smartcareer-backend/internal/services/health"
	"smartcareer-backend/internal/shared/config"
	"smartcareer-backend/internal/shared/metrics"
	"smartcareer-backend/internal/shared/server/middleware"
	"smartcareer-backend/internal/shared/server/respond"
	"smartcareer-backend/internal/users"
)

const generateGroup = "GENERATE"

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config             config.Config
	Health             *health.Service
	Verifier           middleware.TokenVerifier
	UserHandler        *users.Handler
	GoogleAuth         *googleauth.GoogleService
	ResumeHandler      *resumes.Handler
	CoverLetterHandler *coverletters.Handler
	InterviewHandler   *interviewprep.Handler
	// Limiter is shared across requests; nil builds a fresh one.
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		status := deps.Health.Check(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1", middleware.Auth(deps.Verifier))

	limit := generationLimit(deps)
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(api, limit)
	}
	if deps.CoverLetterHandler != nil {
		deps.CoverLetterHandler.RegisterRoutes(api, limit)
	}
	if deps.InterviewHandler != nil {
		deps.InterviewHandler.RegisterRoutes(api, limit)
	}

	return r
}

// generationLimit caps model-backed requests per user per minute.
func generationLimit(deps RouterDeps) gin.HandlerFunc {
	perMinute := deps.Config.RateLimitPerMinute
	if perMinute <= 0 {
		return nil
	}
	return middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			generateGroup: {Rate: float64(perMinute) / 60.0, Burst: perMinute},
		},
		DefaultGroup: generateGroup,
		Limiter:      deps.Limiter,
	})
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
