package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "smartcareer-backend/internal/auth"
	"smartcareer-backend/internal/coverletters"
	"smartcareer-backend/internal/interviewprep"
	"smartcareer-backend/internal/llm"
	"smartcareer-backend/internal/llm/gemini"
	"smartcareer-backend/internal/resumes"
	"smartcareer-backend/internal/services/health"
	"smartcareer-backend/internal/shared/auth"
	"smartcareer-backend/internal/shared/config"
	"smartcareer-backend/internal/shared/server"
	"smartcareer-backend/internal/shared/storage/db"
	"smartcareer-backend/internal/shared/storage/object"
	localstore "smartcareer-backend/internal/shared/storage/object/local"
	s3store "smartcareer-backend/internal/shared/storage/object/s3"
	"smartcareer-backend/internal/shared/telemetry"
	"smartcareer-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Store   object.ObjectStore
	Gateway llm.Gateway
	Issuer  *auth.Issuer

	UsersRepo         users.Repo
	ResumesRepo       resumes.Repo
	CoverLettersRepo  coverletters.Repo
	InterviewPrepRepo interviewprep.Repo

	UsersService         *users.Service
	ResumesService       *resumes.Service
	CoverLettersService  *coverletters.Service
	InterviewPrepService *interviewprep.Service
}

// Build prepares dependencies and the router. Without DATABASE_URL in dev the
// repositories are in-memory.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	gateway, err := buildGateway(cfg)
	if err != nil {
		return nil, err
	}
	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Store:   store,
		Gateway: gateway,
		Issuer:  issuer,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             cfg,
		Health:             health.NewService(pingerFor(sqlDB)),
		Verifier:           issuer,
		UserHandler:        users.NewHandler(app.UsersService, issuer),
		GoogleAuth:         googleauth.NewGoogleService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.UIRedirectURL, app.UsersService, issuer),
		ResumeHandler:      resumes.NewHandler(app.ResumesService),
		CoverLetterHandler: coverletters.NewHandler(app.CoverLettersService),
		InterviewHandler:   interviewprep.NewHandler(app.InterviewPrepService),
	})
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// pingerFor keeps a nil *sql.DB from becoming a non-nil interface.
func pingerFor(sqlDB *sql.DB) health.Pinger {
	if sqlDB == nil {
		return nil
	}
	return sqlDB
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.InMemory() {
		telemetry.Warn("bootstrap.in_memory", map[string]any{"reason": "DATABASE_URL empty"})
		return nil, nil
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required in %s", cfg.Env)
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildGateway(cfg config.Config) (llm.Gateway, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required")
		}
		telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{"key": "GEMINI_API_KEY"})
		return unconfiguredGateway, nil
	}
	return gemini.NewClient(gemini.Options{
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.GeminiModel,
		BaseURL:         cfg.GeminiBaseURL,
		Timeout:         cfg.GeminiTimeout,
		MaxRetries:      cfg.GeminiMaxRetries,
		MaxOutputTokens: cfg.GeminiMaxOutputTokens,
	})
}

// unconfiguredGateway lets the API start in dev without a model key.
var unconfiguredGateway = llm.GatewayFunc(func(ctx context.Context, prompt string) (string, error) {
	return "", &llm.HTTPError{Status: 401, Body: "GEMINI_API_KEY is not set"}
})

func buildServices(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
		app.CoverLettersRepo = &coverletters.PGRepo{DB: app.DB}
		app.InterviewPrepRepo = &interviewprep.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.CoverLettersRepo = coverletters.NewMemoryRepo()
		app.InterviewPrepRepo = interviewprep.NewMemoryRepo()
	}

	app.UsersService = users.NewService(app.UsersRepo)
	app.ResumesService = resumes.NewService(app.ResumesRepo, app.Store, app.Gateway)
	app.CoverLettersService = coverletters.NewService(app.CoverLettersRepo, app.ResumesRepo, app.Gateway)
	app.InterviewPrepService = interviewprep.NewService(app.InterviewPrepRepo, app.ResumesRepo, app.Gateway)
}
