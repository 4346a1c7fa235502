package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"docsearch-backend/internal/documents"
	"docsearch-backend/internal/extract"
	"docsearch-backend/internal/search"
	"docsearch-backend/internal/services/health"
	"docsearch-backend/internal/shared/auth"
	"docsearch-backend/internal/shared/config"
	"docsearch-backend/internal/shared/server"
	"docsearch-backend/internal/shared/server/middleware"
	"docsearch-backend/internal/shared/storage/artifact"
	localstore "docsearch-backend/internal/shared/storage/artifact/local"
	s3store "docsearch-backend/internal/shared/storage/artifact/s3"
	"docsearch-backend/internal/shared/storage/db"
	"docsearch-backend/internal/shared/telemetry"
	"docsearch-backend/internal/users"
)

// App holds shared dependencies and the configured router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sqlx.DB
	Store  artifact.Store

	Catalog          documents.Catalog
	UsersRepo        users.Repo
	Tokens           *auth.Issuer
	Gate             *auth.Gate
	DocumentsService *documents.Service
	UsersService     *users.Service
	SearchEngine     *search.Engine
}

// Build wires storage, services and handlers, then seeds the admin account.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Tokens: tokens,
		Gate:   auth.NewGate(tokens),
	}
	buildServices(app)

	if _, err := app.UsersService.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminEmail); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	var pinger health.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	loginLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Scope: "login",
		Rule:  middleware.RateLimitRule{Rate: cfg.LoginRatePerSec, Burst: cfg.LoginBurst},
		// keyed by client IP; the caller is not signed in yet
		KeyFor: func(c *gin.Context) string { return c.ClientIP() },
	})

	app.Router = server.NewRouter(server.RouterDeps{
		Config:    cfg,
		Health:    health.NewService(pinger),
		Documents: documents.NewHandler(app.DocumentsService, app.Gate, cfg.MaxUploadBytes),
		Search:    search.NewHandler(app.SearchEngine, app.Gate),
		Users:     users.NewHandler(app.UsersService, app.Gate, loginLimit),
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Info("bootstrap.memory_catalog", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sqlx.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db_connect_failed", map[string]any{"error": err.Error(), "fallback": "memory"})
			return nil, nil
		}
		return nil, err
	}

	if cfg.MigrateOnStart {
		if err := db.RunMigrations(ctx, sqlDB.DB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (artifact.Store, error) {
	switch cfg.ArtifactStore {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.StorageRoot)
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.Catalog = &documents.PGRepo{DB: app.DB}
		app.UsersRepo = &users.PGRepo{DB: app.DB}
	} else {
		app.Catalog = documents.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
	}

	docSvc := &documents.Service{
		Catalog:   app.Catalog,
		Store:     app.Store,
		Extractor: extract.New(),
	}
	userSvc := users.NewService(app.UsersRepo, app.Tokens, docSvc)
	docSvc.Owners = userSvc

	app.DocumentsService = docSvc
	app.UsersService = userSvc
	app.SearchEngine = search.NewEngine(docSvc)
}
