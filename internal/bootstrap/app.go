package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"cv-generator/internal/convert"
	"cv-generator/internal/generations"
	"cv-generator/internal/services/health"
	"cv-generator/internal/session"
	"cv-generator/internal/shared/config"
	"cv-generator/internal/shared/server"
	"cv-generator/internal/shared/server/middleware"
	"cv-generator/internal/shared/storage/db"
	"cv-generator/internal/shared/storage/object"
	localstore "cv-generator/internal/shared/storage/object/local"
	s3store "cv-generator/internal/shared/storage/object/s3"
	"cv-generator/internal/shared/telemetry"
	"cv-generator/internal/web"
	"cv-generator/internal/workspace"
	"cv-generator/resume/render"
)

// App holds shared dependencies.
type App struct {
	Config             config.Config
	Router             *gin.Engine
	DB                 *sql.DB
	Archive            object.ObjectStore
	Sessions           *session.MemoryStore
	Workspaces         *workspace.Manager
	Sweeper            *workspace.Sweeper
	Filler             *render.Filler
	Converter          *convert.Converter
	GenerationsRepo    generations.Repo
	GenerationsService *generations.Service
	GenerationsHandler *generations.Handler
	WebHandler         *web.Handler
}

// Build wires the application from cfg.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.TempRoot) == "" {
		cfg.TempRoot = os.TempDir()
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	archive, err := buildArchive(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:     cfg,
		DB:         sqlDB,
		Archive:    archive,
		Sessions:   session.NewMemoryStore(),
		Workspaces: &workspace.Manager{Root: cfg.TempRoot},
		Sweeper:    NewSweeper(cfg),
		Filler:     &render.Filler{TemplatePath: cfg.TemplatePath},
		Converter:  convert.New(cfg.SofficeBin, cfg.ConvertTimeout),
	}

	if sqlDB != nil {
		app.GenerationsRepo = &generations.PGRepo{DB: sqlDB}
	} else {
		app.GenerationsRepo = generations.NewMemoryRepo()
	}

	app.GenerationsService = &generations.Service{
		Repo:       app.GenerationsRepo,
		Workspaces: app.Workspaces,
		Sweeper:    app.Sweeper,
		Renderer:   app.Filler,
		Converter:  app.Converter,
		Archive:    archive,
	}
	app.GenerationsHandler = generations.NewHandler(app.GenerationsService, app.Sessions)
	app.WebHandler = web.NewHandler(app.Sessions, app.GenerationsService, app.Workspaces)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		WebHandler:        app.WebHandler,
		GenerationHandler: app.GenerationsHandler,
		RateLimiter:       middleware.NewRateLimiter(nil),
		Health:            health.NewService(cfg.SofficeBin, cfg.TempRoot),
	})
	return app, nil
}

// NewSweeper returns the workspace sweeper configured by cfg.
func NewSweeper(cfg config.Config) *workspace.Sweeper {
	return &workspace.Sweeper{
		Root:     cfg.TempRoot,
		MaxAge:   cfg.SweepMaxAge,
		Interval: cfg.SweepInterval,
	}
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Info("bootstrap.memory_repo", map[string]any{"reason": "DATABASE_URL empty"})
		return nil, nil
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, db.ServerOptions())
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repo", map[string]any{"reason": "database connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildArchive(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ArchiveStore {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "local":
		return localstore.New(cfg.LocalStoreDir), nil
	default:
		return nil, nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
