package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/rvalverde/assettrack-backend/api/routes"
	"github.com/rvalverde/assettrack-backend/internal/assets"
	"github.com/rvalverde/assettrack-backend/internal/assignments"
	"github.com/rvalverde/assettrack-backend/internal/auth"
	"github.com/rvalverde/assettrack-backend/internal/categories"
	"github.com/rvalverde/assettrack-backend/internal/dashboard"
	"github.com/rvalverde/assettrack-backend/internal/importexport"
	"github.com/rvalverde/assettrack-backend/internal/notifications"
	"github.com/rvalverde/assettrack-backend/internal/requests"
	"github.com/rvalverde/assettrack-backend/internal/users"
	"github.com/rvalverde/assettrack-backend/pkg/auth/session"
	"github.com/rvalverde/assettrack-backend/pkg/config"
	"github.com/rvalverde/assettrack-backend/pkg/db"
	"github.com/rvalverde/assettrack-backend/pkg/logger"
	"github.com/rvalverde/assettrack-backend/pkg/migrate"
	"github.com/rvalverde/assettrack-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	categoryRepo := categories.NewRepository(dbClient.DB())
	assetRepo := assets.NewRepository(dbClient.DB())
	assignmentRepo := assignments.NewRepository(dbClient.DB())
	requestRepo := requests.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	categoryService, err := categories.NewService(categoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}

	assetService, err := assets.NewService(assetRepo, categoryRepo, cfg.Assets)
	if err != nil {
		logg.Error(context.Background(), "failed to create asset service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	assignmentService, err := assignments.NewService(assignments.ServiceParams{
		Repo: assignmentRepo,
		AssetsFromTx: assignments.NewAssetsTxFactory(func(tx *gorm.DB) *assets.Repository {
			return assets.NewRepository(tx)
		}),
		Users:    userRepo,
		TxRunner: dbClient,
		Notifier: notificationService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create assignment service", err)
		os.Exit(1)
	}

	requestService, err := requests.NewService(requests.ServiceParams{
		Repo:     requestRepo,
		Users:    userRepo,
		Notifier: notificationService,
		Counter:  redisClient,
		Cfg:      cfg.Requests,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create request service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(assetRepo, assignmentRepo, requestRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	importExportService, err := importexport.NewService(assetService, categoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create import/export service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			SessionManager: sessionManager,
			Auth:           authService,
			Assets:         assetService,
			Categories:     categoryService,
			Assignments:    assignmentService,
			Requests:       requestService,
			Notifications:  notificationService,
			Dashboard:      dashboardService,
			ImportExport:   importExportService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
