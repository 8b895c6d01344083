package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rvalverde/assettrack-backend/internal/assets"
	"github.com/rvalverde/assettrack-backend/internal/assignments"
	"github.com/rvalverde/assettrack-backend/internal/cron"
	"github.com/rvalverde/assettrack-backend/internal/notifications"
	"github.com/rvalverde/assettrack-backend/internal/requests"
	"github.com/rvalverde/assettrack-backend/internal/users"
	"github.com/rvalverde/assettrack-backend/pkg/config"
	"github.com/rvalverde/assettrack-backend/pkg/db"
	"github.com/rvalverde/assettrack-backend/pkg/logger"
	"github.com/rvalverde/assettrack-backend/pkg/metrics"
	"github.com/rvalverde/assettrack-backend/pkg/migrate"
	"github.com/rvalverde/assettrack-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	userRepo := users.NewRepository(dbClient.DB())
	assetRepo := assets.NewRepository(dbClient.DB())
	assignmentRepo := assignments.NewRepository(dbClient.DB())
	requestRepo := requests.NewRepository(dbClient.DB())

	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	overdueAssignments, err := cron.NewOverdueAssignmentsJob(cron.OverdueAssignmentsJobParams{
		Logger:      logg,
		Assignments: assignmentRepo,
		Notifier:    notificationService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create overdue assignments job", err)
		os.Exit(1)
	}

	overdueRequests, err := cron.NewOverdueRequestsJob(cron.OverdueRequestsJobParams{
		Logger:   logg,
		Requests: requestRepo,
		Users:    userRepo,
		Notifier: notificationService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create overdue requests job", err)
		os.Exit(1)
	}

	warrantyExpiry, err := cron.NewWarrantyExpiryJob(cron.WarrantyExpiryJobParams{
		Logger:      logg,
		Assets:      assetRepo,
		Users:       userRepo,
		Notifier:    notificationService,
		WarningDays: cfg.Assets.WarrantyWarningDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create warranty expiry job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, cfg.Cron.LockKey, cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(overdueAssignments, overdueRequests, warrantyExpiry),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	go serveMetrics(ctx, logg, cfg.Cron.Port)

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func serveMetrics(ctx context.Context, logg *logger.Logger, port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "metrics server stopped unexpectedly", err)
	}
}
