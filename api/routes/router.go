package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rvalverde/assettrack-backend/api/controllers"
	"github.com/rvalverde/assettrack-backend/api/middleware"
	assetsvc "github.com/rvalverde/assettrack-backend/internal/assets"
	assignmentsvc "github.com/rvalverde/assettrack-backend/internal/assignments"
	authsvc "github.com/rvalverde/assettrack-backend/internal/auth"
	categorysvc "github.com/rvalverde/assettrack-backend/internal/categories"
	dashboardsvc "github.com/rvalverde/assettrack-backend/internal/dashboard"
	importexportsvc "github.com/rvalverde/assettrack-backend/internal/importexport"
	notificationsvc "github.com/rvalverde/assettrack-backend/internal/notifications"
	requestsvc "github.com/rvalverde/assettrack-backend/internal/requests"
	"github.com/rvalverde/assettrack-backend/pkg/auth/session"
	"github.com/rvalverde/assettrack-backend/pkg/config"
	"github.com/rvalverde/assettrack-backend/pkg/db"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	"github.com/rvalverde/assettrack-backend/pkg/logger"
	"github.com/rvalverde/assettrack-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionManager sessionManager
	Auth           authsvc.Service
	Assets         assetsvc.Service
	Categories     categorysvc.Service
	Assignments    assignmentsvc.Service
	Requests       requestsvc.Service
	Notifications  notificationsvc.Service
	Dashboard      dashboardsvc.Service
	ImportExport   importexportsvc.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(p.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))
		if p.Redis != nil {
			r.Use(middleware.Idempotency(p.Redis, logg))
		}

		// Every authenticated user gets the self-service portal.
		r.Route("/me", func(r chi.Router) {
			r.Get("/assets", controllers.MyAssets(p.Assets, logg))
			r.Get("/assignments", controllers.MyAssignments(p.Assignments, logg))
			r.Get("/requests", controllers.MyRequests(p.Requests, logg))
		})

		// Code lookup backs the QR and barcode labels, so any badge holder
		// can scan equipment they come across.
		r.Get("/scan/{code}", controllers.ScanAsset(p.Assets, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(p.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(p.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(p.Notifications, logg))
		})

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", controllers.CreateRequest(p.Requests, logg))
			r.Get("/", controllers.ListRequests(p.Requests, logg))
			r.Get("/{requestId}", controllers.GetRequest(p.Requests, logg))
			r.Patch("/{requestId}", controllers.UpdateRequest(p.Requests, logg))
			r.Delete("/{requestId}", controllers.DeleteRequest(p.Requests, logg))
			r.Post("/{requestId}/submit", controllers.SubmitRequest(p.Requests, logg))
			r.Post("/{requestId}/cancel", controllers.CancelRequest(p.Requests, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleTechnician, logg))
				r.Post("/{requestId}/review", controllers.ReviewRequest(p.Requests, logg))
				r.Post("/{requestId}/start", controllers.StartRequest(p.Requests, logg))
				r.Post("/{requestId}/complete", controllers.CompleteRequest(p.Requests, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleManager, logg))
				r.Post("/{requestId}/approve", controllers.ApproveRequest(p.Requests, logg))
				r.Post("/{requestId}/reject", controllers.RejectRequest(p.Requests, logg))
				r.Post("/{requestId}/reset", controllers.ResetRequest(p.Requests, logg))
			})
		})

		// The catalog and assignment desk are staff territory.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleTechnician, logg))

			r.Route("/assets", func(r chi.Router) {
				r.Post("/", controllers.CreateAsset(p.Assets, logg))
				r.Get("/", controllers.ListAssets(p.Assets, logg))
				r.Get("/scan/{code}", controllers.ScanAsset(p.Assets, logg))
				r.Post("/labels", controllers.AssetLabels(p.Assets, logg))
				r.Get("/{assetId}", controllers.GetAsset(p.Assets, logg))
				r.Patch("/{assetId}", controllers.UpdateAsset(p.Assets, logg))
				r.Delete("/{assetId}", controllers.DeleteAsset(p.Assets, logg))
				r.Post("/{assetId}/activate", controllers.ActivateAsset(p.Assets, logg))
				r.Post("/{assetId}/maintenance", controllers.StartAssetMaintenance(p.Assets, logg))
				r.Post("/{assetId}/repair", controllers.StartAssetRepair(p.Assets, logg))
				r.Post("/{assetId}/finish-service", controllers.FinishAssetService(p.Assets, logg))
				r.Post("/{assetId}/dispose", controllers.DisposeAsset(p.Assets, logg))
				r.Get("/{assetId}/qrcode", controllers.AssetQRCode(p.Assets, logg))
				r.Get("/{assetId}/barcode", controllers.AssetBarcode(p.Assets, logg))
			})

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", controllers.CreateCategory(p.Categories, logg))
				r.Get("/", controllers.ListCategories(p.Categories, logg))
				r.Get("/{categoryId}", controllers.GetCategory(p.Categories, logg))
				r.Patch("/{categoryId}", controllers.UpdateCategory(p.Categories, logg))
				r.Delete("/{categoryId}", controllers.DeleteCategory(p.Categories, logg))
			})

			r.Route("/assignments", func(r chi.Router) {
				r.Post("/", controllers.CreateAssignment(p.Assignments, logg))
				r.Get("/", controllers.ListAssignments(p.Assignments, logg))
				r.Get("/{assignmentId}", controllers.GetAssignment(p.Assignments, logg))
				r.Post("/{assignmentId}/return", controllers.ReturnAssignment(p.Assignments, logg))
				r.Post("/{assignmentId}/lost", controllers.MarkAssignmentLost(p.Assignments, logg))
				r.Post("/{assignmentId}/damaged", controllers.MarkAssignmentDamaged(p.Assignments, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleManager, logg))
			r.Get("/dashboard/stats", controllers.DashboardStats(p.Dashboard, logg))
			r.Route("/assets-io", func(r chi.Router) {
				r.Post("/import", controllers.ImportAssets(p.ImportExport, logg))
				r.Get("/export", controllers.ExportAssets(p.ImportExport, logg))
				r.Get("/template", controllers.ImportTemplate(p.ImportExport, logg))
			})
		})
	})

	return r
}
