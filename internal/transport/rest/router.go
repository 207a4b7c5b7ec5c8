package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/performance-bonus/api"
	"github.com/frahmantamala/performance-bonus/internal/assignment"
	"github.com/frahmantamala/performance-bonus/internal/auth"
	"github.com/frahmantamala/performance-bonus/internal/bonus"
	"github.com/frahmantamala/performance-bonus/internal/department"
	"github.com/frahmantamala/performance-bonus/internal/transport"
	"github.com/frahmantamala/performance-bonus/internal/transport/middleware"
	"github.com/frahmantamala/performance-bonus/internal/transport/swagger"
	"github.com/frahmantamala/performance-bonus/internal/user"
	"github.com/frahmantamala/performance-bonus/internal/visibility"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
)

// Handlers groups the HTTP handlers mounted under /api/v1. A nil handler
// leaves its routes unmounted.
type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Department *department.Handler
	Assignment *assignment.Handler
	Visibility *visibility.Handler
	Bonus      *bonus.Handler
}

type RouterConfig struct {
	DB             *sql.DB
	Redis          goredis.Cmdable
	AllowedOrigins string
	MetricsPath    string
	Gatherer       prometheus.Gatherer
	HTTPMetrics    *middleware.HTTPMetrics
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, cfg RouterConfig, h Handlers) {
	healthHandler := NewHealthHandler(cfg.DB, cfg.Redis)
	base := transport.NewBaseHandler(cfg.Logger)

	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(base.Logger))
	router.Use(middleware.LoggingMiddleware(base.Logger))
	router.Use(cfg.HTTPMetrics.Middleware)

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.OpenAPI)
	})
	router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))

	if cfg.Gatherer != nil && cfg.MetricsPath != "" {
		router.Handle(cfg.MetricsPath, promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
				pr.With(middleware.RequireRoles(base, middleware.Administrators...)).Get("/users", h.User.ListUsers)
			}

			if h.Department != nil {
				pr.Route("/departments", func(dr chi.Router) {
					dr.Get("/", h.Department.GetTree)
					dr.Get("/options", h.Department.GetParentOptions)

					dr.Group(func(ar chi.Router) {
						ar.Use(middleware.RequireRoles(base, middleware.Administrators...))
						ar.Post("/", h.Department.CreateDepartment)
						ar.Patch("/{id}", h.Department.UpdateDepartment)
						ar.Delete("/{id}", h.Department.DeactivateDepartment)
					})
				})
			}

			if h.Assignment != nil {
				pr.Route("/assignments", func(ar chi.Router) {
					ar.Use(middleware.RequireRoles(base, middleware.Administrators...))
					ar.Get("/", h.Assignment.ListAssignments)
					ar.Post("/", h.Assignment.CreateAssignment)
					ar.Delete("/{id}", h.Assignment.DeleteAssignment)
				})
			}

			if h.Visibility != nil {
				pr.Get("/team", h.Visibility.GetTeam)
			}

			if h.Bonus != nil {
				pr.Route("/allocations/{departmentID}/{year}", func(br chi.Router) {
					br.Use(middleware.RequireRoles(base, middleware.Allocators...))
					br.Get("/", h.Bonus.GetAllocation)
					br.Put("/", h.Bonus.SaveAllocation)
					br.Post("/auto", h.Bonus.AutoAllocate)
					br.Patch("/members/{userID}", h.Bonus.AdjustMember)
					br.Post("/finalize", h.Bonus.FinalizeAllocation)
				})
			}
		})
	})
}
