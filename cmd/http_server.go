package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/performance-bonus/internal"
	"github.com/frahmantamala/performance-bonus/internal/assignment"
	"github.com/frahmantamala/performance-bonus/internal/auth"
	"github.com/frahmantamala/performance-bonus/internal/bonus"
	"github.com/frahmantamala/performance-bonus/internal/department"
	"github.com/frahmantamala/performance-bonus/internal/transport"
	"github.com/frahmantamala/performance-bonus/internal/transport/middleware"
	"github.com/frahmantamala/performance-bonus/internal/transport/rest"
	"github.com/frahmantamala/performance-bonus/internal/user"
	"github.com/frahmantamala/performance-bonus/internal/visibility"
	"github.com/frahmantamala/performance-bonus/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Redis    *goredis.Client
	Router   *chi.Mux
	Registry *prometheus.Registry
	Services *Services
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "env", deps.Config.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.Services.EventBus.Drain(ctx); err != nil {
			deps.Logger.Error("Event handlers did not finish", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.close()
			os.Exit(1)
		}
	}

	deps.close()
	deps.Logger.Info("Server stopped")
}

func (d *Dependencies) close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func setupRoutes(deps *Dependencies) {
	base := transport.NewBaseHandler(deps.Logger)
	svc := deps.Services

	var metricsPath string
	var httpMetrics *middleware.HTTPMetrics
	if deps.Config.Observability.Metrics.Enabled {
		metricsPath = deps.Config.Observability.Metrics.Path
		httpMetrics = middleware.NewHTTPMetrics(deps.Registry)
	}

	rest.RegisterAllRoutes(deps.Router, rest.RouterConfig{
		DB:             deps.DB.DB,
		Redis:          cmdable(deps.Redis),
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		MetricsPath:    metricsPath,
		Gatherer:       deps.Registry,
		HTTPMetrics:    httpMetrics,
		Logger:         deps.Logger,
	}, rest.Handlers{
		Auth:       auth.NewHandler(base, svc.Auth),
		User:       user.NewHandler(base, svc.Users),
		Department: department.NewHandler(base, svc.Departments),
		Assignment: assignment.NewHandler(base, svc.Assignments),
		Visibility: visibility.NewHandler(base, svc.Organisation),
		Bonus:      bonus.NewHandler(base, svc.Allocations),
	})
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.L()

	db, gdb, rdb, err := connect(context.Background(), config)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, "postgres"),
	)

	services, err := buildServices(config, gdb, cmdable(rdb), reg, lg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Dependencies{
		Config:   config,
		DB:       db,
		Redis:    rdb,
		Router:   chi.NewRouter(),
		Registry: reg,
		Services: services,
		Logger:   lg,
	}, nil
}
