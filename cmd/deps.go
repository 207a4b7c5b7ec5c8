package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/performance-bonus/internal"
	"github.com/frahmantamala/performance-bonus/internal/assignment"
	assignmentPostgres "github.com/frahmantamala/performance-bonus/internal/assignment/postgres"
	"github.com/frahmantamala/performance-bonus/internal/auth"
	"github.com/frahmantamala/performance-bonus/internal/bonus"
	bonusPostgres "github.com/frahmantamala/performance-bonus/internal/bonus/postgres"
	bonusRedis "github.com/frahmantamala/performance-bonus/internal/bonus/redis"
	"github.com/frahmantamala/performance-bonus/internal/core/events"
	"github.com/frahmantamala/performance-bonus/internal/department"
	departmentPostgres "github.com/frahmantamala/performance-bonus/internal/department/postgres"
	"github.com/frahmantamala/performance-bonus/internal/evaluation"
	evaluationPostgres "github.com/frahmantamala/performance-bonus/internal/evaluation/postgres"
	"github.com/frahmantamala/performance-bonus/internal/user"
	userPostgres "github.com/frahmantamala/performance-bonus/internal/user/postgres"
	"github.com/frahmantamala/performance-bonus/internal/visibility"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Services is the wired application graph shared by the server and the
// command-line tools.
type Services struct {
	Users        *user.Service
	Departments  *department.Service
	Assignments  *assignment.Service
	Evaluations  *evaluation.Service
	Organisation *visibility.Service
	Allocations  *bonus.Service
	Auth         *auth.Service
	EventBus     *events.EventBus
}

func buildServices(cfg *internal.Config, db *gorm.DB, rdb goredis.Cmdable, reg prometheus.Registerer, logger *slog.Logger) (*Services, error) {
	users := user.NewService(userPostgres.NewUserRepository(db), logger)
	departments := department.NewService(departmentPostgres.NewDepartmentRepository(db), users, logger)
	assignments := assignment.NewService(assignmentPostgres.NewAssignmentRepository(db), users, logger)
	evaluations := evaluation.NewService(evaluationPostgres.NewEvaluationRepository(db), logger)
	org := visibility.NewService(departments, users, assignments, visibility.NewMetrics(reg), logger)

	var store bonus.Store
	switch cfg.Allocation.Store {
	case internal.AllocationStoreRedis:
		if rdb == nil {
			return nil, fmt.Errorf("allocation store %q needs a redis connection", cfg.Allocation.Store)
		}
		store = bonusRedis.NewDraftStore(rdb, cfg.Redis.KeyPrefix)
	default:
		store = bonusPostgres.NewDraftStore(db)
	}

	bus := events.NewEventBus(logger)
	bonusMetrics := bonus.NewMetrics(reg)
	bonus.NewEventHandler(bonusMetrics, logger).RegisterEventHandlers(bus)

	allocations := bonus.NewService(org, evaluations, store, cfg.Allocation, bus, bonusMetrics, logger)
	tokens := auth.NewService(users, auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration), logger)

	logger.Info("services wired", "allocation_store", cfg.Allocation.Store)

	return &Services{
		Users:        users,
		Departments:  departments,
		Assignments:  assignments,
		Evaluations:  evaluations,
		Organisation: org,
		Allocations:  allocations,
		Auth:         tokens,
		EventBus:     bus,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// openGorm shares the sqlx pool with gorm so both see one set of connections.
func openGorm(db *sqlx.DB) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return gdb, nil
}

// initRedis returns nil when no redis url is configured.
func initRedis(ctx context.Context, cfg internal.RedisConfig) (*goredis.Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// connect opens postgres, gorm and, when configured, redis.
func connect(ctx context.Context, cfg *internal.Config) (*sqlx.DB, *gorm.DB, *goredis.Client, error) {
	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := openGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}

	rdb, err := initRedis(ctx, cfg.Redis)
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}

	return db, gdb, rdb, nil
}

// cmdable avoids handing a typed nil client to code that checks for nil.
func cmdable(c *goredis.Client) goredis.Cmdable {
	if c == nil {
		return nil
	}
	return c
}
