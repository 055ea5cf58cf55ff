// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nutriai/backend/internal/admin"
	"github.com/nutriai/backend/internal/auth"
	"github.com/nutriai/backend/internal/config"
	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/health"
	"github.com/nutriai/backend/internal/identity"
	"github.com/nutriai/backend/internal/meal"
	"github.com/nutriai/backend/internal/metrics"
	"github.com/nutriai/backend/internal/middleware"
	"github.com/nutriai/backend/internal/nutrition"
	"github.com/nutriai/backend/internal/pricing"
	"github.com/nutriai/backend/internal/quota"
	"github.com/nutriai/backend/internal/report"
	"github.com/nutriai/backend/internal/server"
	"github.com/nutriai/backend/internal/user"
	"github.com/nutriai/backend/migrations"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		applied, migErr := db.Migrate(ctx, migrations.FS())
		if migErr != nil {
			return migErr
		}
		logger.Info("migrations applied", "count", len(applied))
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	userSvc := user.NewService(user.NewRepository(db.DB), cfg.Quota.DefaultDaily)

	var (
		authProvider     auth.Provider
		identityProvider identity.Provider
	)
	if cfg.Clerk.SecretKey != "" {
		clerk := identity.NewClerkClient(cfg.Clerk)
		authProvider = clerk
		identityProvider = clerk
	} else {
		logger.Warn("CLERK_SECRET_KEY not set, running in development identity mode",
			"dev_user_id", identity.DevUserID,
		)
	}

	resolver := identity.NewResolver(
		userSvc,
		identityProvider,
		identity.NewTokenVerifier(cfg.Clerk.JWKSURL, cfg.Clerk.Timeout),
		logger,
	)

	estimator := nutrition.NewEstimator(cfg.OpenRouter, logger)
	if cfg.OpenRouter.APIKey == "" {
		logger.Warn("OPENROUTER_API_KEY not set, meal analysis will fail")
	}
	logger.Info("nutrition estimator configured",
		"model", estimator.Model(),
		"base_url", cfg.OpenRouter.BaseURL,
	)

	mealSvc := meal.NewService(
		meal.NewRepository(db.DB),
		userSvc,
		estimator,
		pricing.NewCalculator(cfg.Pricing),
		logger,
	)

	adminAuth, err := admin.NewAuthenticator(
		cfg.Admin,
		admin.NewRedisSessionStore(redis.Client),
		logger,
	)
	if err != nil {
		return err
	}

	resetter := quota.NewResetter(userSvc, logger)
	if err := resetter.Start(cfg.Quota.ResetSchedule); err != nil {
		return err
	}

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	authHandler := auth.NewHandler(
		auth.NewService(authProvider, userSvc, logger),
		userSvc,
	)
	mealHandler := meal.NewHandler(mealSvc)
	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Auth:       adminAuth,
		Reporter:   report.NewService(db.DB),
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(core.TraceRequests)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(metrics.Middleware)
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit:      middleware.LimitFromConfig(cfg.RateLimit),
			FailOpen:   true,
			BypassFunc: isProbe,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)
	router.Handle("/metrics", metrics.Handler())

	authenticator := middleware.Authenticator(resolver)
	analyzeLimit := middleware.TieredRateLimiter(
		redis.Client,
		middleware.DefaultTiers,
	)

	router.Route("/api/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		mealHandler.RegisterRoutes(r, authenticator, analyzeLimit)
		adminHandler.RegisterRoutes(r)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	resetter.Stop(shutdownCtx)

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func isProbe(r *http.Request) bool {
	switch r.URL.Path {
	case "/health", "/livez", "/readyz", "/metrics":
		return true
	}
	return false
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
