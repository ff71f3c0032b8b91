package app

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

	"gtrac-gateway/internal/backend"
	"gtrac-gateway/internal/config"
	"gtrac-gateway/internal/database"
	"gtrac-gateway/internal/handler"
	"gtrac-gateway/internal/metrics"
	"gtrac-gateway/internal/repository"
	"gtrac-gateway/internal/router"
	"gtrac-gateway/internal/service"
	"gtrac-gateway/internal/session"
	"gtrac-gateway/internal/usercache"
)

const auditPruneInterval = time.Hour

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	a := &App{}

	var m *metrics.Metrics
	var backendOpts []backend.Option
	if cfg.MetricsEnabled {
		m = metrics.New()
		backendOpts = append(backendOpts, backend.WithObserver(m))
	}

	client, err := backend.New(cfg.BackendBaseURL, cfg.BackendAPIPrefix, cfg.BackendTimeout, backendOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize backend client: %w", err)
	}

	var cache usercache.Cache
	if cfg.RedisURL != "" {
		slog.Info("connecting to Redis user cache")
		redisCache, err := usercache.NewRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		cache = redisCache
		a.cleanupFuncs = append(a.cleanupFuncs, func() {
			if err := redisCache.Close(); err != nil {
				slog.Warn("closing redis failed", "error", err)
			}
		})
	}

	var health func(ctx context.Context) error
	auditService := service.NewAuditService(nil, cfg.AuditRetention)
	if cfg.DatabaseURL != "" {
		slog.Info("connecting to PostgreSQL audit store")
		db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			a.cleanup()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.cleanupFuncs = append(a.cleanupFuncs, db.Close)

		if err := db.EnsureSchema(context.Background()); err != nil {
			a.cleanup()
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}

		auditService = service.NewAuditService(repository.NewAuthEventRepository(db.Pool), cfg.AuditRetention)
		a.cleanupFuncs = append(a.cleanupFuncs, auditService.Wait)
		health = db.Health
		slog.Info("auth audit trail enabled", "retention", cfg.AuditRetention)
	}

	jar := session.NewCookieJar(session.CookiePolicy{
		AccessName:    cfg.AccessCookieName,
		RefreshName:   cfg.RefreshCookieName,
		AccessMaxAge:  cfg.AccessCookieMaxAge,
		RefreshMaxAge: cfg.RefreshCookieMaxAge,
		Domain:        cfg.CookieDomain,
		Secure:        cfg.CookieSecure,
		SameSite:      cfg.CookieSameSite,
	})

	authService := service.NewAuthService(client)
	userService := service.NewUserService(client, cache, cfg.UserCacheTTL)
	exportService := service.NewExportService(client, cfg.ExportPageSize, cfg.ExportMaxPages)

	pageHandler, err := handler.NewPageHandler(userService, client)
	if err != nil {
		a.cleanup()
		return nil, fmt.Errorf("failed to load page templates: %w", err)
	}

	appRouter := router.New(cfg, jar, router.Handlers{
		Auth:   handler.NewAuthHandler(authService, userService, auditService, jar),
		Proxy:  handler.NewProxyHandler(client),
		User:   handler.NewUserHandler(userService),
		Export: handler.NewExportHandler(exportService),
		Pages:  pageHandler,
		Health: health,
	}, m)

	pruneCtx, pruneCancel := context.WithCancel(context.Background())
	go auditService.StartPruneTicker(pruneCtx, auditPruneInterval)
	a.cleanupFuncs = append(a.cleanupFuncs, pruneCancel)

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return a, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// In-flight requests finish before the stores close.
	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
	a.cleanupFuncs = nil
}
