package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"geoatlas/internal/common/cache"
	"geoatlas/internal/common/db"
	commonmw "geoatlas/internal/common/http/middleware"
	"geoatlas/internal/geo/controller"
	"geoatlas/internal/geo/repository"
	"geoatlas/internal/geo/seed"
	"geoatlas/internal/geo/service"
	"geoatlas/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/geo_service.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(appCfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	if err := run(appCfg, log); err != nil {
		log.Error(context.Background(), "geo service stopped", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(appCfg *AppConfig, log *logger.Logger) error {
	ctx := context.Background()

	database, err := db.Open(&appCfg.Database)
	if err != nil {
		return fmt.Errorf("init database failed: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()
	log.Info(ctx, "database connected", zap.String("driver", database.Dialect().Name()))
	dbProvider := db.NewStaticProvider(database)

	if appCfg.Schema.AutoCreate {
		if err := repository.EnsureSchema(ctx, database); err != nil {
			return fmt.Errorf("ensure schema failed: %w", err)
		}
	}

	// A nil cache.Cache disables caching; keep it untyped-nil when redis is off.
	var (
		cacheClient cache.Cache
		cachePinger controller.Pinger
	)
	if appCfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCacheWithConfig(&appCfg.Redis)
		if err != nil {
			return fmt.Errorf("init redis failed: %w", err)
		}
		defer func() {
			_ = redisCache.Close()
		}()
		cacheClient, cachePinger = redisCache, redisCache
		log.Info(ctx, "redis cache enabled", zap.String("addr", appCfg.Redis.Addr))
	}

	repos := service.Repositories{
		Continents: repository.NewContinentQueryRepositoryWithTTL(dbProvider, cacheClient, appCfg.Cache),
		Countries:  repository.NewCountryQueryRepositoryWithTTL(dbProvider, cacheClient, appCfg.Cache),
		Provinces:  repository.NewProvinceQueryRepositoryWithTTL(dbProvider, cacheClient, appCfg.Cache),
		Cities:     repository.NewCityQueryRepositoryWithTTL(dbProvider, cacheClient, appCfg.Cache),
	}
	queryService := service.NewQueryService(repos)
	commandService := service.NewCommandService(
		repository.NewUnitOfWorkFactory(dbProvider, cacheClient, log.Named("uow")),
		log.Named("command"),
	)

	if appCfg.Seed.Path != "" {
		if err := seedIfEmpty(ctx, appCfg.Seed, repos.Continents, commandService, log); err != nil {
			return err
		}
	}

	httpServer := buildHTTPServer(appCfg.Server, controller.Dependencies{
		Query:    queryService,
		Command:  commandService,
		Database: database,
		Cache:    cachePinger,
		Logger:   log.Named("http"),
	}, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "geo http server started", zap.String("addr", appCfg.Server.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	shutdownCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-shutdownCtx.Done():
		log.Info(ctx, "shutdown signal received")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, appCfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(timeoutCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

// seedIfEmpty applies the fixture only when no continent is stored yet.
func seedIfEmpty(ctx context.Context, cfg SeedConfig, continents repository.ContinentQueryRepository, seeder seed.Seeder, log *logger.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	total, err := continents.GetTotalCount(ctx)
	if err != nil {
		return fmt.Errorf("check seed state failed: %w", err)
	}
	if total > 0 {
		log.Info(ctx, "store already populated, seed skipped", zap.Int64("continents", total))
		return nil
	}
	fixture, err := seed.Load(cfg.Path)
	if err != nil {
		return err
	}
	n, err := seed.Apply(ctx, seeder, fixture)
	if err != nil {
		return fmt.Errorf("apply seed %s failed: %w", cfg.Path, err)
	}
	log.Info(ctx, "seed fixture loaded", zap.String("path", cfg.Path), zap.Int("entities", n))
	return nil
}

func buildHTTPServer(cfg ServerConfig, deps controller.Dependencies, log *logger.Logger) *http.Server {
	router := gin.New()
	router.Use(commonmw.TraceContextMiddleware())
	router.Use(commonmw.RecoveryMiddleware(log))
	router.Use(commonmw.AccessLogMiddleware(log.Named("access")))
	controller.RegisterRoutes(router, deps)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
