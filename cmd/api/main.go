package main

// @title DaRoutes Wiki API
// @version 1.0.0
// @description Transit wiki for Dar es Salaam daladala routes.
// @description
// @description Public endpoints serve published routes, stops, terminals and fares.
// @description Dashboard endpoints let editors compose routes and move content through review.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/daroutes-wiki/docs"
	"github.com/daroutes-wiki/internal/config"
	httpDelivery "github.com/daroutes-wiki/internal/delivery/http"
	"github.com/daroutes-wiki/internal/delivery/http/handler"
	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/infrastructure/mapbox"
	"github.com/daroutes-wiki/internal/pkg/logger"
	"github.com/daroutes-wiki/internal/pkg/metrics"
	"github.com/daroutes-wiki/internal/repository/cache"
	"github.com/daroutes-wiki/internal/repository/memory"
	"github.com/daroutes-wiki/internal/repository/postgres"
	redisRepo "github.com/daroutes-wiki/internal/repository/redis"
	"github.com/daroutes-wiki/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting DaRoutes Wiki API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("store", cfg.Store.Driver),
		zap.String("cache", cfg.Cache.Driver),
		zap.Bool("worker_invalidation", cfg.Worker.Enabled),
	)
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}

	// 3. Content store
	var store repository.Store
	switch cfg.Store.Driver {
	case "memory":
		log.Warn("Using the in-memory store, content is lost on restart")
		store = memory.New(log)
	default:
		db, err := postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()
		store = postgres.NewStore(db, cfg.Database.ApplyRLSRole)
	}

	// 4. Redis, for the cache and the content-change stream
	var redisClient *cache.Redis
	if cfg.Cache.Driver == "redis" || cfg.Worker.Enabled {
		redisClient, err = cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
	}

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.Health(ctx); err != nil {
		log.Fatal("Store health check failed", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Health(ctx); err != nil {
			log.Fatal("Redis health check failed", zap.Error(err))
		}
	}
	log.Info("All connections healthy")

	// 6. Repositories
	var cacheRepo repository.CacheRepository
	if cfg.Cache.Driver == "redis" {
		cacheRepo = cache.NewCacheRepository(redisClient)
	} else {
		cacheRepo = cache.NewMemoryCache(cfg.Cache.DetailTTL, log)
	}

	reg := metrics.New()
	invalidationUC := usecase.NewInvalidationUseCase(cacheRepo, reg, log)

	// With the worker running, changes go through the stream so every API
	// replica's readers see the same invalidation; otherwise in process.
	var notifier repository.ChangeNotifier = invalidationUC
	if cfg.Worker.Enabled {
		streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), cfg.Worker.StreamReadTimeout, log)
		notifier = redisRepo.NewStreamNotifier(streamRepo, domain.StreamContentChanged)
	}

	var wards *usecase.WardResolver
	if cfg.Mapbox.Enabled() {
		wards = usecase.NewWardResolver(mapbox.NewGeocodingClient(&cfg.Mapbox, log), cfg.Mapbox.Timeout, log)
		log.Info("Ward lookups enabled")
	}

	log.Info("Repositories initialized")

	// 7. Use cases
	composer := usecase.NewRouteComposer(store, wards, notifier, reg, log)
	workflowUC := usecase.NewWorkflowUseCase(store, notifier, reg, log)
	editorUC := usecase.NewEditorUseCase(store, wards, notifier, log)
	catalogUC := usecase.NewCatalogUseCase(
		store,
		cacheRepo,
		reg,
		domain.Multipliers{Peak: cfg.Fare.PeakMultiplier, OffPeak: cfg.Fare.OffPeakMultiplier},
		usecase.CatalogTTL{List: cfg.Cache.RoutesTTL, Detail: cfg.Cache.DetailTTL},
		log,
	)
	statsUC := usecase.NewStatsUseCase(store, cacheRepo, cfg.Cache.StatsTTL, log)

	log.Info("Use cases initialized")

	// 8. HTTP handlers and server
	server := httpDelivery.NewServer(cfg, log, reg, httpDelivery.Handlers{
		Health:   handler.NewHealthHandler(store, log),
		Catalog:  handler.NewCatalogHandler(catalogUC, log),
		Stats:    handler.NewStatsHandler(statsUC, log),
		Route:    handler.NewRouteHandler(composer, editorUC, log),
		Stop:     handler.NewStopHandler(editorUC, log),
		Workflow: handler.NewWorkflowHandler(workflowUC, log),
	})

	log.Info("HTTP server initialized")

	// 9. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 10. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
