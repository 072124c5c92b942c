package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"skihud/internal/api"
	"skihud/internal/api/handlers"
	"skihud/internal/api/middleware"
	"skihud/internal/config"
	"skihud/internal/logger"
	"skihud/internal/repository"
	"skihud/internal/repository/memory"
	"skihud/internal/repository/redisrepo"
	"skihud/internal/repository/sqlite"
	"skihud/internal/services"
)

var configFile = flag.String("config", "", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags:      map[string]string{"service": "ski-hud-api"},
	}); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	riderRepo, err := openStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open rider store", zap.Error(err), zap.String("driver", cfg.Storage.Driver))
	}
	logger.Info("Rider store ready", zap.String("driver", cfg.Storage.Driver))

	// Services
	registrarService := services.NewRegistrarService(riderRepo)
	telemetryService := services.NewTelemetryService(riderRepo)
	presenceService := services.NewPresenceService(riderRepo, cfg.Presence.Window, cfg.Presence.LeaderboardLimit)
	adminService := services.NewAdminService(riderRepo)

	// Handlers
	riderHandler := handlers.NewRiderHandler(registrarService, telemetryService)
	presenceHandler := handlers.NewPresenceHandler(presenceService)
	adminHandler := handlers.NewAdminHandler(adminService, cfg.Admin.EnableReset)

	// Router
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.Recovery(), middleware.Logger())

	router := api.NewRouter(riderHandler, presenceHandler, adminHandler)
	router.Setup(engine)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Starting Ski HUD API server", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}

func openStore(cfg *config.Config) (repository.RiderRepository, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memory.NewRiderRepository(), nil
	case "sqlite":
		return sqlite.Open(cfg.Storage.Path)
	case "redis":
		repo := redisrepo.NewRiderRepository(redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		}))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis unreachable at %s: %w", cfg.Storage.Redis.Addr, err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
