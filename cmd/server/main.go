package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"equipment-service/internal/cache"
	"equipment-service/internal/config"
	"equipment-service/internal/database"
	"equipment-service/internal/events"
	"equipment-service/internal/handlers"
	"equipment-service/internal/middleware"
	"equipment-service/internal/repository"
	"equipment-service/internal/routes"
	"equipment-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// PostgreSQL
	postgresDB, err := database.NewPostgresDB(
		cfg.Database.URL,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer postgresDB.Close()

	// Redis: opcional, su ausencia deja el cache en modo L1-only
	var redisDB *database.RedisDB
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisDB, err = database.NewRedisDB(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("Redis unavailable, snapshot cache will be L1-only", zap.Error(err))
		} else {
			redisClient = redisDB.Client
			defer redisDB.Close()
		}
	}

	// Repository y cache de snapshots
	ledgerRepo, err := repository.NewLedgerRepository(postgresDB.DB)
	if err != nil {
		logger.Fatal("Failed to create ledger repository", zap.Error(err))
	}

	snapshotCache := cache.NewEquipmentCache(redisClient, cfg.Cache.MaxL1Size, cfg.Cache.TTL, logger)

	// Listeners de movimientos confirmados
	var listeners []services.MovementListener

	metricsService := services.NewMetricsService(logger, redisClient, postgresDB.DB, snapshotCache)
	listeners = append(listeners, metricsService)

	feedHandler := handlers.NewFeedHandler(logger)
	listeners = append(listeners, feedHandler)
	defer feedHandler.Close()

	if len(cfg.Kafka.Brokers) > 0 {
		publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer publisher.Close()
		listeners = append(listeners, publisher)
		logger.Info("Movement fact publishing enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic))
	}

	// Servicio de movimientos
	movementService := services.NewMovementService(ledgerRepo, snapshotCache, logger, listeners...)

	// Handlers
	movementHandler := handlers.NewMovementHandler(movementService, logger)
	equipmentHandler := handlers.NewEquipmentHandler(movementService, logger)
	monitoringHandler := handlers.NewMonitoringHandler(metricsService, logger)
	healthChecker := middleware.NewHealthChecker(postgresDB, redisDB, logger)

	// Router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(monitoringHandler.RecordRequestMiddleware())

	routes.SetupRoutes(router, movementHandler, equipmentHandler, feedHandler, monitoringHandler, healthChecker)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		middleware.ServerInfo(cfg.Server.Port, logger)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Apagado ordenado
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
