package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"renewables-analytics/internal/cache"
	"renewables-analytics/internal/config"
	"renewables-analytics/internal/handlers"
	"renewables-analytics/internal/repository"
	"renewables-analytics/internal/services"
	"renewables-analytics/pkg/database"
	"renewables-analytics/pkg/logging"
	"renewables-analytics/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logLevel, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("renewables-api", version, logLevel)

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting renewables analytics API server", logging.Fields{
		"version":     version,
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"db_host":     cfg.Database.Host,
		"db_name":     cfg.Database.Database,
		"cache":       cfg.Cache.Enabled(),
	})

	metricsCollector := metrics.NewCollector("renewables_analytics")

	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	datasetRepo := repository.NewDatasetRepository(db, logger, metricsCollector)

	// The report cache is optional; without it every request recomputes
	var reportCache cache.ReportCache
	if cfg.Cache.Enabled() {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			TTL:      cfg.Cache.TTL,
		})
		if err != nil {
			logger.Warn(ctx, "[STARTUP_CACHE_DISABLED] Redis unavailable, continuing without report cache", logging.Fields{
				"redis_addr": cfg.Cache.RedisAddr,
				"error":      err.Error(),
			})
		} else {
			defer redisCache.Close()
			reportCache = redisCache
		}
	}

	analyticsService := services.NewAnalyticsService(datasetRepo, reportCache, logger, metricsCollector, services.Options{
		DefaultIndicator: cfg.Analytics.DefaultIndicator,
		MaxFilterRegions: cfg.Analytics.MaxFilterRegions,
	})

	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, logger, metricsCollector)

	router := mux.NewRouter()
	router.Use(handlers.RequestIDMiddleware, handlers.AccessLogMiddleware(logger))

	analyticsHandler.RegisterRoutes(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
