package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kitchen-analytics/config"
	"kitchen-analytics/internal/api"
	"kitchen-analytics/internal/broker"
	"kitchen-analytics/internal/redisclient"
	"kitchen-analytics/internal/service"
	"kitchen-analytics/internal/store"
	"kitchen-analytics/internal/util"
	"kitchen-analytics/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Observ.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting kitchen analytics service")

	tp, err := util.InitTracer("kitchen-analytics", cfg.Observ.JaegerEndpoint, cfg.Observ.TraceSampleRatio)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	db, err := store.NewStore(cfg.Database.URL, store.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxOrders:       cfg.Analytics.MaxOrders,
		BreakerFailures: cfg.Database.BreakerFailures,
		BreakerTimeout:  cfg.Database.BreakerTimeout,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connected")

	checks := []api.ReadinessCheck{{Name: "postgres", Ping: db.Ping}}

	// Redis is optional: without it item lookups go straight to the database
	// and the forecast worker stays off.
	var itemCache service.ItemCache
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("Redis unavailable, running without item cache", zap.Error(err))
	} else {
		defer redisClient.Close()
		itemCache = redisClient
		checks = append(checks, api.ReadinessCheck{Name: "redis", Ping: redisClient.Ping})
		logger.Info("Redis connected")
	}

	catalog := service.NewItemCatalog(db, itemCache, cfg.Redis.ItemCacheTTL)
	recommender := service.NewRecommendationService(db, catalog, cfg.Analytics.TopN)
	forecaster := service.NewForecastService(db, service.ForecastConfig{
		WindowDays: cfg.Analytics.WindowDays,
		MinOrders:  cfg.Analytics.MinOrders,
		Location:   cfg.Analytics.Location,
	})

	ctx := context.Background()
	if err := catalog.WarmCache(ctx); err != nil {
		logger.Warn("Failed to warm item cache", zap.Error(err))
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var forecastWorker *worker.ForecastWorker
	if redisClient != nil && len(cfg.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer producer.Close()
		logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicEvents))

		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicRequests, cfg.Kafka.ConsumerGroup)
		forecastWorker = worker.NewForecastWorker(
			consumer,
			forecaster,
			broker.NewEventPublisher(producer),
			redisClient,
			cfg.Analytics.ForecastInterval,
		)
		go func() {
			if err := forecastWorker.Start(workerCtx); err != nil && err != context.Canceled {
				logger.Error("Forecast worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(recommender, forecaster, checks...)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: api.WithCORS(router, cfg.Server.CORSOrigins),
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if forecastWorker != nil {
		forecastWorker.Stop()
	}

	logger.Info("Server exited")
}
