package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"notification-center/internal/api"
	"notification-center/internal/cache"
	"notification-center/internal/config"
	"notification-center/internal/db"
	"notification-center/internal/dispatch"
	"notification-center/internal/kafka"
	"notification-center/internal/logging"
	"notification-center/internal/models"
	"notification-center/internal/providers"
	"notification-center/internal/ws"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Connect to database
	dbConn, err := db.New(cfg.DB.DSN)
	if err != nil {
		logger.Errorf("Failed to connect to database: %v", err)
		log.Fatalf("Database connection failed: %v", err)
	}
	defer dbConn.Close()

	// Stats cache is optional
	var statsCache *cache.Cache
	if cfg.Redis.Addr != "" {
		statsCache, err = cache.New(cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Errorf("Failed to connect to redis: %v", err)
			log.Fatalf("Redis connection failed: %v", err)
		}
		defer statsCache.Close()
	}

	hub := ws.NewHub(logger)

	// Initialize dispatch service with channel providers
	provs := map[string]dispatch.Provider{
		models.ChannelEmail: providers.NewEmail(cfg),
		models.ChannelSMS:   providers.NewSMS(cfg),
		models.ChannelPush:  providers.NewPush(cfg),
		models.ChannelInApp: providers.NewInApp(hub),
	}
	svc := dispatch.New(dbConn, logger, cfg, provs, statsCache)
	var wg sync.WaitGroup
	svc.Start(&wg)

	scheduler, err := dispatch.NewScheduler(svc, logger)
	if err != nil {
		log.Fatalf("Failed to init scheduler: %v", err)
	}
	scheduler.Start()

	// Kafka ingestion is optional
	ctx, cancel := context.WithCancel(context.Background())
	var consumer *kafka.Consumer
	if cfg.Kafka.Broker != "" {
		consumer = kafka.NewConsumer(kafka.Config{
			Brokers: strings.Split(cfg.Kafka.Broker, ","),
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}, svc, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Start(ctx)
		}()
	}

	// Start API server
	router := api.NewRouter(dbConn, logger, cfg, svc, hub, statsCache)
	srv := &http.Server{Addr: cfg.API.Port, Handler: router}
	go func() {
		logger.Infof("Starting API server on %s", cfg.API.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("API server failed: %v", err)
		}
	}()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("API shutdown failed: %v", err)
	}

	scheduler.Stop()
	cancel()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Errorf("Kafka close failed: %v", err)
		}
	}
	svc.Stop()
	wg.Wait()
	logger.Info("Service stopped")
}
