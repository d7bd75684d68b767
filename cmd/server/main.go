package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	httpapi "crfms-backend/internal/api/http"
	"crfms-backend/internal/config"
	"crfms-backend/internal/domain"
	"crfms-backend/internal/events"
	"crfms-backend/internal/logger"
	"crfms-backend/internal/repository/mongodb"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting CRFMS Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "database", cfg.Database.Database)

	ctx := context.Background()

	// Initialize Database
	logger.Debug("Connecting to database...")
	client, err := mongodb.Connect(ctx, cfg.Database.URI)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	store := mongodb.NewStore(client, cfg.Database.Database)
	defer store.Close(ctx)
	logger.Info("Database connection established")

	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Error("Failed to create indexes", "error", err)
		log.Fatalf("Failed to create indexes: %v", err)
	}
	logger.Info("Database indexes ensured")

	// Initialize Event Publisher
	publisher, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	// Initialize Event Consumer
	consumer, err := events.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		logger.Error("Failed to connect event consumer", "error", err)
		log.Fatalf("Failed to connect event consumer: %v", err)
	}
	defer consumer.Close()

	consumerCtx, cancelConsumer := context.WithCancel(ctx)
	defer cancelConsumer()
	err = consumer.Start(consumerCtx, domain.AllEvents(), func(ctx context.Context, eventType string, data map[string]any) {
		logger.Info("Domain event received", "event_type", eventType, "data", data)
	})
	if err != nil {
		logger.Error("Failed to bind event queues", "error", err)
		log.Fatalf("Failed to bind event queues: %v", err)
	}

	// Set up ops HTTP server
	router := mux.NewRouter()
	healthHandler := httpapi.NewHealthHandler(store)
	healthHandler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
