package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"stagedoor/internal/config"
	"stagedoor/internal/consumers"
	"stagedoor/internal/database"
	"stagedoor/internal/external"
	"stagedoor/internal/logger"
	"stagedoor/internal/messaging"
	"stagedoor/internal/repository"
	"stagedoor/internal/search"
)

func main() {
	cfg := config.Load()

	// Consumers need their own NATS client id
	cfg.NATS.ClientID = "stagedoor-consumers"

	logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}
	defer natsClient.Close()

	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		slog.Warn("Elasticsearch unavailable, show indexing disabled", "error", err)
		esClient = nil
	}

	emailClient := external.NewEmailClient(cfg.Email)
	repos := repository.NewRepositories(db)

	consumerService := consumers.NewService(repos, natsClient, esClient, emailClient)
	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	slog.Info("Consumers service started")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down consumers service...")

	consumerService.Stop()

	slog.Info("Consumers service stopped")
}
