package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"skybook/cmd/consumers/handlers"
	"skybook/cmd/consumers/jobs"
	"skybook/internal/config"
	"skybook/internal/consumers"
	"skybook/internal/logger"
	"skybook/internal/models"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	log.Info("Starting consumers service...")

	// Отдельный client ID, чтобы не конфликтовать с API в кластере
	cfg.NATS.ClientID = "skybook-consumers"

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	delivery := handlers.NewDeliveryHandler(consumerService.Delivery())
	if err := consumerService.Subscribe(models.EventTicketsIssued, delivery.HandleTicketsIssued); err != nil {
		logger.Fatal("Failed to subscribe delivery handler", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	expiration := jobs.NewExpirationJob(consumerService.Reservations, consumerService.DB(),
		cfg.Booking.SweepInterval, cfg.Booking.SweepBatchSize)
	expiration.Start(ctx)

	log.Info("Consumers service started successfully")

	<-ctx.Done()
	log.Info("Shutting down consumers service...")

	expiration.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Consumers service stopped")
}
