// The recurring-worker runs scheduling batches on an interval, for
// deployments that keep recurrence out of the API process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tally/internal/amqp"
	"tally/internal/config"
	"tally/internal/log"
	"tally/internal/services"
	"tally/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentScheduler)
	log.SetDefault(logger)

	logger.Info("Starting recurring-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			log.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, materialized transactions will not sync",
				log.FieldError, err.Error())
		} else {
			defer amqpClient.Close()
			events = amqpClient
		}
	}

	processor := services.NewRecurringProcessor(repo, events)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Recurring processor configured",
		"interval", cfg.RecurringInterval.String(),
		"db", cfg.SQLiteDBPath)

	// One pass immediately so a worker that was down catches up without
	// waiting a full interval.
	if created, err := processor.ProcessDueTransactions(ctx, time.Now()); err != nil {
		logger.ErrorContext(ctx, "Initial recurrence pass failed", log.FieldError, err.Error())
	} else {
		logger.InfoContext(ctx, "Initial recurrence pass complete", "materialized", created)
	}

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received")
			return
		case <-ticker.C:
			if created, err := processor.ProcessDueTransactions(ctx, time.Now()); err != nil {
				logger.ErrorContext(ctx, "Recurrence pass failed", log.FieldError, err.Error())
			} else if created > 0 {
				logger.InfoContext(ctx, "Recurrence pass complete", "materialized", created)
			}
		}
	}
}
