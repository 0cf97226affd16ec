// The sync-worker consumes ledger events from AMQP and mirrors
// transactions into the configured export target.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tally/internal/amqp"
	"tally/internal/config"
	"tally/internal/log"
	"tally/internal/sheets"
	gsheet "tally/internal/sheets/google"
	"tally/internal/sheets/memory"
	"tally/internal/storage"
	"tally/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	logger.Info("Starting sync-worker")

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

	writer, deleter, err := newExportTarget(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize export target",
			log.FieldError, err.Error(), "target", cfg.ExportTarget)
		os.Exit(1)
	}
	if writer == nil {
		logger.Info("Export disabled, nothing to consume", "target", cfg.ExportTarget)
		return
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, writer, deleter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Consuming ledger events",
		"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue, "target", cfg.ExportTarget)

	err = amqpClient.Consume(ctx, func(event *amqp.Event) error {
		return syncWorker.HandleEvent(ctx, event)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Event consumption failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// newExportTarget builds the writer/deleter pair for the configured
// target. A nil writer means exporting is turned off.
func newExportTarget(cfg *config.Config, logger *log.Logger) (sheets.TransactionWriter, sheets.TransactionDeleter, error) {
	switch cfg.ExportTarget {
	case "sheets":
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Google Sheets export target initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
		return client, client, nil
	case "memory":
		store := memory.New()
		logger.Info("In-memory export target initialized")
		return store, store, nil
	default:
		return nil, nil, nil
	}
}
