package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"tally/internal/amqp"
	"tally/internal/cache"
	"tally/internal/config"
	apphttp "tally/internal/http"
	"tally/internal/log"
	"tally/internal/services"
	"tally/internal/storage"
)

func main() {
	// Load .env for local development; absent in containers.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentApp)
	log.SetDefault(logger)

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

	// AMQP is optional: without it the ledger still works, downstream
	// export just never happens.
	var events services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without export events",
				log.FieldError, err.Error())
		} else {
			defer amqpClient.Close()
			events = amqpClient
			logger.Info("AMQP client initialized",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ledger := services.NewLedgerService(repo, events)
	processor := services.NewRecurringProcessor(repo, events)

	srv := apphttp.NewServer(apphttp.Config{
		Port:      cfg.Port,
		Store:     repo,
		Ledger:    ledger,
		Processor: processor,
		Logger:    logger.WithComponent(log.ComponentHTTP),
		CacheTTL:  cfg.CacheTTL,
		CacheSize: cfg.CacheSize,
	})

	cacheManager := cache.NewManager()
	cacheManager.Register(srv.ReportCache())
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("Starting tally server",
			"port", cfg.Port, "db", cfg.SQLiteDBPath)
		return srv.Start()
	})

	// Recurrence runs in-process too, so a deployment of the single
	// binary still materializes due rules. A catch-up pass runs at
	// startup before the ticker takes over.
	group.Go(func() error {
		scheduler := logger.WithComponent(log.ComponentScheduler)

		if _, err := processor.ProcessDueTransactions(ctx, time.Now()); err != nil {
			scheduler.ErrorContext(ctx, "Startup recurrence pass failed",
				log.FieldError, err.Error())
		}

		ticker := time.NewTicker(cfg.RecurringInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if _, err := processor.ProcessDueTransactions(ctx, time.Now()); err != nil {
					scheduler.ErrorContext(ctx, "Recurrence pass failed",
						log.FieldError, err.Error())
				}
			}
		}
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("Server exited with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
