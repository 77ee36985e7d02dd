package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"dailyspend/internal/amqp"
	"dailyspend/internal/config"
	"dailyspend/internal/ledger"
	gsheet "dailyspend/internal/ledger/google"
	"dailyspend/internal/ledger/sqlite"
	"dailyspend/internal/log"
	"dailyspend/internal/worker"
)

// sync-worker consumes recorded-expense events and mirrors each row into a
// secondary ledger, so a sqlite-backed server still ends up with its history
// in the spreadsheet (or the other way around).
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("starting sync-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	var target ledger.ExpenseAppender
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(context.Background(), gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			BudgetCell:      cfg.GoogleBudgetCell,
			OverrideCell:    cfg.GoogleOverrideCell,
			ExpenseStartRow: cfg.GoogleExpenseStartRow,
		})
		if err != nil {
			logger.Error("failed to initialize Google Sheets ledger", "error", err)
			os.Exit(1)
		}
		target = client
		logger.Info("syncing into Google Sheets", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		repo, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("failed to initialize SQLite ledger", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		target = repo
		logger.Info("syncing into SQLite", "path", cfg.SQLiteDBPath)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := worker.New(amqpClient, target, logger)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("sync worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("sync worker stopped gracefully")
}
