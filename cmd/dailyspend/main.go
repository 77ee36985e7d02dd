package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"dailyspend/internal/amqp"
	"dailyspend/internal/budget"
	"dailyspend/internal/clock"
	"dailyspend/internal/config"
	apphttp "dailyspend/internal/http"
	"dailyspend/internal/ledger"
	gsheet "dailyspend/internal/ledger/google"
	mem "dailyspend/internal/ledger/memory"
	"dailyspend/internal/ledger/sqlite"
	"dailyspend/internal/log"
	"dailyspend/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("failed to load timezone", "error", err, "timezone", cfg.Timezone)
		os.Exit(1)
	}

	var port ledger.Port
	switch cfg.DataBackend {
	case "sheets":
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
		if err := client.EnsureHeader(context.Background()); err != nil {
			logger.Warn("could not verify expense header row", "error", err)
		}
		port = client
		logger.Info("initialized Google Sheets ledger", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	case "sqlite":
		repo, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("failed to initialize SQLite ledger", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		port = repo
		logger.Info("initialized SQLite ledger", "path", cfg.SQLiteDBPath)
	default:
		port = mem.NewUnconfigured()
		logger.Info("initialized in-memory ledger")
	}

	// Optional event publishing; recording works without it.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		events = amqpClient
		logger.Info("initialized AMQP publisher", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, no AMQP_URL provided")
	}

	clk := clock.New(loc)
	engine := budget.New(port, clk, logger)
	recorder := services.NewRecorder(port, engine, clk, events, logger)
	stats := services.NewAggregator(port, clk)
	history := services.NewHistory(port, logger)

	srv := apphttp.NewServer(":"+cfg.Port, recorder, engine, stats, history, clk, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", "port", cfg.Port, "backend", cfg.DataBackend, "timezone", cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}
