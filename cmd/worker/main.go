package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atulgupta100/tariff-watch/internal/bootstrap"
	"github.com/atulgupta100/tariff-watch/internal/config"
	"github.com/atulgupta100/tariff-watch/internal/observability/logging"
	"github.com/atulgupta100/tariff-watch/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("tariff-watch-worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("tariff-watch-worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker_metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeSheetQueued(ctx, func(handlerCtx context.Context, sheetID string) error {
		importCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		if sheet, err := app.Sheets.GetByID(importCtx, sheetID); err == nil {
			workerMetrics.ObserveQueueLag("tariff-watch-worker", time.Since(sheet.CreatedAt))
		}

		workerMetrics.StartImport()
		start := time.Now()
		importErr := app.ImportUC.ImportByID(importCtx, sheetID)

		rows := 0
		if sheet, err := app.Sheets.GetByID(importCtx, sheetID); err == nil {
			rows = sheet.RowCount
		}
		workerMetrics.FinishImport("tariff-watch-worker", rows, time.Since(start), importErr)

		if importErr != nil {
			logger.Error("sheet_import_failed", "sheet_id", sheetID, "error", importErr)
		} else {
			logger.Info("sheet_imported", "sheet_id", sheetID, "rows", rows, "duration_ms", time.Since(start).Milliseconds())
		}
		return importErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
