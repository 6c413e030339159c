package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/atulgupta100/tariff-watch/internal/config"
	"github.com/atulgupta100/tariff-watch/internal/core/ports"
	"github.com/atulgupta100/tariff-watch/internal/core/usecase"
	"github.com/atulgupta100/tariff-watch/internal/infrastructure/classifier/gemini"
	"github.com/atulgupta100/tariff-watch/internal/infrastructure/queue/nats"
	"github.com/atulgupta100/tariff-watch/internal/infrastructure/repository/postgres"
	"github.com/atulgupta100/tariff-watch/internal/infrastructure/resilience"
	"github.com/atulgupta100/tariff-watch/internal/infrastructure/sheetparse"
	"github.com/atulgupta100/tariff-watch/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue       ports.MessageQueue
	Sheets      *postgres.RateSheetRepository
	ResolveUC   ports.DutyResolver
	IngestUC    ports.RateSheetIngestor
	ImportUC    ports.RateSheetImporter
	Suggestions *usecase.SuggestionHub
	Classifier  ports.ClassificationService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	rateTable := postgres.NewRateTableRepository(db)
	if err := rateTable.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	sheets := postgres.NewRateSheetRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init sheet storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.PublishPolicy(), logger),
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	classifier := gemini.New(
		cfg.ClassifierURL,
		cfg.ClassifierModel,
		cfg.ClassifierAPIKey,
		time.Duration(cfg.ClassifierTimeoutSeconds)*time.Second,
		resilience.NewExecutor(resilience.ClassifierPolicy(), logger),
	)

	resolveUC := usecase.NewResolveUseCase(rateTable, classifier, usecase.NewSession(), logger)
	ingestUC := usecase.NewIngestRateSheetUseCase(sheets, storage, queue)
	importUC := usecase.NewImportRateSheetUseCase(sheets, storage, sheetparse.New(), rateTable)
	suggestions := usecase.NewSuggestionHub(classifier, usecase.SuggestionOptions{
		Debounce: time.Duration(cfg.SuggestDebounceMillis) * time.Millisecond,
		MinChars: cfg.SuggestMinChars,
		Limit:    cfg.SuggestMaxCandidates,
		Logger:   logger,
	})

	return &App{
		Config: cfg,

		Queue:       queue,
		Sheets:      sheets,
		ResolveUC:   resolveUC,
		IngestUC:    ingestUC,
		ImportUC:    importUC,
		Suggestions: suggestions,
		Classifier:  classifier,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
