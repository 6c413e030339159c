package ports

import (
	"context"
	"io"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
)

// RateTable reads verified duty rates. Find performs the two-tier match:
// exact (code, destination, origin) first, then (code, destination) with
// origin-less records acting as wildcards. Code matching is
// punctuation-insensitive, destination/origin matching case-insensitive.
// Absent is reported as domain.ErrNoMatch.
type RateTable interface {
	Find(ctx context.Context, code, destination, origin string) (*domain.RateRecord, error)
	UpsertBatch(ctx context.Context, records []domain.RateRecord) (int, error)
	ReplaceAll(ctx context.Context, records []domain.RateRecord) (int, error)
}

// ClassificationService is the opaque external classifier. Higher latency
// than the rate table and never authoritative.
type ClassificationService interface {
	Resolve(ctx context.Context, freeText, origin, destination string) (*domain.ResolvedClassification, error)
	Candidates(ctx context.Context, text, origin, destination string, limit int) ([]domain.ClassificationCandidate, error)
	Breakdown(ctx context.Context, code, origin, destination string) ([]domain.DutyBreakdownLine, []domain.ReasoningStep, error)
	TradeIntelligence(ctx context.Context, code, destination string) (*domain.TradeIntelligence, error)
}

// SheetStorage stores uploaded rate sheets until the import worker picks
// them up.
type SheetStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue hands sheet IDs from the upload path to the import worker.
type MessageQueue interface {
	PublishSheetQueued(ctx context.Context, sheetID string) error
	SubscribeSheetQueued(ctx context.Context, handler func(context.Context, string) error) error
}

// RateSheetStore persists rate-sheet import state.
type RateSheetStore interface {
	Create(ctx context.Context, sheet *domain.RateSheet) error
	GetByID(ctx context.Context, id string) (*domain.RateSheet, error)
	UpdateStatus(ctx context.Context, id string, status domain.SheetStatus, errMessage string) error
	MarkImported(ctx context.Context, id string, rowCount int) error
}

// SheetParser turns a stored rate sheet into rate records.
type SheetParser interface {
	Parse(ctx context.Context, sheet *domain.RateSheet, data io.Reader) ([]domain.RateRecord, error)
}
