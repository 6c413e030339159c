package ports

import (
	"context"
	"io"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
)

// DutyResolver is the inbound contract for the tiered duty-rate lookup.
type DutyResolver interface {
	Resolve(ctx context.Context, query, htsCode, origin, destination string, force bool) (*domain.ResolvedClassification, error)
	ResolveSelected(ctx context.Context, candidate domain.ClassificationCandidate, origin, destination string) (*domain.ResolvedClassification, error)
	Alternates(ctx context.Context, query, origin, destination string, limit int) ([]domain.ClassificationCandidate, error)
}

// RateSheetIngestor is the inbound contract for rate-sheet upload orchestration.
type RateSheetIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, mode domain.ImportMode, body io.Reader) (*domain.RateSheet, error)
}

// RateSheetImporter is the inbound contract for asynchronous sheet import.
type RateSheetImporter interface {
	ImportByID(ctx context.Context, sheetID string) error
}

// RateSheetReader is the inbound read model for sheet import state.
type RateSheetReader interface {
	GetByID(ctx context.Context, id string) (*domain.RateSheet, error)
	List(ctx context.Context, limit int) ([]domain.RateSheet, error)
}
