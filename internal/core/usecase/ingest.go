package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
	"github.com/atulgupta100/tariff-watch/internal/core/ports"
)

// IngestRateSheetUseCase accepts an uploaded duty-rate sheet, parks it in
// object storage, and queues it for the import worker. The rate table itself
// is only ever written by the worker.
type IngestRateSheetUseCase struct {
	sheets  ports.RateSheetStore
	storage ports.SheetStorage
	queue   ports.MessageQueue
}

func NewIngestRateSheetUseCase(
	sheets ports.RateSheetStore,
	storage ports.SheetStorage,
	queue ports.MessageQueue,
) *IngestRateSheetUseCase {
	return &IngestRateSheetUseCase{
		sheets:  sheets,
		storage: storage,
		queue:   queue,
	}
}

func (uc *IngestRateSheetUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	mode domain.ImportMode,
	body io.Reader,
) (*domain.RateSheet, error) {
	if mode != domain.ImportReplace {
		mode = domain.ImportAugment
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save rate sheet: %w", err)
	}

	sheet := &domain.RateSheet{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Mode:        mode,
		Status:      domain.SheetUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.sheets.Create(ctx, sheet); err != nil {
		return nil, fmt.Errorf("create rate sheet metadata: %w", err)
	}

	if err := uc.queue.PublishSheetQueued(ctx, sheet.ID); err != nil {
		return nil, fmt.Errorf("publish import event: %w", err)
	}

	return sheet, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "ratesheet.bin"
	}
	return base
}
