package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
	"github.com/atulgupta100/tariff-watch/internal/core/ports"
)

// ImportRateSheetUseCase is the worker-side import pipeline: load the sheet,
// parse it into rate records, and write them to the rate table in the mode
// the uploader chose.
type ImportRateSheetUseCase struct {
	sheets  ports.RateSheetStore
	storage ports.SheetStorage
	parser  ports.SheetParser
	table   ports.RateTable
}

func NewImportRateSheetUseCase(
	sheets ports.RateSheetStore,
	storage ports.SheetStorage,
	parser ports.SheetParser,
	table ports.RateTable,
) *ImportRateSheetUseCase {
	return &ImportRateSheetUseCase{
		sheets:  sheets,
		storage: storage,
		parser:  parser,
		table:   table,
	}
}

func (uc *ImportRateSheetUseCase) ImportByID(ctx context.Context, sheetID string) error {
	if err := uc.sheets.UpdateStatus(ctx, sheetID, domain.SheetImporting, ""); err != nil {
		return fmt.Errorf("set status=importing: %w", err)
	}

	rows, err := uc.importPipeline(ctx, sheetID)
	if err != nil {
		if failErr := uc.markFailed(ctx, sheetID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.sheets.MarkImported(ctx, sheetID, rows); err != nil {
		return fmt.Errorf("set status=imported: %w", err)
	}
	return nil
}

func (uc *ImportRateSheetUseCase) importPipeline(ctx context.Context, sheetID string) (int, error) {
	sheet, err := uc.sheets.GetByID(ctx, sheetID)
	if err != nil {
		return 0, fmt.Errorf("fetch rate sheet by id: %w", err)
	}

	records, err := uc.parseSheet(ctx, sheet)
	if err != nil {
		return 0, err
	}

	switch sheet.Mode {
	case domain.ImportReplace:
		rows, err := uc.table.ReplaceAll(ctx, records)
		if err != nil {
			return 0, fmt.Errorf("replace rate table: %w", err)
		}
		return rows, nil
	default:
		rows, err := uc.table.UpsertBatch(ctx, records)
		if err != nil {
			return 0, fmt.Errorf("augment rate table: %w", err)
		}
		return rows, nil
	}
}

func (uc *ImportRateSheetUseCase) parseSheet(ctx context.Context, sheet *domain.RateSheet) ([]domain.RateRecord, error) {
	data, err := uc.storage.Open(ctx, sheet.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open stored sheet: %w", err)
	}
	defer data.Close()

	records, err := uc.parser.Parse(ctx, sheet, data)
	if err != nil {
		return nil, fmt.Errorf("parse rate sheet: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse rate sheet", errors.New("sheet contains no rate rows"))
	}
	return records, nil
}

func (uc *ImportRateSheetUseCase) markFailed(ctx context.Context, sheetID string, importErr error) error {
	if importErr == nil {
		return nil
	}
	return uc.sheets.UpdateStatus(ctx, sheetID, domain.SheetFailed, importErr.Error())
}
