package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
)

type importTableFake struct {
	upserted []domain.RateRecord
	replaced []domain.RateRecord

	upsertCalls  int
	replaceCalls int
	writeErr     error
}

func (f *importTableFake) Find(context.Context, string, string, string) (*domain.RateRecord, error) {
	return nil, domain.ErrNoMatch
}

func (f *importTableFake) UpsertBatch(_ context.Context, records []domain.RateRecord) (int, error) {
	f.upsertCalls++
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.upserted = append(f.upserted, records...)
	return len(records), nil
}

func (f *importTableFake) ReplaceAll(_ context.Context, records []domain.RateRecord) (int, error) {
	f.replaceCalls++
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.replaced = append([]domain.RateRecord(nil), records...)
	return len(records), nil
}

type sheetParserFake struct {
	records []domain.RateRecord
	err     error
}

func (f *sheetParserFake) Parse(_ context.Context, _ *domain.RateSheet, data io.Reader) ([]domain.RateRecord, error) {
	if _, err := io.Copy(io.Discard, data); err != nil {
		return nil, err
	}
	return f.records, f.err
}

func seedUploadedSheet(t *testing.T, store *sheetStoreFake, storage *sheetStorageFake, mode domain.ImportMode) *domain.RateSheet {
	t.Helper()
	sheet := &domain.RateSheet{
		ID:          "sheet-1",
		Filename:    "rates.csv",
		MimeType:    "text/csv",
		StoragePath: "sheet-1_rates.csv",
		Mode:        mode,
		Status:      domain.SheetUploaded,
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.Create(context.Background(), sheet); err != nil {
		t.Fatalf("seed sheet: %v", err)
	}
	if err := storage.Save(context.Background(), sheet.StoragePath, strings.NewReader("raw sheet bytes")); err != nil {
		t.Fatalf("seed storage: %v", err)
	}
	return sheet
}

func TestImportByIDAugmentsRateTable(t *testing.T) {
	store := newSheetStoreFake()
	storage := newSheetStorageFake()
	sheet := seedUploadedSheet(t, store, storage, domain.ImportAugment)

	table := &importTableFake{}
	parser := &sheetParserFake{records: []domain.RateRecord{
		{HTSCode: "8711.60.00", Destination: "United States", Origin: "China", DutyRate: 30},
		{HTSCode: "8712.00.15", Destination: "United States", DutyRate: 11},
	}}
	uc := NewImportRateSheetUseCase(store, storage, parser, table)

	if err := uc.ImportByID(context.Background(), sheet.ID); err != nil {
		t.Fatalf("ImportByID() error = %v", err)
	}

	if table.upsertCalls != 1 || table.replaceCalls != 0 {
		t.Fatalf("augment mode ran upsert=%d replace=%d", table.upsertCalls, table.replaceCalls)
	}
	if len(table.upserted) != 2 {
		t.Fatalf("upserted %d records, want 2", len(table.upserted))
	}
	if store.imported[sheet.ID] != 2 {
		t.Fatalf("row count = %d, want 2", store.imported[sheet.ID])
	}
	if len(store.statuses) == 0 || store.statuses[0].status != domain.SheetImporting {
		t.Fatalf("sheet never moved through importing: %+v", store.statuses)
	}
}

func TestImportByIDReplaceModeSwapsTable(t *testing.T) {
	store := newSheetStoreFake()
	storage := newSheetStorageFake()
	sheet := seedUploadedSheet(t, store, storage, domain.ImportReplace)

	table := &importTableFake{}
	parser := &sheetParserFake{records: []domain.RateRecord{
		{HTSCode: "8711.60.00", Destination: "United States", DutyRate: 5.3},
	}}
	uc := NewImportRateSheetUseCase(store, storage, parser, table)

	if err := uc.ImportByID(context.Background(), sheet.ID); err != nil {
		t.Fatalf("ImportByID() error = %v", err)
	}
	if table.replaceCalls != 1 || table.upsertCalls != 0 {
		t.Fatalf("replace mode ran upsert=%d replace=%d", table.upsertCalls, table.replaceCalls)
	}
}

func TestImportByIDEmptySheetFails(t *testing.T) {
	store := newSheetStoreFake()
	storage := newSheetStorageFake()
	sheet := seedUploadedSheet(t, store, storage, domain.ImportAugment)

	table := &importTableFake{}
	uc := NewImportRateSheetUseCase(store, storage, &sheetParserFake{}, table)

	err := uc.ImportByID(context.Background(), sheet.ID)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty sheet, got %v", err)
	}
	if table.upsertCalls != 0 && table.replaceCalls != 0 {
		t.Fatalf("rate table touched for an empty sheet")
	}
	last := store.statuses[len(store.statuses)-1]
	if last.status != domain.SheetFailed || last.errMsg == "" {
		t.Fatalf("sheet not marked failed with a message: %+v", last)
	}
}

func TestImportByIDParserFailureMarksFailed(t *testing.T) {
	store := newSheetStoreFake()
	storage := newSheetStorageFake()
	sheet := seedUploadedSheet(t, store, storage, domain.ImportAugment)

	parser := &sheetParserFake{err: errors.New("row 3: duty rate is not a number")}
	uc := NewImportRateSheetUseCase(store, storage, parser, &importTableFake{})

	err := uc.ImportByID(context.Background(), sheet.ID)
	if err == nil || !strings.Contains(err.Error(), "parse rate sheet") {
		t.Fatalf("expected parse failure, got %v", err)
	}

	got, getErr := store.GetByID(context.Background(), sheet.ID)
	if getErr != nil {
		t.Fatalf("GetByID() error = %v", getErr)
	}
	if got.Status != domain.SheetFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if !strings.Contains(got.Error, "duty rate is not a number") {
		t.Fatalf("failure reason not recorded: %q", got.Error)
	}
}

func TestImportByIDUnknownSheet(t *testing.T) {
	store := newSheetStoreFake()
	uc := NewImportRateSheetUseCase(store, newSheetStorageFake(), &sheetParserFake{}, &importTableFake{})

	err := uc.ImportByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
}
