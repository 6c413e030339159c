package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
)

type sheetStoreFake struct {
	created  []*domain.RateSheet
	statuses []statusChange
	imported map[string]int
	byID     map[string]*domain.RateSheet

	createErr error
	statusErr error
	getErr    error
}

type statusChange struct {
	id     string
	status domain.SheetStatus
	errMsg string
}

func newSheetStoreFake() *sheetStoreFake {
	return &sheetStoreFake{
		imported: make(map[string]int),
		byID:     make(map[string]*domain.RateSheet),
	}
}

func (f *sheetStoreFake) Create(_ context.Context, sheet *domain.RateSheet) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, sheet)
	f.byID[sheet.ID] = sheet
	return nil
}

func (f *sheetStoreFake) GetByID(_ context.Context, id string) (*domain.RateSheet, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	sheet, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrSheetNotFound
	}
	return sheet, nil
}

func (f *sheetStoreFake) UpdateStatus(_ context.Context, id string, status domain.SheetStatus, errMessage string) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statuses = append(f.statuses, statusChange{id: id, status: status, errMsg: errMessage})
	if sheet, ok := f.byID[id]; ok {
		sheet.Status = status
		sheet.Error = errMessage
	}
	return nil
}

func (f *sheetStoreFake) MarkImported(_ context.Context, id string, rowCount int) error {
	f.imported[id] = rowCount
	if sheet, ok := f.byID[id]; ok {
		sheet.Status = domain.SheetImported
		sheet.RowCount = rowCount
	}
	return nil
}

type sheetStorageFake struct {
	saved   map[string][]byte
	saveErr error
	openErr error
}

func newSheetStorageFake() *sheetStorageFake {
	return &sheetStorageFake{saved: make(map[string][]byte)}
}

func (f *sheetStorageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.saved[key] = buf
	return nil
}

func (f *sheetStorageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	buf, ok := f.saved[key]
	if !ok {
		return nil, errors.New("no such object: " + key)
	}
	return io.NopCloser(bytes.NewReader(buf)), nil
}

type queueFake struct {
	published  []string
	publishErr error
}

func (f *queueFake) PublishSheetQueued(_ context.Context, sheetID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, sheetID)
	return nil
}

func (f *queueFake) SubscribeSheetQueued(context.Context, func(context.Context, string) error) error {
	return nil
}

func TestUploadStoresMetadataAndQueuesImport(t *testing.T) {
	store := newSheetStoreFake()
	storage := newSheetStorageFake()
	queue := &queueFake{}
	uc := NewIngestRateSheetUseCase(store, storage, queue)

	body := strings.NewReader("htscode,destination,dutyrate\n8711.60.00,United States,30\n")
	sheet, err := uc.Upload(context.Background(), "q3 rates (final).csv", "text/csv", domain.ImportAugment, body)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if sheet.ID == "" {
		t.Fatalf("sheet must be assigned an id")
	}
	if sheet.Status != domain.SheetUploaded {
		t.Fatalf("status = %s, want uploaded", sheet.Status)
	}
	if !strings.HasPrefix(sheet.StoragePath, sheet.ID+"_") {
		t.Fatalf("storage key %q not namespaced by sheet id", sheet.StoragePath)
	}
	if strings.ContainsAny(sheet.StoragePath, " ()") {
		t.Fatalf("storage key %q carries unsanitized characters", sheet.StoragePath)
	}

	if _, ok := storage.saved[sheet.StoragePath]; !ok {
		t.Fatalf("sheet body not written to storage")
	}
	if len(store.created) != 1 || store.created[0].ID != sheet.ID {
		t.Fatalf("metadata row not created: %+v", store.created)
	}
	if len(queue.published) != 1 || queue.published[0] != sheet.ID {
		t.Fatalf("import event not published: %v", queue.published)
	}
}

func TestUploadDefaultsUnknownModeToAugment(t *testing.T) {
	uc := NewIngestRateSheetUseCase(newSheetStoreFake(), newSheetStorageFake(), &queueFake{})

	sheet, err := uc.Upload(context.Background(), "rates.csv", "text/csv", domain.ImportMode("sideways"), strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if sheet.Mode != domain.ImportAugment {
		t.Fatalf("mode = %s, want augment", sheet.Mode)
	}
}

func TestUploadStorageFailureStopsPipeline(t *testing.T) {
	store := newSheetStoreFake()
	storage := newSheetStorageFake()
	storage.saveErr = errors.New("disk full")
	queue := &queueFake{}
	uc := NewIngestRateSheetUseCase(store, storage, queue)

	_, err := uc.Upload(context.Background(), "rates.csv", "text/csv", domain.ImportReplace, strings.NewReader("x"))
	if err == nil {
		t.Fatalf("expected storage failure to surface")
	}
	if len(store.created) != 0 {
		t.Fatalf("metadata created despite storage failure")
	}
	if len(queue.published) != 0 {
		t.Fatalf("import event published despite storage failure")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"q3 rates (final).csv", "q3_rates__final_.csv"},
		{"../../etc/passwd", "passwd"},
		{"duty-rates_2026.xlsx", "duty-rates_2026.xlsx"},
		{"", "ratesheet.bin"},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
