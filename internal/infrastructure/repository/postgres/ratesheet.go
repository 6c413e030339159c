package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
)

// RateSheetRepository persists the import state of uploaded rate sheets.
type RateSheetRepository struct {
	db *sql.DB
}

func NewRateSheetRepository(db *sql.DB) *RateSheetRepository {
	return &RateSheetRepository{db: db}
}

func (r *RateSheetRepository) Create(ctx context.Context, sheet *domain.RateSheet) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO rate_sheets (id, filename, mime_type, storage_path, mode, status, row_count, error_message, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		sheet.ID, sheet.Filename, sheet.MimeType, sheet.StoragePath, string(sheet.Mode),
		string(sheet.Status), sheet.RowCount, sheet.Error, sheet.CreatedAt, sheet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert rate sheet: %w", err)
	}
	return nil
}

func (r *RateSheetRepository) GetByID(ctx context.Context, id string) (*domain.RateSheet, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, mime_type, storage_path, mode, status, row_count, COALESCE(error_message, ''), created_at, updated_at
FROM rate_sheets
WHERE id = $1
`, id)

	var sheet domain.RateSheet
	var mode, status string

	err := row.Scan(
		&sheet.ID, &sheet.Filename, &sheet.MimeType, &sheet.StoragePath, &mode,
		&status, &sheet.RowCount, &sheet.Error, &sheet.CreatedAt, &sheet.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSheetNotFound, "get rate sheet", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan rate sheet: %w", err)
	}

	sheet.Mode = domain.ImportMode(mode)
	sheet.Status = domain.SheetStatus(status)
	return &sheet, nil
}

func (r *RateSheetRepository) UpdateStatus(ctx context.Context, id string, status domain.SheetStatus, errMessage string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE rate_sheets
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update rate sheet status: %w", err)
	}
	return nil
}

func (r *RateSheetRepository) MarkImported(ctx context.Context, id string, rowCount int) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE rate_sheets
SET status = $2, row_count = $3, error_message = '', updated_at = $4
WHERE id = $1
`, id, string(domain.SheetImported), rowCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark rate sheet imported: %w", err)
	}
	return nil
}

// List returns sheets newest first, capped at limit.
func (r *RateSheetRepository) List(ctx context.Context, limit int) ([]domain.RateSheet, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, filename, mime_type, storage_path, mode, status, row_count, COALESCE(error_message, ''), created_at, updated_at
FROM rate_sheets
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list rate sheets: %w", err)
	}
	defer rows.Close()

	var sheets []domain.RateSheet
	for rows.Next() {
		var sheet domain.RateSheet
		var mode, status string
		if err := rows.Scan(
			&sheet.ID, &sheet.Filename, &sheet.MimeType, &sheet.StoragePath, &mode,
			&status, &sheet.RowCount, &sheet.Error, &sheet.CreatedAt, &sheet.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan rate sheet row: %w", err)
		}
		sheet.Mode = domain.ImportMode(mode)
		sheet.Status = domain.SheetStatus(status)
		sheets = append(sheets, sheet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rate sheets: %w", err)
	}
	return sheets, nil
}
