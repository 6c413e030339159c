package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
)

// RateTableRepository stores verified duty rates. Lookups normalize the HTS
// code and match destination and origin case-insensitively; a record with an
// empty origin applies to every origin.
type RateTableRepository struct {
	db *sql.DB
}

func NewRateTableRepository(db *sql.DB) *RateTableRepository {
	return &RateTableRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *RateTableRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026080401)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS duty_rates (
	id BIGSERIAL PRIMARY KEY,
	hts_code TEXT NOT NULL,
	hts_normalized TEXT NOT NULL,
	destination TEXT NOT NULL,
	origin TEXT NOT NULL DEFAULT '',
	duty_rate DOUBLE PRECISION NOT NULL,
	description TEXT,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_duty_rates_key
	ON duty_rates(hts_normalized, LOWER(destination), LOWER(origin));
CREATE INDEX IF NOT EXISTS idx_duty_rates_lookup
	ON duty_rates(hts_normalized, LOWER(destination));

CREATE TABLE IF NOT EXISTS rate_sheets (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	mode TEXT NOT NULL,
	status TEXT NOT NULL,
	row_count INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rate_sheets_created_at ON rate_sheets(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Find runs the two-tier match: exact origin first (with origin-less records
// acting as wildcards), then destination-only. Absent is domain.ErrNoMatch.
func (r *RateTableRepository) Find(ctx context.Context, code, destination, origin string) (*domain.RateRecord, error) {
	normalized := domain.NormalizeHTSCode(code)
	if normalized == "" {
		return nil, domain.ErrNoMatch
	}

	rec, err := r.findOne(ctx, `
SELECT hts_code, destination, origin, duty_rate, COALESCE(description, '')
FROM duty_rates
WHERE hts_normalized = $1
  AND LOWER(destination) = LOWER($2)
  AND (origin = '' OR LOWER(origin) = LOWER($3))
ORDER BY (origin <> '') DESC, id
LIMIT 1
`, normalized, destination, origin)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find rate by origin: %w", err)
	}

	rec, err = r.findOne(ctx, `
SELECT hts_code, destination, origin, duty_rate, COALESCE(description, '')
FROM duty_rates
WHERE hts_normalized = $1
  AND LOWER(destination) = LOWER($2)
ORDER BY id
LIMIT 1
`, normalized, destination)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoMatch
		}
		return nil, fmt.Errorf("find rate by destination: %w", err)
	}
	return rec, nil
}

func (r *RateTableRepository) findOne(ctx context.Context, query string, args ...any) (*domain.RateRecord, error) {
	var rec domain.RateRecord
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&rec.HTSCode, &rec.Destination, &rec.Origin, &rec.DutyRate, &rec.Description,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpsertBatch inserts records, overwriting any row with the same normalized
// code, destination, and origin. Returns the number of rows written.
func (r *RateTableRepository) UpsertBatch(ctx context.Context, records []domain.RateRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	written, err := insertRecords(ctx, tx, records)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert tx: %w", err)
	}
	return written, nil
}

// ReplaceAll swaps the whole rate table for the given records in one
// transaction.
func (r *RateTableRepository) ReplaceAll(ctx context.Context, records []domain.RateRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM duty_rates`); err != nil {
		return 0, fmt.Errorf("clear rate table: %w", err)
	}

	written, err := insertRecords(ctx, tx, records)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit replace tx: %w", err)
	}
	return written, nil
}

func insertRecords(ctx context.Context, tx *sql.Tx, records []domain.RateRecord) (int, error) {
	now := time.Now().UTC()
	written := 0
	for _, rec := range records {
		normalized := domain.NormalizeHTSCode(rec.HTSCode)
		if normalized == "" {
			continue
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO duty_rates (hts_code, hts_normalized, destination, origin, duty_rate, description, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (hts_normalized, LOWER(destination), LOWER(origin))
DO UPDATE SET hts_code = EXCLUDED.hts_code, duty_rate = EXCLUDED.duty_rate,
	description = EXCLUDED.description, updated_at = EXCLUDED.updated_at
`,
			rec.HTSCode, normalized, rec.Destination, rec.Origin, rec.DutyRate, rec.Description, now,
		)
		if err != nil {
			return 0, fmt.Errorf("insert duty rate %s: %w", rec.HTSCode, err)
		}
		written++
	}
	return written, nil
}
