package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
)

func rateColumns() []string {
	return []string{"hts_code", "destination", "origin", "duty_rate", "description"}
}

func TestRateTableFindExactOriginTier(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewRateTableRepository(db)
	rows := sqlmock.NewRows(rateColumns()).
		AddRow("8711.60.00", "United States", "China", 30.0, "Electric bicycles")

	mock.ExpectQuery("FROM duty_rates").
		WithArgs("87116000", "United States", "China").
		WillReturnRows(rows)

	rec, err := repo.Find(context.Background(), "8711.60.00", "United States", "China")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if rec.DutyRate != 30.0 || rec.Origin != "China" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRateTableFindFallsBackToDestinationTier(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewRateTableRepository(db)

	mock.ExpectQuery("FROM duty_rates").
		WithArgs("87116000", "United States", "Vietnam").
		WillReturnRows(sqlmock.NewRows(rateColumns()))
	mock.ExpectQuery("FROM duty_rates").
		WithArgs("87116000", "United States").
		WillReturnRows(sqlmock.NewRows(rateColumns()).
			AddRow("8711.60.00", "United States", "China", 30.0, "Electric bicycles"))

	rec, err := repo.Find(context.Background(), "8711 60 00", "United States", "Vietnam")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if rec.HTSCode != "8711.60.00" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRateTableFindMissIsNoMatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewRateTableRepository(db)
	mock.ExpectQuery("FROM duty_rates").
		WillReturnRows(sqlmock.NewRows(rateColumns()))
	mock.ExpectQuery("FROM duty_rates").
		WillReturnRows(sqlmock.NewRows(rateColumns()))

	_, err = repo.Find(context.Background(), "9999.99.99", "Mars", "China")
	if !errors.Is(err, domain.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRateTableFindEmptyCodeIsNoMatchWithoutQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewRateTableRepository(db)
	_, err = repo.Find(context.Background(), "...", "United States", "China")
	if !errors.Is(err, domain.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRateTableUpsertBatchSkipsBlankCodes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewRateTableRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO duty_rates").
		WithArgs("8711.60.00", "87116000", "United States", "China", 30.0, "E-bikes", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	written, err := repo.UpsertBatch(context.Background(), []domain.RateRecord{
		{HTSCode: "8711.60.00", Destination: "United States", Origin: "China", DutyRate: 30, Description: "E-bikes"},
		{HTSCode: "   ", Destination: "United States", DutyRate: 1},
	})
	if err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}
	if written != 1 {
		t.Fatalf("written = %d, want 1", written)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRateTableReplaceAllClearsThenInserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewRateTableRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM duty_rates").
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec("INSERT INTO duty_rates").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	written, err := repo.ReplaceAll(context.Background(), []domain.RateRecord{
		{HTSCode: "8711.60.00", Destination: "United States", DutyRate: 5.3},
	})
	if err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	if written != 1 {
		t.Fatalf("written = %d, want 1", written)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRateTableReplaceAllRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewRateTableRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM duty_rates").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO duty_rates").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	_, err = repo.ReplaceAll(context.Background(), []domain.RateRecord{
		{HTSCode: "8711.60.00", Destination: "United States", DutyRate: 5.3},
	})
	if err == nil {
		t.Fatalf("expected insert failure to surface")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
