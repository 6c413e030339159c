package sheetparse

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
)

// Parser turns uploaded rate sheets into rate records. The format is chosen
// by file extension: .xlsx sheets go through excelize, everything else is
// treated as CSV. Columns are matched by header name, so column order does
// not matter.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(ctx context.Context, sheet *domain.RateSheet, data io.Reader) ([]domain.RateRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(sheet.Filename)) {
	case ".xlsx":
		return parseXLSX(data)
	default:
		return parseCSV(data)
	}
}

func parseCSV(data io.Reader) ([]domain.RateRecord, error) {
	reader := csv.NewReader(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rowsToRecords(rows)
}

func parseXLSX(data io.Reader) ([]domain.RateRecord, error) {
	book, err := excelize.OpenReader(data)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx has no sheets")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return rowsToRecords(rows)
}

// columnIndex maps known header spellings to record fields.
type columnIndex struct {
	code, destination, rate, description, origin int
}

func rowsToRecords(rows [][]string) ([]domain.RateRecord, error) {
	if len(rows) < 2 {
		return nil, nil
	}

	cols, err := indexColumns(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]domain.RateRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		code := cell(row, cols.code)
		if strings.TrimSpace(code) == "" {
			continue
		}
		rateText := cell(row, cols.rate)
		rate, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(rateText), "%"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: duty rate %q is not a number", i+2, rateText)
		}
		records = append(records, domain.RateRecord{
			HTSCode:     strings.TrimSpace(code),
			Destination: strings.TrimSpace(cell(row, cols.destination)),
			Origin:      strings.TrimSpace(cell(row, cols.origin)),
			DutyRate:    rate,
			Description: strings.TrimSpace(cell(row, cols.description)),
		})
	}
	return records, nil
}

func indexColumns(header []string) (columnIndex, error) {
	cols := columnIndex{code: -1, destination: -1, rate: -1, description: -1, origin: -1}
	for i, name := range header {
		switch normalizeHeader(name) {
		case "htscode", "htscodes", "hscode", "code":
			cols.code = i
		case "destination", "destinationcountry":
			cols.destination = i
		case "dutyrate", "rate":
			cols.rate = i
		case "description":
			cols.description = i
		case "origin", "origincountry":
			cols.origin = i
		}
	}
	if cols.code < 0 || cols.destination < 0 || cols.rate < 0 {
		return cols, fmt.Errorf("sheet header must name htsCode, destination and dutyRate columns, got %v", header)
	}
	return cols, nil
}

func normalizeHeader(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return -1
		}
	}, name)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
