package domain

import "time"

type SheetStatus string

const (
	SheetUploaded  SheetStatus = "uploaded"
	SheetImporting SheetStatus = "importing"
	SheetImported  SheetStatus = "imported"
	SheetFailed    SheetStatus = "failed"
)

// ImportMode controls whether an imported sheet augments the rate table or
// replaces it wholesale.
type ImportMode string

const (
	ImportAugment ImportMode = "augment"
	ImportReplace ImportMode = "replace"
)

// RateSheet tracks one uploaded duty-rate sheet through the import pipeline.
type RateSheet struct {
	ID          string      `json:"id"`
	Filename    string      `json:"filename"`
	MimeType    string      `json:"mime_type"`
	StoragePath string      `json:"storage_path"`
	Mode        ImportMode  `json:"mode"`
	Status      SheetStatus `json:"status"`
	RowCount    int         `json:"row_count,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
