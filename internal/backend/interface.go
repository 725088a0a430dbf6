package backend

import (
	"context"

	goption "google.golang.org/api/option"

	"fluxo/internal/source"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// SourceResult contains the source instance and optional cleanup function
type SourceResult struct {
	Source  source.Reader
	Cleanup CleanupFunc
}

// Factory creates tabular sources based on configuration
type Factory interface {
	CreateSource(ctx context.Context, config Config) (*SourceResult, error)
}

// Config holds configuration for source creation
type Config struct {
	Type SourceType

	// File specific
	DataFile  string
	Delimiter rune
	Encoding  string
	Sheet     string

	// Google Sheets specific
	GoogleSpreadsheetID   string
	GoogleSheetRange      string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string
	SheetsOptions         []goption.ClientOption

	// SQLite specific
	SQLiteDBPath string
}

// SourceType represents the type of tabular source
type SourceType string

const (
	FileSource   SourceType = "file"
	SheetsSource SourceType = "sheets"
	SQLiteSource SourceType = "sqlite"
)

// String implements fmt.Stringer
func (st SourceType) String() string {
	return string(st)
}

// IsValid returns true if the source type is valid
func (st SourceType) IsValid() bool {
	switch st {
	case FileSource, SheetsSource, SQLiteSource:
		return true
	default:
		return false
	}
}
