package backend

import (
	"context"
	"fmt"

	"fluxo/internal/log"
	"fluxo/internal/source/file"
	gsheet "fluxo/internal/source/google"
	"fluxo/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new source factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentSource),
	}
}

// CreateSource implements Factory.CreateSource
func (f *DefaultFactory) CreateSource(ctx context.Context, config Config) (*SourceResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case FileSource:
		return f.createFileSource(config)
	case SheetsSource:
		return f.createSheetsSource(ctx, config)
	case SQLiteSource:
		return f.createSQLiteSource(config)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", config.Type)
	}
}

func (f *DefaultFactory) createFileSource(config Config) (*SourceResult, error) {
	if config.Encoding != "" && !file.ValidEncoding(config.Encoding) {
		return nil, fmt.Errorf("%w: %s", file.ErrUnknownEncoding, config.Encoding)
	}
	r := file.New(config.DataFile)
	if config.Delimiter != 0 {
		r.Delimiter = config.Delimiter
	}
	if config.Encoding != "" {
		r.Encoding = config.Encoding
	}
	r.Sheet = config.Sheet

	f.logger.Info("Initialized file source",
		"path", config.DataFile,
		"workbook", file.IsWorkbook(config.DataFile))

	return &SourceResult{Source: r}, nil
}

func (f *DefaultFactory) createSheetsSource(ctx context.Context, config Config) (*SourceResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		Range:           config.GoogleSheetRange,
		CredentialsFile: config.GoogleCredentialsFile,
		CredentialsJSON: config.GoogleCredentialsJSON,
	}, config.SheetsOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets source", "source", cli.Describe())

	return &SourceResult{Source: cli}, nil
}

func (f *DefaultFactory) createSQLiteSource(config Config) (*SourceResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite source", "db_path", config.SQLiteDBPath)

	return &SourceResult{
		Source:  repo,
		Cleanup: repo.Close,
	}, nil
}
