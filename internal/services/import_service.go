package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"fluxo/internal/amqp"
	"fluxo/internal/loader"
	"fluxo/internal/source"
)

// maxParallelReads bounds how many exports are parsed at once.
const maxParallelReads = 4

// Publisher announces archived imports.
type Publisher interface {
	PublishImportCompleted(ctx context.Context, msg *amqp.ImportCompletedMessage) error
}

// ImportResult describes one archived export.
type ImportResult struct {
	ID     int64         `json:"id"`
	Origin string        `json:"origin"`
	Report loader.Report `json:"report"`
}

// ImportService archives spreadsheet exports into the row store and
// optionally announces them on the message broker.
type ImportService struct {
	archive   source.Writer
	publisher Publisher
	loader    *loader.Loader
}

// NewImportService creates an import service. publisher may be nil.
func NewImportService(archive source.Writer, publisher Publisher, l *loader.Loader) *ImportService {
	return &ImportService{archive: archive, publisher: publisher, loader: l}
}

// Import validates src and archives its raw rows. Exports that fail header
// validation are rejected; rows the loader would skip are archived as-is and
// reported.
func (s *ImportService) Import(ctx context.Context, src source.Reader) (ImportResult, error) {
	p, err := s.prepare(ctx, src)
	if err != nil {
		return ImportResult{}, err
	}
	return s.store(ctx, p)
}

// ImportAll parses every export concurrently and archives them in order.
// Nothing is archived when any export fails to parse.
func (s *ImportService) ImportAll(ctx context.Context, srcs []source.Reader) ([]ImportResult, error) {
	prepared := make([]prepared, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			p, err := s.prepare(gctx, src)
			if err != nil {
				return err
			}
			prepared[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]ImportResult, 0, len(prepared))
	for _, p := range prepared {
		res, err := s.store(ctx, p)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

type prepared struct {
	origin string
	set    source.RowSet
	report loader.Report
}

func (s *ImportService) prepare(ctx context.Context, src source.Reader) (prepared, error) {
	set, err := src.ReadRows(ctx)
	if err != nil {
		return prepared{}, fmt.Errorf("import %s: %w", src.Describe(), err)
	}
	res, err := s.loader.Normalize(src.Describe(), set)
	if err != nil {
		return prepared{}, fmt.Errorf("import %s: %w", src.Describe(), err)
	}
	return prepared{origin: src.Describe(), set: set, report: res.Report}, nil
}

func (s *ImportService) store(ctx context.Context, p prepared) (ImportResult, error) {
	id, err := s.archive.WriteRows(ctx, p.origin, p.set)
	if err != nil {
		return ImportResult{}, fmt.Errorf("archive %s: %w", p.origin, err)
	}

	slog.InfoContext(ctx, "Export archived",
		"import_id", id,
		"origin", p.origin,
		"rows", p.report.Rows,
		"skipped", p.report.Skipped)

	// Publishing is best effort; the archive is the source of truth.
	if err := s.publish(ctx, id, p); err != nil {
		slog.ErrorContext(ctx, "Failed to publish import message",
			"import_id", id,
			"error", err)
	}

	return ImportResult{ID: id, Origin: p.origin, Report: p.report}, nil
}

func (s *ImportService) publish(ctx context.Context, id int64, p prepared) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No message broker configured, skipping publish", "import_id", id)
		return nil
	}
	msg := amqp.NewImportCompletedMessage(id, p.origin, p.report.Rows, p.report.Transactions, p.report.Skipped)
	return s.publisher.PublishImportCompleted(ctx, msg)
}

// Close releases the archive and the publisher when they hold connections.
func (s *ImportService) Close() error {
	var errs []error
	if c, ok := s.archive.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close archive: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}
