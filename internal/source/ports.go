package source

import (
	"context"

	"fluxo/internal/core"
)

// RowSet is the raw content of a tabular source: the header row and the data
// rows, cells as text exactly as the source exposes them.
type RowSet struct {
	Header []string
	Rows   [][]string
	// Decimal is the separator style of the amount cells when the source knows
	// it (typed spreadsheets). Empty means the configured style applies.
	Decimal core.DecimalStyle
}

// Ports for inbound tabular sources.
type (
	// Reader returns every row of the source. A missing source must be
	// reported as *core.MissingInputError.
	Reader interface {
		ReadRows(ctx context.Context) (RowSet, error)
		// Describe names the source for logs and error panels.
		Describe() string
	}

	// Fingerprinter identifies the current content version of a source
	// without reading it. Equal fingerprints imply equal rows.
	Fingerprinter interface {
		Fingerprint(ctx context.Context) (string, error)
	}

	// Writer archives a row set and returns the archive identifier.
	Writer interface {
		WriteRows(ctx context.Context, origin string, rows RowSet) (id int64, err error)
	}
)
