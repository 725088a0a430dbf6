package core

import (
	"errors"
	"fmt"
)

// MissingInputError reports that the tabular source does not exist.
// It is recoverable: placing the file and refreshing the page clears it.
type MissingInputError struct {
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("input file not found: %s", e.Path)
}

func (e *MissingInputError) Unwrap() error { return e.Err }

// MalformedDataError reports a column or row that fails validation.
// Row is zero for header-level problems.
type MalformedDataError struct {
	Row    int
	Column string
	Reason string
	Err    error
}

func (e *MalformedDataError) Error() string {
	switch {
	case e.Row == 0 && e.Column != "":
		return fmt.Sprintf("malformed data: column %q: %s", e.Column, e.Reason)
	case e.Column != "":
		return fmt.Sprintf("malformed data: row %d, column %q: %s", e.Row, e.Column, e.Reason)
	default:
		return fmt.Sprintf("malformed data: row %d: %s", e.Row, e.Reason)
	}
}

func (e *MalformedDataError) Unwrap() error { return e.Err }

// IsMissingInput reports whether err is, or wraps, a MissingInputError.
func IsMissingInput(err error) bool {
	var mi *MissingInputError
	return errors.As(err, &mi)
}

// IsMalformedData reports whether err is, or wraps, a MalformedDataError.
func IsMalformedData(err error) bool {
	var md *MalformedDataError
	return errors.As(err, &md)
}
