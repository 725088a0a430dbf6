// Package memory is an in-process tabular source, used by tests and demos.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fluxo/internal/core"
	"fluxo/internal/source"
)

type Store struct {
	mu      sync.Mutex
	name    string
	set     source.RowSet
	present bool
	version int
	reads   int
}

var (
	_ source.Reader        = (*Store)(nil)
	_ source.Fingerprinter = (*Store)(nil)
	_ source.Writer        = (*Store)(nil)
)

// New returns a store holding header and rows.
func New(name string, header []string, rows ...[]string) *Store {
	s := &Store{name: name}
	s.Set(source.RowSet{Header: header, Rows: rows})
	return s
}

// NewMissing returns a store that reports a missing input until Set is called.
func NewMissing(name string) *Store {
	return &Store{name: name}
}

// Set replaces the content and bumps the fingerprint.
func (s *Store) Set(set source.RowSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = copySet(set)
	s.present = true
	s.version++
}

func (s *Store) Describe() string { return s.name }

func (s *Store) ReadRows(_ context.Context) (source.RowSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return source.RowSet{}, &core.MissingInputError{Path: s.name}
	}
	s.reads++
	return copySet(s.set), nil
}

func (s *Store) Fingerprint(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return "", &core.MissingInputError{Path: s.name}
	}
	return fmt.Sprintf("mem:%s:%d", s.name, s.version), nil
}

// WriteRows stores set as the current content and returns its version.
func (s *Store) WriteRows(_ context.Context, _ string, set source.RowSet) (int64, error) {
	s.Set(set)
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(s.version), nil
}

// Reads returns how many times ReadRows succeeded.
func (s *Store) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func copySet(in source.RowSet) source.RowSet {
	out := source.RowSet{Header: append([]string(nil), in.Header...), Decimal: in.Decimal}
	for _, r := range in.Rows {
		out.Rows = append(out.Rows, append([]string(nil), r...))
	}
	return out
}
