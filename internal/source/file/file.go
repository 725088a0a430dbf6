// Package file reads spreadsheet exports from disk: delimited text (CSV) and
// Excel workbooks (XLSX).
package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"fluxo/internal/core"
	"fluxo/internal/source"
)

// Reader reads a CSV or XLSX file. The format is chosen by extension.
type Reader struct {
	Path      string
	Delimiter rune
	// Encoding of CSV files: utf-8 (default), windows-1252 or iso-8859-1.
	Encoding string
	// Sheet selects the XLSX worksheet; empty means the first one.
	Sheet string
}

var (
	_ source.Reader        = (*Reader)(nil)
	_ source.Fingerprinter = (*Reader)(nil)
)

// ErrUnknownEncoding is returned for an unsupported CSV_ENCODING.
var ErrUnknownEncoding = errors.New("unknown encoding")

// New returns a Reader with the export defaults (semicolon, UTF-8).
func New(path string) *Reader {
	return &Reader{Path: path, Delimiter: ';', Encoding: "utf-8"}
}

func (r *Reader) Describe() string { return r.Path }

// Fingerprint returns path, size and modification time of the file.
func (r *Reader) Fingerprint(_ context.Context) (string, error) {
	st, err := r.stat()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s|%d|%d", r.Path, st.Size(), st.ModTime().UnixNano()), nil
}

func (r *Reader) ReadRows(ctx context.Context) (source.RowSet, error) {
	if _, err := r.stat(); err != nil {
		return source.RowSet{}, err
	}
	if err := ctx.Err(); err != nil {
		return source.RowSet{}, err
	}
	if IsWorkbook(r.Path) {
		return r.readWorkbook()
	}
	return r.readDelimited()
}

// IsWorkbook reports whether path names an Excel workbook.
func IsWorkbook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

func (r *Reader) stat() (fs.FileInfo, error) {
	st, err := os.Stat(r.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &core.MissingInputError{Path: r.Path, Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", r.Path, err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s is a directory", r.Path)
	}
	return st, nil
}

func (r *Reader) readDelimited() (source.RowSet, error) {
	dec, err := decoderFor(r.Encoding)
	if err != nil {
		return source.RowSet{}, err
	}

	f, err := os.Open(r.Path)
	if err != nil {
		return source.RowSet{}, fmt.Errorf("opening a csv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(transform.NewReader(f, dec))
	reader.Comma = r.delimiter()
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return source.RowSet{}, nil
	}
	if err != nil {
		return source.RowSet{}, fmt.Errorf("reading CSV header: %w", err)
	}

	set := source.RowSet{Header: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return source.RowSet{}, fmt.Errorf("reading CSV row: %w", err)
		}
		set.Rows = append(set.Rows, row)
	}
	return set, nil
}

func (r *Reader) delimiter() rune {
	if r.Delimiter == 0 {
		return ';'
	}
	return r.Delimiter
}

// decoderFor maps a CSV_ENCODING value to a decoder. UTF-8 input may carry a BOM.
func decoderFor(name string) (transform.Transformer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}

// ValidEncoding reports whether name is a supported CSV encoding.
func ValidEncoding(name string) bool {
	_, err := decoderFor(name)
	return err == nil
}

// readWorkbook reads raw cell values so numbers keep a point decimal separator
// and dates stay as Excel serials or text.
func (r *Reader) readWorkbook() (source.RowSet, error) {
	f, err := excelize.OpenFile(r.Path)
	if err != nil {
		return source.RowSet{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := r.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return source.RowSet{}, fmt.Errorf("workbook %s has no sheets", r.Path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return source.RowSet{}, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return source.RowSet{Decimal: core.DecimalPoint}, nil
	}
	set := source.RowSet{Header: rows[0], Decimal: core.DecimalPoint}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		set.Rows = append(set.Rows, row)
	}
	return set, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
