package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fluxo/internal/core"
	"fluxo/internal/source"

	_ "modernc.org/sqlite"
)

// Import describes one archived spreadsheet export.
type Import struct {
	ID        int64
	Origin    string
	RowCount  int
	CreatedAt time.Time
}

// SQLiteRepository archives raw export rows so the loader can normalize them
// exactly as it does for the original file.
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

var (
	_ source.Reader        = (*SQLiteRepository)(nil)
	_ source.Fingerprinter = (*SQLiteRepository)(nil)
	_ source.Writer        = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Describe() string {
	return "sqlite:" + r.path
}

// WriteRows archives a row set as a new import inside one transaction.
func (r *SQLiteRepository) WriteRows(ctx context.Context, origin string, set source.RowSet) (int64, error) {
	header, err := json.Marshal(set.Header)
	if err != nil {
		return 0, fmt.Errorf("encode header: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO imports (origin, header, decimal, row_count) VALUES (?, ?, ?, ?)`,
		origin, string(header), string(set.Decimal), len(set.Rows))
	if err != nil {
		return 0, fmt.Errorf("create import: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("import id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO import_rows (import_id, row_no, cells) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare row insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range set.Rows {
		cells, err := json.Marshal(row)
		if err != nil {
			return 0, fmt.Errorf("encode row %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, id, i+1, string(cells)); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Import archived to SQLite",
		"id", id,
		"origin", origin,
		"rows", len(set.Rows))

	return id, nil
}

// Latest returns the most recent import. It reports a MissingInputError when
// nothing was imported yet.
func (r *SQLiteRepository) Latest(ctx context.Context) (Import, error) {
	var imp Import
	err := r.db.QueryRowContext(ctx,
		`SELECT id, origin, row_count, created_at FROM imports ORDER BY id DESC LIMIT 1`).
		Scan(&imp.ID, &imp.Origin, &imp.RowCount, &imp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Import{}, &core.MissingInputError{Path: r.Describe(), Err: err}
	}
	if err != nil {
		return Import{}, fmt.Errorf("get latest import: %w", err)
	}
	return imp, nil
}

// ListImports returns the archived imports, newest first.
func (r *SQLiteRepository) ListImports(ctx context.Context) ([]Import, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, origin, row_count, created_at FROM imports ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	var out []Import
	for rows.Next() {
		var imp Import
		if err := rows.Scan(&imp.ID, &imp.Origin, &imp.RowCount, &imp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		out = append(out, imp)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Fingerprint(ctx context.Context) (string, error) {
	imp, err := r.Latest(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s|%d", r.Describe(), imp.ID), nil
}

// ReadRows returns the rows of the latest import.
func (r *SQLiteRepository) ReadRows(ctx context.Context) (source.RowSet, error) {
	imp, err := r.Latest(ctx)
	if err != nil {
		return source.RowSet{}, err
	}
	return r.ReadImport(ctx, imp.ID)
}

// ReadImport returns the rows of a given import in their original order.
func (r *SQLiteRepository) ReadImport(ctx context.Context, id int64) (source.RowSet, error) {
	var header, decimal string
	err := r.db.QueryRowContext(ctx, `SELECT header, decimal FROM imports WHERE id = ?`, id).
		Scan(&header, &decimal)
	if errors.Is(err, sql.ErrNoRows) {
		return source.RowSet{}, &core.MissingInputError{Path: fmt.Sprintf("%s#%d", r.Describe(), id), Err: err}
	}
	if err != nil {
		return source.RowSet{}, fmt.Errorf("get import %d: %w", id, err)
	}

	set := source.RowSet{Decimal: core.DecimalStyle(decimal)}
	if err := json.Unmarshal([]byte(header), &set.Header); err != nil {
		return source.RowSet{}, fmt.Errorf("decode header: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT cells FROM import_rows WHERE import_id = ? ORDER BY row_no`, id)
	if err != nil {
		return source.RowSet{}, fmt.Errorf("list rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cells string
		if err := rows.Scan(&cells); err != nil {
			return source.RowSet{}, fmt.Errorf("scan row: %w", err)
		}
		var row []string
		if err := json.Unmarshal([]byte(cells), &row); err != nil {
			return source.RowSet{}, fmt.Errorf("decode row: %w", err)
		}
		set.Rows = append(set.Rows, row)
	}
	return set, rows.Err()
}
