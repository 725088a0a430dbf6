package backend

import (
	"context"
	"path/filepath"
	"testing"

	goption "google.golang.org/api/option"

	"fluxo/internal/config"
	"fluxo/internal/core"
	"fluxo/internal/source"
	"fluxo/internal/source/file"
	"fluxo/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{
		DataSource:       "file",
		DataFile:         "Fluxo Financeiro.csv",
		CSVDelimiter:     ",",
		CSVEncoding:      "windows-1252",
		XLSXSheet:        "Plan1",
		GoogleSheetRange: "A:I",
		SQLiteDBPath:     "./data/fluxo.db",
	}

	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != FileSource {
		t.Errorf("Type = %v, want file", cfg.Type)
	}
	if cfg.Delimiter != ',' {
		t.Errorf("Delimiter = %q, want ','", cfg.Delimiter)
	}
	if cfg.Encoding != "windows-1252" || cfg.Sheet != "Plan1" {
		t.Errorf("unexpected file settings: %+v", cfg)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("FromAppConfig(nil) error = nil, want error")
	}
	if _, err := FromAppConfig(&config.Config{DataSource: "ftp"}); err == nil {
		t.Error("FromAppConfig(ftp) error = nil, want error")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"file", Config{Type: FileSource, DataFile: "a.csv"}, false},
		{"file without path", Config{Type: FileSource}, true},
		{"sheets", Config{Type: SheetsSource, GoogleSpreadsheetID: "abc"}, false},
		{"sheets without id", Config{Type: SheetsSource}, true},
		{"sqlite", Config{Type: SQLiteSource, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteSource}, true},
		{"unknown", Config{Type: "memory"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetSourceTypeStrings(t *testing.T) {
	got := GetSourceTypeStrings()
	want := []string{"file", "sheets", "sqlite"}
	if len(got) != len(want) {
		t.Fatalf("GetSourceTypeStrings() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GetSourceTypeStrings()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCreateFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")
	res, err := NewFactory(nil).CreateSource(context.Background(), Config{
		Type:      FileSource,
		DataFile:  path,
		Delimiter: ',',
		Encoding:  "latin1",
	})
	if err != nil {
		t.Fatalf("CreateSource() error = %v", err)
	}
	if res.Cleanup != nil {
		t.Error("file source should not need cleanup")
	}

	r, ok := res.Source.(*file.Reader)
	if !ok {
		t.Fatalf("Source = %T, want *file.Reader", res.Source)
	}
	if r.Delimiter != ',' || r.Encoding != "latin1" {
		t.Errorf("unexpected reader settings: %+v", r)
	}

	_, err = res.Source.ReadRows(context.Background())
	if !core.IsMissingInput(err) {
		t.Errorf("ReadRows() error = %v, want missing input", err)
	}
}

func TestCreateFileSourceRejectsEncoding(t *testing.T) {
	_, err := NewFactory(nil).CreateSource(context.Background(), Config{
		Type:     FileSource,
		DataFile: "a.csv",
		Encoding: "ebcdic",
	})
	if err == nil {
		t.Error("CreateSource() error = nil, want unknown encoding")
	}
}

func TestCreateSheetsSource(t *testing.T) {
	res, err := NewFactory(nil).CreateSource(context.Background(), Config{
		Type:                SheetsSource,
		GoogleSpreadsheetID: "sheet-id",
		GoogleSheetRange:    "Fluxo!A:I",
		SheetsOptions:       []goption.ClientOption{goption.WithoutAuthentication(), goption.WithEndpoint("http://127.0.0.1:0/")},
	})
	if err != nil {
		t.Fatalf("CreateSource() error = %v", err)
	}
	if got := res.Source.Describe(); got != "sheets:sheet-id!Fluxo!A:I" {
		t.Errorf("Describe() = %q", got)
	}
}

func TestCreateSQLiteSource(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fluxo.db")
	res, err := NewFactory(nil).CreateSource(context.Background(), Config{Type: SQLiteSource, SQLiteDBPath: dbPath})
	if err != nil {
		t.Fatalf("CreateSource() error = %v", err)
	}
	defer res.Cleanup()

	if _, ok := res.Source.(*storage.SQLiteRepository); !ok {
		t.Fatalf("Source = %T, want *storage.SQLiteRepository", res.Source)
	}
	if _, ok := res.Source.(source.Fingerprinter); !ok {
		t.Error("sqlite source should be fingerprinted")
	}

	_, err = res.Source.ReadRows(context.Background())
	if !core.IsMissingInput(err) {
		t.Errorf("ReadRows() on empty archive error = %v, want missing input", err)
	}
}
