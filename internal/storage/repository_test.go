package storage

import (
	"context"
	"path/filepath"
	"testing"

	"fluxo/internal/core"
	"fluxo/internal/source"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "fluxo.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepository_EmptyIsMissingInput(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.ReadRows(ctx); !core.IsMissingInput(err) {
		t.Fatalf("expected missing input, got %v", err)
	}
	if _, err := repo.Fingerprint(ctx); !core.IsMissingInput(err) {
		t.Fatalf("expected missing input, got %v", err)
	}
}

func TestRepository_WriteAndReadLatest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := source.RowSet{
		Header: []string{"Content.Data", "Content.Natureza", "Content.Entrada (R$)"},
		Rows: [][]string{
			{"05/01/2024", "SALÁRIO", "3.000,00"},
			{"06/01/2024", "ALUGUEL", ""},
		},
	}
	id1, err := repo.WriteRows(ctx, "Fluxo Financeiro.csv", first)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	fp1, _ := repo.Fingerprint(ctx)

	second := source.RowSet{Header: []string{"Data"}, Rows: [][]string{{"45296"}}, Decimal: core.DecimalPoint}
	id2, err := repo.WriteRows(ctx, "fluxo.xlsx", second)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if id2 <= id1 {
		t.Fatalf("expected increasing ids, got %d then %d", id1, id2)
	}
	fp2, _ := repo.Fingerprint(ctx)
	if fp1 == fp2 {
		t.Fatalf("fingerprint should change with a new import")
	}

	latest, err := repo.ReadRows(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if latest.Decimal != core.DecimalPoint || len(latest.Rows) != 1 || latest.Rows[0][0] != "45296" {
		t.Fatalf("unexpected latest rows %+v", latest)
	}

	old, err := repo.ReadImport(ctx, id1)
	if err != nil {
		t.Fatalf("read import: %v", err)
	}
	if len(old.Rows) != 2 || old.Rows[1][1] != "ALUGUEL" || old.Rows[1][2] != "" {
		t.Fatalf("unexpected archived rows %+v", old.Rows)
	}
	if old.Header[0] != "Content.Data" {
		t.Fatalf("unexpected header %v", old.Header)
	}

	imports, err := repo.ListImports(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(imports) != 2 || imports[0].ID != id2 || imports[1].RowCount != 2 {
		t.Fatalf("unexpected imports %+v", imports)
	}
}

func TestRepository_ReadUnknownImport(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.ReadImport(context.Background(), 42); !core.IsMissingInput(err) {
		t.Fatalf("expected missing input, got %v", err)
	}
}
