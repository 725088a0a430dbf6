package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fluxo/internal/core"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestReadRowsCSVWithBOM(t *testing.T) {
	data := "\ufeffContent.Data;Content.Grupo;Content.Entrada (R$)\n05/01/2024;Receitas;\"1.234,56\"\n"
	r := New(writeFile(t, "fluxo.csv", []byte(data)))

	set, err := r.ReadRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Content.Data", "Content.Grupo", "Content.Entrada (R$)"}, set.Header)
	require.Len(t, set.Rows, 1)
	assert.Equal(t, "1.234,56", set.Rows[0][2])
	assert.Empty(t, set.Decimal)
}

func TestReadRowsWindows1252(t *testing.T) {
	// "Saída" with í encoded as 0xED
	data := []byte("Data;Sa\xedda (R$)\n05/01/2024;10,00\n")
	r := New(writeFile(t, "legacy.csv", data))
	r.Encoding = "windows-1252"

	set, err := r.ReadRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Saída (R$)", set.Header[1])
}

func TestReadRowsHeaderOnly(t *testing.T) {
	r := New(writeFile(t, "empty.csv", []byte("Data;Grupo\n")))
	set, err := r.ReadRows(context.Background())
	require.NoError(t, err)
	assert.Len(t, set.Header, 2)
	assert.Empty(t, set.Rows)
}

func TestReadRowsCustomDelimiter(t *testing.T) {
	r := New(writeFile(t, "comma.csv", []byte("Data,Grupo\n05/01/2024,A\n")))
	r.Delimiter = ','
	set, err := r.ReadRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"05/01/2024", "A"}}, set.Rows)
}

func TestReadRowsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Fluxo Financeiro.csv")
	_, err := New(path).ReadRows(context.Background())
	require.Error(t, err)

	var mi *core.MissingInputError
	require.ErrorAs(t, err, &mi)
	assert.Equal(t, path, mi.Path)

	_, err = New(path).Fingerprint(context.Background())
	assert.True(t, core.IsMissingInput(err))
}

func TestUnknownEncoding(t *testing.T) {
	r := New(writeFile(t, "x.csv", []byte("Data\n")))
	r.Encoding = "ebcdic"
	_, err := r.ReadRows(context.Background())
	assert.ErrorIs(t, err, ErrUnknownEncoding)
	assert.False(t, ValidEncoding("ebcdic"))
	assert.True(t, ValidEncoding("latin1"))
}

func TestFingerprintChangesWithContent(t *testing.T) {
	path := writeFile(t, "f.csv", []byte("Data\n"))
	r := New(path)
	before, err := r.Fingerprint(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("Data\n01/01/2024\n"), 0o600))
	after, err := r.Fingerprint(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestReadRowsWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Fluxo"
	f.SetSheetName("Sheet1", sheet)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Data", "Grupo", "Entrada (R$)"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"05/01/2024", "Receitas", 1234.5}))
	path := filepath.Join(t.TempDir(), "fluxo.xlsx")
	require.NoError(t, f.SaveAs(path))

	r := New(path)
	set, err := r.ReadRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.DecimalPoint, set.Decimal)
	assert.Equal(t, []string{"Data", "Grupo", "Entrada (R$)"}, set.Header)
	require.Len(t, set.Rows, 1)
	assert.Equal(t, "1234.5", set.Rows[0][2])
	assert.True(t, IsWorkbook(path))
}
