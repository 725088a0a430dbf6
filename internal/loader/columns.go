package loader

import (
	"fmt"
	"strings"

	"fluxo/internal/core"
)

// Column names of the export contract, without the "Content." prefix.
const (
	ColDate     = "Data"
	ColGroup    = "Grupo"
	ColSubgroup = "Subgrupo"
	ColNature   = "Natureza"
	ColSupplier = "FORNECEDOR"
	ColInflow   = "Entrada (R$)"
	ColOutflow  = "Saída (R$)"
	ColAccount  = "Name"
)

const exportPrefix = "content."

// RequiredColumns lists the columns a source must carry.
var RequiredColumns = []string{ColDate, ColGroup, ColSubgroup, ColNature, ColSupplier, ColInflow, ColOutflow}

// aliases are accepted spellings for a column besides its canonical name.
var aliases = map[string][]string{
	ColOutflow: {"Saida (R$)"},
}

// normalizeHeader trims a header cell and drops the export prefix and any BOM.
func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	if len(h) >= len(exportPrefix) && strings.EqualFold(h[:len(exportPrefix)], exportPrefix) {
		h = strings.TrimSpace(h[len(exportPrefix):])
	}
	return h
}

// headerMap maps every known column to its index. Required columns that are
// absent are reported together in one MalformedDataError.
func headerMap(header []string) (map[string]int, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}

	columns := make(map[string]int)
	var missing []string
	for _, column := range append(append([]string(nil), RequiredColumns...), ColAccount) {
		idx := indexOf(normalized, column, aliases[column])
		if idx >= 0 {
			columns[column] = idx
			continue
		}
		if column != ColAccount {
			missing = append(missing, column)
		}
	}

	if len(missing) > 0 {
		return nil, &core.MalformedDataError{
			Column: strings.Join(missing, ", "),
			Reason: fmt.Sprintf("required column not found in header (got %d columns)", len(header)),
		}
	}
	return columns, nil
}

func indexOf(header []string, column string, alt []string) int {
	for _, name := range append([]string{column}, alt...) {
		for i, field := range header {
			if strings.EqualFold(name, field) {
				return i
			}
		}
	}
	return -1
}

func safeGet(row []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(row) {
		return "", false
	}
	return row[idx], true
}
