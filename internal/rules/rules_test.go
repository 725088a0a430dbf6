package rules

import (
	"os"
	"path/filepath"
	"testing"

	"fluxo/internal/core"
)

func TestClassifyDefaults(t *testing.T) {
	r := Default()
	cases := []struct {
		subgroup, nature string
		want             core.Kind
	}{
		{"FINANCEIRO", "TRANSF. ENTRE CONTAS", core.FinancialInternal},
		{"OUTROS", "TRANSFERÊNCIA ENTRE CONTAS BANCO X", core.FinancialInternal},
		{"FINANCEIRO", "EMPRÉSTIMO SÓCIO", core.FinancialInternal},
		{"ADMINISTRATIVO", "EMPRÉSTIMO SÓCIO", core.Operational},
		{"FINANCEIRO", "TARIFA BANCÁRIA", core.FinancialExternal},
		{"ADMINISTRATIVO", "ALUGUEL", core.Operational},
	}
	for _, tc := range cases {
		if got := r.Classify(tc.subgroup, tc.nature); got != tc.want {
			t.Fatalf("Classify(%q, %q) = %s, want %s", tc.subgroup, tc.nature, got, tc.want)
		}
	}
}

func TestContributionAndAmortization(t *testing.T) {
	r := Default()
	if !r.IsContribution("APORTE DE CAPITAL") || !r.IsContribution("SCP 2024") {
		t.Fatalf("expected contribution match")
	}
	if r.IsContribution("ALUGUEL") {
		t.Fatalf("unexpected contribution match")
	}
	if !r.IsAmortization("BARILOCHE") || r.IsAmortization("OBRA") {
		t.Fatalf("unexpected amortization result")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.FinancialSubgroup != "FINANCEIRO" {
		t.Fatalf("expected defaults, got %+v", r)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	content := `
financial_subgroup = "finance"
internal_transfers = ["mov. interna"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.FinancialSubgroup != "FINANCE" {
		t.Fatalf("expected upper-cased subgroup, got %q", r.FinancialSubgroup)
	}
	if len(r.InternalTransfers) != 1 || r.InternalTransfers[0] != "MOV. INTERNA" {
		t.Fatalf("unexpected transfers %v", r.InternalTransfers)
	}
	if len(r.Contributions) != 2 {
		t.Fatalf("expected default contributions, got %v", r.Contributions)
	}
	if got := r.Classify("FINANCE", "MOV. INTERNA"); got != core.FinancialInternal {
		t.Fatalf("expected internal, got %s", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error")
	}
}
