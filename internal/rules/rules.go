// Package rules holds the keyword rules that classify transactions into
// operational, external-financial and internal-financial kinds.
package rules

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"fluxo/internal/core"
)

// Rules is the classification and contribution keyword set.
type Rules struct {
	FinancialSubgroup  string   `mapstructure:"financial_subgroup"`
	InternalTransfers  []string `mapstructure:"internal_transfers"`
	InternalLoans      []string `mapstructure:"internal_loans"`
	Contributions      []string `mapstructure:"contributions"`
	AmortizationGroups []string `mapstructure:"amortization_groups"`
}

// Default returns the built-in keyword set used when no rules file is configured.
func Default() Rules {
	return Rules{
		FinancialSubgroup:  "FINANCEIRO",
		InternalTransfers:  []string{"TRANSF. ENTRE CONTAS", "TRANSFERÊNCIA ENTRE CONTAS"},
		InternalLoans:      []string{"EMPRÉSTIMO"},
		Contributions:      []string{"APORTE", "SCP"},
		AmortizationGroups: []string{"BARILOCHE"},
	}
}

// Load reads a TOML rules file. Keys absent from the file keep their defaults.
// An empty path returns Default().
func Load(path string) (Rules, error) {
	if path == "" {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	def := Default()
	v.SetDefault("financial_subgroup", def.FinancialSubgroup)
	v.SetDefault("internal_transfers", def.InternalTransfers)
	v.SetDefault("internal_loans", def.InternalLoans)
	v.SetDefault("contributions", def.Contributions)
	v.SetDefault("amortization_groups", def.AmortizationGroups)

	if err := v.ReadInConfig(); err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	var r Rules
	if err := v.Unmarshal(&r); err != nil {
		return Rules{}, fmt.Errorf("failed to unmarshal rules: %w", err)
	}
	return r.normalized(), nil
}

// normalized upper-cases every keyword so matching can run on normalized text.
func (r Rules) normalized() Rules {
	up := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, s := range in {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return Rules{
		FinancialSubgroup:  strings.ToUpper(strings.TrimSpace(r.FinancialSubgroup)),
		InternalTransfers:  up(r.InternalTransfers),
		InternalLoans:      up(r.InternalLoans),
		Contributions:      up(r.Contributions),
		AmortizationGroups: up(r.AmortizationGroups),
	}
}

// Classify returns the kind of a transaction given its normalized subgroup and nature.
func (r Rules) Classify(subgroup, nature string) core.Kind {
	if containsAny(nature, r.InternalTransfers) {
		return core.FinancialInternal
	}
	financial := subgroup == r.FinancialSubgroup
	if financial && containsAny(nature, r.InternalLoans) {
		return core.FinancialInternal
	}
	if financial {
		return core.FinancialExternal
	}
	return core.Operational
}

// IsContribution reports whether a nature denotes a capital contribution.
func (r Rules) IsContribution(nature string) bool {
	return containsAny(nature, r.Contributions)
}

// IsAmortization reports whether debits of group pay contributed capital back.
func (r Rules) IsAmortization(group string) bool {
	for _, g := range r.AmortizationGroups {
		if group == g {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
