package aggregate

import "fluxo/internal/core"

// DefaultTopN bounds the ranked lists of a Summary.
const DefaultTopN = 10

// Summary bundles every aggregate the dashboard renders for one table.
type Summary struct {
	Granularity Granularity  `json:"granularity"`
	KPIs        KPISet       `json:"kpis"`
	Periods     []Period     `json:"periods"`
	Monthly     []Period     `json:"monthly"`
	Categories  []Category   `json:"categories"`
	Groups      []Bucket     `json:"groups"`
	Subgroups   []Bucket     `json:"subgroups"`
	Natures     []NatureNode `json:"natures"`
	Suppliers   []Bucket     `json:"suppliers"`
	Accounts    []Bucket     `json:"accounts"`
}

// Summarize computes the full aggregate set. topN limits the supplier ranking.
func Summarize(t core.Table, g Granularity, topN int) Summary {
	if !g.IsValid() {
		g = Month
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	monthly := Periods(t, Month)
	periods := monthly
	if g != Month {
		periods = Periods(t, g)
	}
	return Summary{
		Granularity: g,
		KPIs:        KPIs(t),
		Periods:     periods,
		Monthly:     monthly,
		Categories:  Categories(t),
		Groups:      Breakdown(t, ByGroup),
		Subgroups:   Breakdown(t, BySubgroup),
		Natures:     Natures(t),
		Suppliers:   TopSuppliers(t, topN, core.Debit),
		Accounts:    AccountBalances(t),
	}
}
