package aggregate

import (
	"strings"

	"fluxo/internal/core"
)

// View selects which kinds of transaction are visible.
type View string

const (
	// ViewOperational hides transfers and loans between own accounts.
	ViewOperational View = "operational"
	// ViewComplete keeps every transaction.
	ViewComplete View = "complete"
)

func (v View) IsValid() bool {
	return v == ViewOperational || v == ViewComplete
}

// Filter narrows a table. Zero fields do not filter; an empty View is complete.
// Label lists match case-insensitively.
type Filter struct {
	From      core.Date `json:"from,omitempty"`
	To        core.Date `json:"to,omitempty"`
	Groups    []string  `json:"groups,omitempty"`
	Suppliers []string  `json:"suppliers,omitempty"`
	Natures   []string  `json:"natures,omitempty"`
	View      View      `json:"view,omitempty"`
}

// Apply returns a new table holding the matching transactions in their original order.
func (f Filter) Apply(t core.Table) core.Table {
	groups, suppliers, natures := set(f.Groups), set(f.Suppliers), set(f.Natures)
	out := core.Table{Source: t.Source}
	for _, tx := range t.Transactions {
		if !f.From.IsZero() && tx.Date.Before(f.From.Time) {
			continue
		}
		if !f.To.IsZero() && tx.Date.After(f.To.Time) {
			continue
		}
		if f.View == ViewOperational && tx.Kind == core.FinancialInternal {
			continue
		}
		if !matches(groups, tx.Group) || !matches(suppliers, tx.Supplier) || !matches(natures, tx.Nature) {
			continue
		}
		out.Transactions = append(out.Transactions, tx)
	}
	return out
}

// IsZero reports whether the filter keeps every transaction.
func (f Filter) IsZero() bool {
	return f.From.IsZero() && f.To.IsZero() && len(f.Groups) == 0 && len(f.Suppliers) == 0 &&
		len(f.Natures) == 0 && f.View != ViewOperational
}

func set(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.ToUpper(strings.TrimSpace(v)); v != "" {
			m[v] = struct{}{}
		}
	}
	return m
}

func matches(m map[string]struct{}, v string) bool {
	if len(m) == 0 {
		return true
	}
	_, ok := m[strings.ToUpper(v)]
	return ok
}
