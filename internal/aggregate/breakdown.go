package aggregate

import (
	"sort"

	"fluxo/internal/core"
)

// Dimension names a transaction attribute to group by.
type Dimension string

const (
	ByGroup    Dimension = "group"
	BySubgroup Dimension = "subgroup"
	ByNature   Dimension = "nature"
	BySupplier Dimension = "supplier"
	ByAccount  Dimension = "account"
)

func (d Dimension) IsValid() bool {
	switch d {
	case ByGroup, BySubgroup, ByNature, BySupplier, ByAccount:
		return true
	}
	return false
}

// Value returns the label of tx along d.
func (d Dimension) Value(tx core.Transaction) string {
	switch d {
	case ByGroup:
		return tx.Group
	case BySubgroup:
		return tx.Subgroup
	case BySupplier:
		return tx.Supplier
	case ByAccount:
		return tx.Account
	default:
		return tx.Category()
	}
}

// Bucket is the aggregate of one label. Net is the signed total; Flow is the
// sum of absolute amounts and Share is Flow over the flow of the whole table.
type Bucket struct {
	Label   string     `json:"label"`
	Credits core.Money `json:"credits"`
	Debits  core.Money `json:"debits"`
	Net     core.Money `json:"net"`
	Flow    core.Money `json:"flow"`
	Share   float64    `json:"share"`
	Count   int        `json:"count"`
}

// Category is the category aggregate: a nature label with its signed total
// and its share of the overall absolute flow.
type Category = Bucket

// Categories aggregates by nature. Shares sum to 1 for a non-empty table.
func Categories(t core.Table) []Category {
	return Breakdown(t, ByNature)
}

// Breakdown aggregates by dimension, largest flow first, ties by label.
func Breakdown(t core.Table, d Dimension) []Bucket {
	return sortByFlow(group(t.Transactions, d.Value))
}

// TopSuppliers returns the n suppliers with the largest flow in direction.
// An empty direction ranks by total flow.
func TopSuppliers(t core.Table, n int, dir core.Direction) []Bucket {
	buckets := group(t.Transactions, BySupplier.Value)
	metric := func(b Bucket) int64 { return b.Flow.Cents }
	switch dir {
	case core.Debit:
		metric = func(b Bucket) int64 { return b.Debits.Cents }
	case core.Credit:
		metric = func(b Bucket) int64 { return b.Credits.Cents }
	}

	kept := buckets[:0]
	for _, b := range buckets {
		if metric(b) > 0 {
			kept = append(kept, b)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		mi, mj := metric(kept[i]), metric(kept[j])
		if mi != mj {
			return mi > mj
		}
		return kept[i].Label < kept[j].Label
	})
	if n > 0 && len(kept) > n {
		kept = kept[:n]
	}
	return kept
}

// AccountBalances aggregates by bank account in label order.
func AccountBalances(t core.Table) []Bucket {
	out := group(t.Transactions, ByAccount.Value)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// NatureNode is one (subgroup, nature) pair of the nature treemap.
type NatureNode struct {
	Subgroup string     `json:"subgroup"`
	Nature   string     `json:"nature"`
	Net      core.Money `json:"net"`
	Flow     core.Money `json:"flow"`
	Count    int        `json:"count"`
}

// Natures aggregates by (subgroup, nature), ordered by subgroup then flow.
func Natures(t core.Table) []NatureNode {
	type key struct{ sub, nat string }
	idx := map[key]int{}
	var out []NatureNode
	for _, tx := range t.Transactions {
		k := key{tx.Subgroup, tx.Nature}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, NatureNode{Subgroup: tx.Subgroup, Nature: tx.Nature})
		}
		out[i].Net = out[i].Net.Add(tx.Amount)
		out[i].Flow = out[i].Flow.Add(tx.Amount.Abs())
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Subgroup != b.Subgroup {
			return a.Subgroup < b.Subgroup
		}
		if a.Flow != b.Flow {
			return a.Flow.Cents > b.Flow.Cents
		}
		return a.Nature < b.Nature
	})
	return out
}

// group sums transactions by label and fills shares.
func group(txs []core.Transaction, label func(core.Transaction) string) []Bucket {
	idx := map[string]int{}
	var out []Bucket
	var total int64
	for _, tx := range txs {
		l := label(tx)
		i, ok := idx[l]
		if !ok {
			i = len(out)
			idx[l] = i
			out = append(out, Bucket{Label: l})
		}
		b := &out[i]
		b.Credits = b.Credits.Add(tx.Credit())
		b.Debits = b.Debits.Add(tx.Debit())
		b.Count++
		total += tx.Amount.Abs().Cents
	}
	for i := range out {
		b := &out[i]
		b.Net = b.Credits.Sub(b.Debits)
		b.Flow = b.Credits.Add(b.Debits)
		if total > 0 {
			b.Share = float64(b.Flow.Cents) / float64(total)
		}
	}
	return out
}

func sortByFlow(out []Bucket) []Bucket {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Flow != out[j].Flow {
			return out[i].Flow.Cents > out[j].Flow.Cents
		}
		return out[i].Label < out[j].Label
	})
	return out
}
