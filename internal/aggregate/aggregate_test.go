package aggregate

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluxo/internal/core"
)

func tx(row int, date core.Date, nature string, cents int64) core.Transaction {
	dir := core.Credit
	if cents < 0 {
		dir = core.Debit
	}
	return core.Transaction{
		Row:       row,
		Date:      date,
		Group:     "GERAL",
		Subgroup:  "OPERACIONAL",
		Nature:    nature,
		Supplier:  core.Unassigned,
		Account:   "CONTA",
		Amount:    core.Money{Cents: cents},
		Direction: dir,
		Kind:      core.Operational,
	}
}

func sampleTable() core.Table {
	return core.Table{Source: "sample", Transactions: []core.Transaction{
		tx(1, core.NewDate(2024, 1, 5), "Salary", 300000),
		tx(2, core.NewDate(2024, 1, 10), "Rent", -100000),
	}}
}

func richTable() core.Table {
	txs := []core.Transaction{
		tx(1, core.NewDate(2024, 1, 5), "SALÁRIO", 500000),
		tx(2, core.NewDate(2024, 1, 7), "ALUGUEL", -150000),
		tx(3, core.NewDate(2024, 1, 20), "MERCADO", -45050),
		tx(4, core.NewDate(2024, 3, 5), "SALÁRIO", 500000),
		tx(5, core.NewDate(2024, 3, 9), "MERCADO", -61025),
		tx(6, core.NewDate(2024, 4, 1), "ALUGUEL", -150000),
	}
	txs[1].Supplier, txs[5].Supplier = "IMOBILIÁRIA", "IMOBILIÁRIA"
	txs[2].Supplier, txs[4].Supplier = "SUPERMERCADO", "SUPERMERCADO"
	txs[0].Supplier, txs[3].Supplier = "ACME", "ACME"
	txs[2].Group, txs[4].Group = "CASA", "CASA"
	txs[5].Account = "POUPANÇA"
	return core.Table{Source: "rich", Transactions: txs}
}

func TestCategoriesRentSalaryShares(t *testing.T) {
	cats := Categories(sampleTable())
	require.Len(t, cats, 2)

	assert.Equal(t, "Salary", cats[0].Label)
	assert.InDelta(t, 0.75, cats[0].Share, 1e-9)
	assert.Equal(t, int64(300000), cats[0].Net.Cents)

	assert.Equal(t, "Rent", cats[1].Label)
	assert.InDelta(t, 0.25, cats[1].Share, 1e-9)
	assert.Equal(t, int64(-100000), cats[1].Net.Cents)
}

func TestSharesSumToOne(t *testing.T) {
	for _, d := range []Dimension{ByGroup, BySubgroup, ByNature, BySupplier, ByAccount} {
		var sum float64
		for _, b := range Breakdown(richTable(), d) {
			sum += b.Share
		}
		assert.InDelta(t, 1.0, sum, 1e-6, string(d))
	}
}

func TestSingleTransactionCategory(t *testing.T) {
	tbl := core.Table{Transactions: []core.Transaction{tx(1, core.NewDate(2024, 1, 1), "ÚNICA", -999)}}
	cats := Categories(tbl)
	require.Len(t, cats, 1)
	assert.Equal(t, 1.0, cats[0].Share)
	assert.Equal(t, 1, cats[0].Count)
}

func TestEmptyTable(t *testing.T) {
	var empty core.Table
	assert.Empty(t, Periods(empty, Month))
	assert.Empty(t, Categories(empty))
	assert.Empty(t, Natures(empty))
	assert.Empty(t, TopSuppliers(empty, 5, core.Debit))
	assert.Empty(t, AccountBalances(empty))
	k := KPIs(empty)
	assert.Zero(t, k.Count)
	assert.Zero(t, k.AverageTicket.Cents)
	assert.Empty(t, Contributions(empty, ContributionOptions{}).Items)
}

func TestPeriodsMonthly(t *testing.T) {
	periods := Periods(richTable(), Month)
	require.Len(t, periods, 4)

	keys := make([]string, len(periods))
	for i, p := range periods {
		keys[i] = p.Key
		assert.Equal(t, p.Credits.Cents-p.Debits.Cents, p.Net.Cents, p.Key)
		assert.GreaterOrEqual(t, p.Debits.Cents, int64(0))
	}
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03", "2024-04"}, keys)

	assert.Equal(t, int64(500000), periods[0].Credits.Cents)
	assert.Equal(t, int64(195050), periods[0].Debits.Cents)
	assert.Zero(t, periods[1].Count)
	assert.Equal(t, periods[0].Running, periods[1].Running)
	assert.Equal(t, KPIs(richTable()).Net, periods[3].Running)
}

func TestPeriodsQuarterAndYear(t *testing.T) {
	q := Periods(richTable(), Quarter)
	require.Len(t, q, 2)
	assert.Equal(t, "2024-Q1", q[0].Key)
	assert.Equal(t, "2024-Q2", q[1].Key)
	assert.Equal(t, 5, q[0].Count)

	y := Periods(richTable(), Year)
	require.Len(t, y, 1)
	assert.Equal(t, "2024", y[0].Key)
	assert.Equal(t, 6, y[0].Count)

	assert.Len(t, Periods(richTable(), "weekly"), 4)
}

func TestLastN(t *testing.T) {
	p := Periods(richTable(), Month)
	assert.Len(t, LastN(p, 2), 2)
	assert.Equal(t, "2024-04", LastN(p, 2)[1].Key)
	assert.Len(t, LastN(p, 12), 4)
}

func TestKPIs(t *testing.T) {
	k := KPIs(sampleTable())
	assert.Equal(t, int64(300000), k.Credits.Cents)
	assert.Equal(t, int64(100000), k.Debits.Cents)
	assert.Equal(t, int64(200000), k.Net.Cents)
	assert.Equal(t, 2, k.Count)
	assert.Equal(t, int64(100000), k.AverageTicket.Cents)
	assert.Zero(t, k.Variation, "single month has no variation")

	tbl := core.Table{Transactions: []core.Transaction{
		tx(1, core.NewDate(2024, 1, 1), "A", 100000),
		tx(2, core.NewDate(2024, 2, 1), "A", 150000),
	}}
	assert.InDelta(t, 50.0, KPIs(tbl).Variation, 1e-9)

	tbl.Transactions[0].Amount = core.Money{Cents: -100000}
	tbl.Transactions[0].Direction = core.Debit
	assert.InDelta(t, 250.0, KPIs(tbl).Variation, 1e-9)

	gap := core.Table{Transactions: []core.Transaction{
		tx(1, core.NewDate(2024, 1, 1), "A", 100000),
		tx(2, core.NewDate(2024, 3, 1), "A", 150000),
	}}
	assert.InDelta(t, 50.0, KPIs(gap).Variation, 1e-9, "empty months between data are not compared")
	assert.Equal(t, 3, KPIs(gap).Months)

	flat := core.Table{Transactions: []core.Transaction{
		tx(1, core.NewDate(2024, 1, 1), "A", 100000),
		tx(2, core.NewDate(2024, 1, 5), "A", -100000),
		tx(3, core.NewDate(2024, 2, 1), "A", 150000),
	}}
	assert.Zero(t, KPIs(flat).Variation, "previous month has zero net")
}

func TestTopSuppliers(t *testing.T) {
	top := TopSuppliers(richTable(), 1, core.Debit)
	require.Len(t, top, 1)
	assert.Equal(t, "IMOBILIÁRIA", top[0].Label)
	assert.Equal(t, int64(300000), top[0].Debits.Cents)

	credit := TopSuppliers(richTable(), 5, core.Credit)
	require.Len(t, credit, 1)
	assert.Equal(t, "ACME", credit[0].Label)

	all := TopSuppliers(richTable(), 0, "")
	assert.Len(t, all, 3)
	assert.Equal(t, "ACME", all[0].Label)
}

func TestAccountBalances(t *testing.T) {
	acc := AccountBalances(richTable())
	require.Len(t, acc, 2)
	assert.Equal(t, "CONTA", acc[0].Label)
	assert.Equal(t, "POUPANÇA", acc[1].Label)
	assert.Equal(t, int64(-150000), acc[1].Net.Cents)
	assert.Equal(t, 5, acc[0].Count)
}

func TestNatures(t *testing.T) {
	tbl := richTable()
	tbl.Transactions[2].Subgroup = "CASA"
	nodes := Natures(tbl)
	require.Len(t, nodes, 4)
	assert.Equal(t, "CASA", nodes[0].Subgroup)
	assert.Equal(t, "MERCADO", nodes[0].Nature)
	assert.Equal(t, "SALÁRIO", nodes[1].Nature)
	assert.Equal(t, int64(1000000), nodes[1].Flow.Cents)
}

func TestFilter(t *testing.T) {
	tbl := richTable()
	tbl.Transactions[1].Kind = core.FinancialInternal

	got := Filter{View: ViewOperational}.Apply(tbl)
	assert.Len(t, got.Transactions, 5)
	assert.Len(t, Filter{View: ViewComplete}.Apply(tbl).Transactions, 6)

	byDate := Filter{From: core.NewDate(2024, 3, 1), To: core.NewDate(2024, 3, 31)}.Apply(tbl)
	assert.Len(t, byDate.Transactions, 2)

	bySupplier := Filter{Suppliers: []string{"supermercado"}}.Apply(tbl)
	assert.Len(t, bySupplier.Transactions, 2)

	combined := Filter{Groups: []string{"CASA"}, Natures: []string{"mercado", "aluguel"}}.Apply(tbl)
	assert.Len(t, combined.Transactions, 2)

	assert.True(t, Filter{}.IsZero())
	assert.True(t, Filter{View: ViewComplete}.IsZero())
	assert.False(t, Filter{View: ViewOperational}.IsZero())
}

func TestContributions(t *testing.T) {
	tbl := core.Table{Transactions: []core.Transaction{
		tx(1, core.NewDate(2024, 1, 1), "APORTE DE CAPITAL", 100000),
		tx(2, core.NewDate(2024, 1, 15), "ALUGUEL", -5000),
	}}
	sum := Contributions(tbl, ContributionOptions{AsOf: core.NewDate(2024, 3, 1)})
	require.Len(t, sum.Items, 1)
	item := sum.Items[0]
	assert.Equal(t, 2.0, item.Months)
	assert.Equal(t, int64(101904), item.Corrected.Cents)
	assert.Equal(t, int64(1904), item.Interest.Cents)
	assert.Equal(t, sum.Corrected, sum.Outstanding)
	assert.InDelta(t, 0.009477, sum.Rate, 1e-12)

	onePercent := decimal.RequireFromString("0.01")
	custom := Contributions(tbl, ContributionOptions{
		AsOf:        core.NewDate(2024, 2, 1),
		MonthlyRate: &onePercent,
	})
	assert.Equal(t, int64(101000), custom.Corrected.Cents)

	zero := decimal.Zero
	flat := Contributions(tbl, ContributionOptions{
		AsOf:        core.NewDate(2025, 1, 1),
		MonthlyRate: &zero,
	})
	require.Len(t, flat.Items, 1)
	assert.Zero(t, flat.Rate)
	assert.Zero(t, flat.Interest.Cents, "zero rate adds no interest")
	assert.Equal(t, int64(100000), flat.Corrected.Cents)
}

func TestContributionsAmortization(t *testing.T) {
	amort := tx(2, core.NewDate(2024, 1, 1), "PAGAMENTO", -30000)
	amort.Group = "BARILOCHE"
	tbl := core.Table{Transactions: []core.Transaction{
		tx(1, core.NewDate(2024, 1, 1), "SCP", 100000),
		amort,
	}}
	opts := ContributionOptions{AsOf: core.NewDate(2024, 1, 1), Amortize: true}
	sum := Contributions(tbl, opts)
	assert.Equal(t, int64(30000), sum.Amortized.Cents)
	assert.Equal(t, int64(70000), sum.Outstanding.Cents)

	tbl.Transactions[1].Amount = core.Money{Cents: -200000}
	assert.Zero(t, Contributions(tbl, opts).Outstanding.Cents, "balance never goes below zero")

	opts.Amortize = false
	assert.Equal(t, int64(100000), Contributions(tbl, opts).Outstanding.Cents)
}

func TestMonthsBetween(t *testing.T) {
	assert.InDelta(t, 1.5, monthsBetween(core.NewDate(2024, 1, 1), core.NewDate(2024, 2, 16)), 1e-9)
	assert.InDelta(t, 12.0, monthsBetween(core.NewDate(2023, 5, 10), core.NewDate(2024, 5, 10)), 1e-9)
	assert.Zero(t, monthsBetween(core.NewDate(2024, 5, 10), core.NewDate(2024, 1, 1)))
}

func TestDeterministicJSON(t *testing.T) {
	render := func() []byte {
		tbl := richTable()
		out := map[string]any{
			"periods":    Periods(tbl, Month),
			"categories": Categories(tbl),
			"groups":     Breakdown(tbl, ByGroup),
			"natures":    Natures(tbl),
			"suppliers":  TopSuppliers(tbl, 10, ""),
			"accounts":   AccountBalances(tbl),
			"kpis":       KPIs(tbl),
		}
		b, err := json.Marshal(out)
		require.NoError(t, err)
		return b
	}
	assert.Equal(t, string(render()), string(render()))
}

func TestVariationRounding(t *testing.T) {
	v := variation(core.Money{Cents: 100}, core.Money{Cents: 300})
	assert.False(t, math.IsNaN(v))
	assert.InDelta(t, -66.6667, v, 1e-9)
}

func TestSummarize(t *testing.T) {
	s := Summarize(richTable(), Quarter, 0)
	assert.Equal(t, Quarter, s.Granularity)
	assert.Len(t, s.Periods, 2)
	assert.Len(t, s.Monthly, 4)
	assert.Len(t, s.Suppliers, 2)
	assert.Equal(t, 6, s.KPIs.Count)

	empty := Summarize(core.Table{}, "", 5)
	assert.Equal(t, Month, empty.Granularity)
	assert.Empty(t, empty.Periods)
}
