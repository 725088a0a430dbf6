package present

import (
	"errors"
	"fmt"
	"sort"

	"fluxo/internal/aggregate"
	"fluxo/internal/core"
)

// Chart names served by the dashboard.
const (
	ChartCashFlow   = "cashflow"
	ChartComparison = "comparison"
	ChartGroups     = "groups"
	ChartNatures    = "natures"
	ChartSuppliers  = "suppliers"
	ChartSubgroups  = "subgroups"
	ChartCategories = "categories"
)

// ChartNames lists every chart in display order.
var ChartNames = []string{
	ChartCashFlow, ChartComparison, ChartGroups, ChartNatures,
	ChartSuppliers, ChartSubgroups, ChartCategories,
}

// ErrUnknownChart is returned for a chart name not in ChartNames.
var ErrUnknownChart = errors.New("unknown chart")

const (
	topGroups     = 10
	topSubgroups  = 8
	topCategories = 10
	otherLabel    = "OUTROS"
	hoverBRL      = "%{x}<br>R$ %{y:,.2f}<extra>%{fullData.name}</extra>"
)

// Chart builds the named figure from a summary.
func Chart(name string, s aggregate.Summary) (Figure, error) {
	switch name {
	case ChartCashFlow:
		return CashFlow(s.Periods, s.Granularity), nil
	case ChartComparison:
		return Comparison(aggregate.LastN(s.Monthly, 12)), nil
	case ChartGroups:
		return TopBuckets("Top grupos por movimentação", s.Groups, topGroups), nil
	case ChartNatures:
		return NatureTreemap(s.Natures), nil
	case ChartSuppliers:
		return Suppliers(s.Suppliers), nil
	case ChartSubgroups:
		return Donut("Distribuição por subgrupo", s.Subgroups, topSubgroups), nil
	case ChartCategories:
		return SharePie("Participação por natureza", s.Categories, topCategories), nil
	default:
		return Figure{}, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
}

// Charts builds every figure keyed by name.
func Charts(s aggregate.Summary) map[string]Figure {
	out := make(map[string]Figure, len(ChartNames))
	for _, name := range ChartNames {
		fig, _ := Chart(name, s)
		out[name] = fig
	}
	return out
}

// CashFlow shows credit and debit bars per period with the cumulative balance
// as an area on a secondary axis.
func CashFlow(periods []aggregate.Period, g aggregate.Granularity) Figure {
	x := make([]any, len(periods))
	credits := make([]any, len(periods))
	debits := make([]any, len(periods))
	running := make([]any, len(periods))
	for i, p := range periods {
		x[i] = PeriodLabel(p, g)
		credits[i] = p.Credits.Float()
		debits[i] = -p.Debits.Float()
		running[i] = p.Running.Float()
	}

	layout := baseLayout("Fluxo de caixa", 440)
	layout.BarMode = "relative"
	layout.HoverMode = "x unified"
	layout.YAxis2 = &Axis{Overlaying: "y", Side: "right", ShowGrid: boolPtr(false), TickPrefix: "R$ ", TickFormat: ",.0f"}

	return Figure{
		Data: []Trace{
			{Type: "bar", Name: "Entradas", X: x, Y: credits, Marker: &Marker{Color: ColorCredit}, HoverTemplate: hoverBRL},
			{Type: "bar", Name: "Saídas", X: x, Y: debits, Marker: &Marker{Color: ColorDebit}, HoverTemplate: hoverBRL},
			{Type: "scatter", Name: "Saldo acumulado", X: x, Y: running, Mode: "lines", Fill: "tozeroy", YAxis: "y2",
				Line: &Line{Color: ColorNet, Width: 2, Shape: "spline"}, HoverTemplate: hoverBRL},
		},
		Layout: layout,
	}
}

// Comparison shows monthly credits against debits with the net as a line.
func Comparison(months []aggregate.Period) Figure {
	x := make([]any, len(months))
	credits := make([]any, len(months))
	debits := make([]any, len(months))
	net := make([]any, len(months))
	for i, p := range months {
		x[i] = MonthLabel(p.Start)
		credits[i] = p.Credits.Float()
		debits[i] = p.Debits.Float()
		net[i] = p.Net.Float()
	}

	layout := baseLayout("Últimos 12 meses", 400)
	layout.BarMode = "group"

	return Figure{
		Data: []Trace{
			{Type: "bar", Name: "Entradas", X: x, Y: credits, Marker: &Marker{Color: ColorCredit}, HoverTemplate: hoverBRL},
			{Type: "bar", Name: "Saídas", X: x, Y: debits, Marker: &Marker{Color: ColorDebit}, HoverTemplate: hoverBRL},
			{Type: "scatter", Name: "Saldo", X: x, Y: net, Mode: "lines+markers", Line: &Line{Color: ColorAccent, Width: 2}, HoverTemplate: hoverBRL},
		},
		Layout: layout,
	}
}

// TopBuckets is a horizontal bar of the n largest buckets, colored by the sign of the net.
func TopBuckets(title string, buckets []aggregate.Bucket, n int) Figure {
	top := head(buckets, n)
	// plotly draws the first category at the bottom
	x := make([]any, len(top))
	y := make([]any, len(top))
	colors := make([]string, len(top))
	text := make([]string, len(top))
	for i, b := range top {
		j := len(top) - 1 - i
		x[j] = b.Net.Float()
		y[j] = b.Label
		colors[j] = signColor(b.Net)
		text[j] = FormatBRL(b.Net)
	}

	layout := baseLayout(title, 420)
	layout.ShowLegend = boolPtr(false)
	layout.Margin = &Margin{L: 180, R: 30, T: 60, B: 40}
	layout.XAxis = &Axis{GridColor: colorGrid, TickPrefix: "R$ ", TickFormat: ",.0f"}
	layout.YAxis = &Axis{Type: "category"}

	return Figure{
		Data: []Trace{{
			Type: "bar", Orientation: "h", X: x, Y: y, Text: text, TextPosition: "auto",
			Marker: &Marker{Color: colors}, HoverTemplate: "%{y}<br>%{text}<extra></extra>",
		}},
		Layout: layout,
	}
}

// Suppliers is a horizontal bar of the largest suppliers by outflow.
func Suppliers(buckets []aggregate.Bucket) Figure {
	x := make([]any, len(buckets))
	y := make([]any, len(buckets))
	text := make([]string, len(buckets))
	for i, b := range buckets {
		j := len(buckets) - 1 - i
		x[j] = b.Debits.Float()
		y[j] = b.Label
		text[j] = FormatBRL(b.Debits)
	}

	layout := baseLayout("Principais fornecedores (saídas)", 420)
	layout.ShowLegend = boolPtr(false)
	layout.Margin = &Margin{L: 180, R: 30, T: 60, B: 40}
	layout.XAxis = &Axis{GridColor: colorGrid, TickPrefix: "R$ ", TickFormat: ",.0f"}
	layout.YAxis = &Axis{Type: "category"}

	return Figure{
		Data: []Trace{{
			Type: "bar", Orientation: "h", X: x, Y: y, Text: text, TextPosition: "auto",
			Marker: &Marker{Color: ColorDebit}, HoverTemplate: "%{y}<br>%{text}<extra></extra>",
		}},
		Layout: layout,
	}
}

// NatureTreemap nests natures under their subgroups, sized by flow.
func NatureTreemap(nodes []aggregate.NatureNode) Figure {
	const root = "Total"
	subTotals := map[string]core.Money{}
	var subs []string
	for _, n := range nodes {
		if _, ok := subTotals[n.Subgroup]; !ok {
			subs = append(subs, n.Subgroup)
		}
		subTotals[n.Subgroup] = subTotals[n.Subgroup].Add(n.Flow)
	}
	sort.Strings(subs)

	var total core.Money
	ids := []string{root}
	labels := []string{root}
	parents := []string{""}
	values := []float64{0}
	for _, s := range subs {
		total = total.Add(subTotals[s])
		ids = append(ids, s)
		labels = append(labels, s)
		parents = append(parents, root)
		values = append(values, subTotals[s].Float())
	}
	for _, n := range nodes {
		ids = append(ids, n.Subgroup+"/"+n.Nature)
		labels = append(labels, n.Nature)
		parents = append(parents, n.Subgroup)
		values = append(values, n.Flow.Float())
	}
	values[0] = total.Float()

	layout := baseLayout("Naturezas por subgrupo", 520)
	layout.Margin = &Margin{L: 10, R: 10, T: 60, B: 10}

	return Figure{
		Data: []Trace{{
			Type: "treemap", IDs: ids, Labels: labels, Parents: parents, Values: values,
			BranchValues: "total", TextInfo: "label+percent root",
			HoverTemplate: "%{label}<br>R$ %{value:,.2f}<extra></extra>",
		}},
		Layout: layout,
	}
}

// Donut shows the n largest buckets by flow; the rest is folded into OUTROS.
func Donut(title string, buckets []aggregate.Bucket, n int) Figure {
	fig := SharePie(title, buckets, n)
	fig.Data[0].Hole = 0.55
	return fig
}

// SharePie shows the share of flow of the n largest buckets.
func SharePie(title string, buckets []aggregate.Bucket, n int) Figure {
	folded := fold(buckets, n)
	labels := make([]string, len(folded))
	values := make([]float64, len(folded))
	for i, b := range folded {
		labels[i] = b.Label
		values[i] = b.Flow.Float()
	}
	layout := baseLayout(title, 420)
	layout.Legend = &Legend{Orientation: "v", X: 1.02, Y: 1}

	return Figure{
		Data: []Trace{{
			Type: "pie", Labels: labels, Values: values, TextInfo: "percent",
			Marker:        &Marker{Colors: palette(len(labels))},
			HoverTemplate: "%{label}<br>R$ %{value:,.2f} (%{percent})<extra></extra>",
		}},
		Layout: layout,
	}
}

// fold keeps the n first buckets and sums the remainder into one OUTROS bucket.
func fold(buckets []aggregate.Bucket, n int) []aggregate.Bucket {
	if n <= 0 || len(buckets) <= n {
		return buckets
	}
	out := append([]aggregate.Bucket(nil), buckets[:n]...)
	other := aggregate.Bucket{Label: otherLabel}
	for _, b := range buckets[n:] {
		other.Credits = other.Credits.Add(b.Credits)
		other.Debits = other.Debits.Add(b.Debits)
		other.Net = other.Net.Add(b.Net)
		other.Flow = other.Flow.Add(b.Flow)
		other.Share += b.Share
		other.Count += b.Count
	}
	return append(out, other)
}

func head(buckets []aggregate.Bucket, n int) []aggregate.Bucket {
	if n > 0 && len(buckets) > n {
		return buckets[:n]
	}
	return buckets
}

func palette(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = sequence[i%len(sequence)]
	}
	return out
}

func signColor(m core.Money) string {
	if m.Cents < 0 {
		return ColorDebit
	}
	return ColorCredit
}
