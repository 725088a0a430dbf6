package present

// Plotly figure JSON, limited to the attributes the dashboard uses.
type (
	Figure struct {
		Data   []Trace `json:"data"`
		Layout Layout  `json:"layout"`
	}

	Trace struct {
		Type          string    `json:"type"`
		Name          string    `json:"name,omitempty"`
		X             []any     `json:"x,omitempty"`
		Y             []any     `json:"y,omitempty"`
		Labels        []string  `json:"labels,omitempty"`
		Parents       []string  `json:"parents,omitempty"`
		IDs           []string  `json:"ids,omitempty"`
		Values        []float64 `json:"values,omitempty"`
		Text          []string  `json:"text,omitempty"`
		Orientation   string    `json:"orientation,omitempty"`
		Mode          string    `json:"mode,omitempty"`
		Fill          string    `json:"fill,omitempty"`
		Hole          float64   `json:"hole,omitempty"`
		YAxis         string    `json:"yaxis,omitempty"`
		BranchValues  string    `json:"branchvalues,omitempty"`
		TextInfo      string    `json:"textinfo,omitempty"`
		TextPosition  string    `json:"textposition,omitempty"`
		HoverTemplate string    `json:"hovertemplate,omitempty"`
		Marker        *Marker   `json:"marker,omitempty"`
		Line          *Line     `json:"line,omitempty"`
	}

	Marker struct {
		Color  any      `json:"color,omitempty"`
		Colors []string `json:"colors,omitempty"`
	}

	Line struct {
		Color string  `json:"color,omitempty"`
		Width float64 `json:"width,omitempty"`
		Shape string  `json:"shape,omitempty"`
	}

	Layout struct {
		Title        *Title  `json:"title,omitempty"`
		BarMode      string  `json:"barmode,omitempty"`
		Height       int     `json:"height,omitempty"`
		ShowLegend   *bool   `json:"showlegend,omitempty"`
		PaperBGColor string  `json:"paper_bgcolor,omitempty"`
		PlotBGColor  string  `json:"plot_bgcolor,omitempty"`
		Font         *Font   `json:"font,omitempty"`
		Margin       *Margin `json:"margin,omitempty"`
		XAxis        *Axis   `json:"xaxis,omitempty"`
		YAxis        *Axis   `json:"yaxis,omitempty"`
		YAxis2       *Axis   `json:"yaxis2,omitempty"`
		Legend       *Legend `json:"legend,omitempty"`
		HoverMode    string  `json:"hovermode,omitempty"`
	}

	Title struct {
		Text string `json:"text"`
	}

	Font struct {
		Color  string `json:"color,omitempty"`
		Family string `json:"family,omitempty"`
		Size   int    `json:"size,omitempty"`
	}

	Margin struct {
		L int `json:"l"`
		R int `json:"r"`
		T int `json:"t"`
		B int `json:"b"`
	}

	Axis struct {
		Title      *Title `json:"title,omitempty"`
		TickPrefix string `json:"tickprefix,omitempty"`
		TickFormat string `json:"tickformat,omitempty"`
		GridColor  string `json:"gridcolor,omitempty"`
		Overlaying string `json:"overlaying,omitempty"`
		Side       string `json:"side,omitempty"`
		ShowGrid   *bool  `json:"showgrid,omitempty"`
		AutoRange  string `json:"autorange,omitempty"`
		Type       string `json:"type,omitempty"`
	}

	Legend struct {
		Orientation string  `json:"orientation,omitempty"`
		X           float64 `json:"x"`
		Y           float64 `json:"y"`
	}
)

// Palette of the dashboard.
const (
	ColorCredit = "#10b981"
	ColorDebit  = "#ef4444"
	ColorNet    = "#3b82f6"
	ColorAccent = "#8b5cf6"

	colorPaper = "#0f172a"
	colorPlot  = "#111827"
	colorGrid  = "#1f2937"
	colorFont  = "#e5e7eb"
)

var sequence = []string{
	"#3b82f6", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6",
	"#06b6d4", "#ec4899", "#84cc16", "#f97316", "#64748b",
}

func boolPtr(b bool) *bool { return &b }

// baseLayout is the dark theme shared by every chart.
func baseLayout(title string, height int) Layout {
	return Layout{
		Title:        &Title{Text: title},
		Height:       height,
		PaperBGColor: colorPaper,
		PlotBGColor:  colorPlot,
		Font:         &Font{Color: colorFont, Family: "Inter, system-ui, sans-serif", Size: 12},
		Margin:       &Margin{L: 60, R: 30, T: 60, B: 50},
		Legend:       &Legend{Orientation: "h", X: 0, Y: 1.12},
		XAxis:        &Axis{GridColor: colorGrid},
		YAxis:        &Axis{GridColor: colorGrid, TickPrefix: "R$ ", TickFormat: ",.0f"},
	}
}
