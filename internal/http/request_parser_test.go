package http

import (
	"net/url"
	"reflect"
	"testing"

	"fluxo/internal/aggregate"
	"fluxo/internal/core"
)

func TestParseQueryDefaults(t *testing.T) {
	q, err := ParseQuery(url.Values{})
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	if q.Filter.View != aggregate.ViewOperational {
		t.Errorf("View = %q, want operational", q.Filter.View)
	}
	if q.Granularity != aggregate.Month {
		t.Errorf("Granularity = %q, want month", q.Granularity)
	}
	if !q.Filter.From.IsZero() || !q.Filter.To.IsZero() || q.Filter.Groups != nil {
		t.Errorf("unexpected filter: %+v", q.Filter)
	}
}

func TestParseQuery(t *testing.T) {
	values := url.Values{
		ParamFrom:     {"01/02/2024"},
		ParamTo:       {"2024-03-31"},
		ParamGroup:    {"Moradia", " moradia ", "Receitas"},
		ParamSupplier: {"Acme, Ltda"},
		ParamNature:   {""},
		ParamView:     {"Complete"},
		ParamPeriod:   {"quarter"},
	}
	q, err := ParseQuery(values)
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	if !q.Filter.From.Equal(core.NewDate(2024, 2, 1).Time) {
		t.Errorf("From = %v", q.Filter.From)
	}
	if !q.Filter.To.Equal(core.NewDate(2024, 3, 31).Time) {
		t.Errorf("To = %v", q.Filter.To)
	}
	if want := []string{"Moradia", "Receitas"}; !reflect.DeepEqual(q.Filter.Groups, want) {
		t.Errorf("Groups = %v, want %v", q.Filter.Groups, want)
	}
	if want := []string{"Acme, Ltda"}; !reflect.DeepEqual(q.Filter.Suppliers, want) {
		t.Errorf("Suppliers = %v, want %v", q.Filter.Suppliers, want)
	}
	if q.Filter.Natures != nil {
		t.Errorf("Natures = %v, want none", q.Filter.Natures)
	}
	if q.Filter.View != aggregate.ViewComplete || q.Granularity != aggregate.Quarter {
		t.Errorf("View/Granularity = %q/%q", q.Filter.View, q.Granularity)
	}

	back, err := ParseQuery(EncodeQuery(q))
	if err != nil {
		t.Fatalf("ParseQuery(EncodeQuery()) error = %v", err)
	}
	if !reflect.DeepEqual(back, q) {
		t.Errorf("EncodeQuery round trip = %+v, want %+v", back, q)
	}
}

func TestParseQueryErrors(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
	}{
		{"bad from", url.Values{ParamFrom: {"yesterday"}}},
		{"bad to", url.Values{ParamTo: {"31/02"}}},
		{"inverted range", url.Values{ParamFrom: {"2024-03-01"}, ParamTo: {"2024-02-01"}}},
		{"bad view", url.Values{ParamView: {"partial"}}},
		{"bad period", url.Values{ParamPeriod: {"week"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseQuery(tt.values); err == nil {
				t.Error("ParseQuery() error = nil, want error")
			}
		})
	}
}

func TestPanelFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"missing", &core.MissingInputError{Path: "x.csv"}, 503, PanelMissingInput},
		{"malformed", &core.MalformedDataError{Column: "Data", Reason: "required column not found"}, 422, PanelMalformedData},
		{"other", errTest("boom"), 500, PanelInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PanelFor(tt.err)
			if p.Status != tt.status || p.Kind != tt.kind {
				t.Errorf("PanelFor() = %d/%s, want %d/%s", p.Status, p.Kind, tt.status, tt.kind)
			}
			if tt.kind == PanelInternal && p.Message == tt.err.Error() {
				t.Error("internal errors must not leak details")
			}
		})
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
