package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fluxo/internal/loader"
	"fluxo/internal/present"
	"fluxo/internal/services"
	"fluxo/internal/source"
	"fluxo/internal/source/memory"
)

var header = []string{"Data", "Grupo", "Subgrupo", "Natureza", "FORNECEDOR", "Entrada (R$)", "Saída (R$)", "Name"}

var rows = [][]string{
	{"10/01/2024", "Moradia", "Despesas fixas", "Rent", "Imobiliária", "", "1.000,00", "PJ"},
	{"05/01/2024", "Receitas", "Operacional", "Salary", "Acme <b>", "3.000,00", "", "PJ"},
	{"20/02/2024", "Bancos", "Financeiro", "Transf. entre contas", "Banco", "", "500,00", "PJ"},
	{"??", "Moradia", "Despesas fixas", "Rent", "Imobiliária", "", "1.000,00", "PJ"},
}

func newTestServer(t *testing.T, src source.Reader) *Server {
	t.Helper()
	dash := services.NewDashboardService(src, loader.New(loader.DefaultOptions(), nil), services.DashboardOptions{}, nil)
	srv, err := NewServer(":0", dash, nil)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t, memory.New("Fluxo Financeiro.csv", header, rows...))

	rr := get(t, srv, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{"Fluxo Financeiro", "Entradas", "R$ 3.000,00", `id="chart-cashflow"`, "1 linha(s) ignorada(s) de 4"} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
	if strings.Contains(body, "ACME <B>") {
		t.Error("supplier label was not escaped")
	}
	if got := rr.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing security headers")
	}
}

func TestIndexMissingInput(t *testing.T) {
	store := memory.NewMissing("Fluxo Financeiro.csv")
	srv := newTestServer(t, store)

	rr := get(t, srv, "/")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d, want 503", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Arquivo de dados não encontrado") || !strings.Contains(body, "Fluxo Financeiro.csv") {
		t.Errorf("missing-input panel not rendered: %s", body)
	}

	// placing the file and refreshing recovers
	store.Set(source.RowSet{Header: header, Rows: rows})
	if rr := get(t, srv, "/"); rr.Code != http.StatusOK {
		t.Errorf("after placing the file status=%d", rr.Code)
	}
}

func TestIndexMalformedHeader(t *testing.T) {
	srv := newTestServer(t, memory.New("bad.csv", []string{"Data", "Grupo"}))

	rr := get(t, srv, "/")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, want 422", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Dados inválidos") {
		t.Error("malformed-data panel not rendered")
	}
}

func TestIndexBadQuery(t *testing.T) {
	srv := newTestServer(t, memory.New("Fluxo Financeiro.csv", header, rows...))

	rr := get(t, srv, "/?view=everything")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Filtro inválido") {
		t.Error("bad-request panel not rendered")
	}
}

func TestSummaryAPI(t *testing.T) {
	srv := newTestServer(t, memory.New("Fluxo Financeiro.csv", header, rows...))

	var operational, complete struct {
		Summary struct {
			KPIs struct {
				Count int `json:"count"`
			} `json:"kpis"`
		} `json:"summary"`
		Report loader.Report `json:"report"`
	}

	rr := get(t, srv, "/api/summary")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &operational); err != nil {
		t.Fatalf("decode: %v", err)
	}
	rr = get(t, srv, "/api/summary?view=complete")
	if err := json.Unmarshal(rr.Body.Bytes(), &complete); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if operational.Summary.KPIs.Count != 2 {
		t.Errorf("operational count = %d, want 2", operational.Summary.KPIs.Count)
	}
	if complete.Summary.KPIs.Count != 3 {
		t.Errorf("complete count = %d, want 3", complete.Summary.KPIs.Count)
	}
	if operational.Report.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", operational.Report.Skipped)
	}

	first := get(t, srv, "/api/summary?view=complete").Body.String()
	if first != rr.Body.String() {
		t.Error("summary output is not deterministic")
	}
}

func TestChartAPI(t *testing.T) {
	srv := newTestServer(t, memory.New("Fluxo Financeiro.csv", header, rows...))

	for _, name := range present.ChartNames {
		rr := get(t, srv, "/api/charts/"+name+"?period=quarter")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status=%d body=%s", name, rr.Code, rr.Body.String())
			continue
		}
		var fig present.Figure
		if err := json.Unmarshal(rr.Body.Bytes(), &fig); err != nil {
			t.Errorf("%s decode: %v", name, err)
		}
	}

	rr := get(t, srv, "/api/charts/pie-in-the-sky")
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown chart status=%d, want 404", rr.Code)
	}
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, memory.New("Fluxo Financeiro.csv", header, rows...))
	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := get(t, srv, path); rr.Code != http.StatusOK {
			t.Errorf("%s status=%d", path, rr.Code)
		}
	}

	missing := newTestServer(t, memory.NewMissing("gone.csv"))
	if rr := get(t, missing, "/healthz"); rr.Code != http.StatusOK {
		t.Errorf("healthz should not depend on the source, status=%d", rr.Code)
	}
	rr := get(t, missing, "/readyz")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status=%d, want 503", rr.Code)
	}
	var panel ErrorPanel
	if err := json.Unmarshal(rr.Body.Bytes(), &panel); err != nil || panel.Kind != PanelMissingInput || panel.Path != "gone.csv" {
		t.Errorf("readyz panel = %+v, %v", panel, err)
	}
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, memory.New("Fluxo Financeiro.csv", header, rows...))
	for _, path := range []string{"/static/app.css", "/static/dashboard.js"} {
		rr := get(t, srv, path)
		if rr.Code != http.StatusOK {
			t.Errorf("%s status=%d", path, rr.Code)
		}
		if got := rr.Header().Get("Cache-Control"); got != "public, max-age=3600" {
			t.Errorf("%s Cache-Control = %q", path, got)
		}
	}
	if rr := get(t, srv, "/nope"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown route status=%d", rr.Code)
	}
}
