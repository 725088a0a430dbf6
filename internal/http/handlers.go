package http

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fluxo/internal/aggregate"
	"fluxo/internal/loader"
	"fluxo/internal/log"
	"fluxo/internal/present"
	"fluxo/internal/services"
)

// pageData feeds dashboard.html.
type pageData struct {
	services.Dashboard
	// QueryString is already encoded.
	QueryString template.URL
	ChartNames  []string
	Views       []aggregate.View
	Periods     []aggregate.Granularity
}

// errorData feeds error.html.
type errorData struct {
	Panel  ErrorPanel
	Source string
}

// summaryResponse is the body of /api/summary.
type summaryResponse struct {
	Source        string                        `json:"source"`
	Report        loader.Report                 `json:"report"`
	Query         services.Query                `json:"query"`
	Summary       aggregate.Summary             `json:"summary"`
	Cards         []present.Card                `json:"cards"`
	Contributions aggregate.ContributionSummary `json:"contributions"`
	Choices       services.Choices              `json:"choices"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query())
	if err != nil {
		s.renderError(w, r, BadRequestPanel(err))
		return
	}

	d, err := s.dashboard.Build(r.Context(), q)
	if err != nil {
		s.renderError(w, r, s.panel(r, err))
		return
	}

	data := pageData{
		Dashboard:   d,
		QueryString: template.URL(EncodeQuery(d.Query).Encode()),
		ChartNames:  present.ChartNames,
		Views:       []aggregate.View{aggregate.ViewOperational, aggregate.ViewComplete},
		Periods:     []aggregate.Granularity{aggregate.Month, aggregate.Quarter, aggregate.Year},
	}
	s.render(w, r, http.StatusOK, "dashboard.html", data)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query())
	if err != nil {
		writePanelJSON(w, BadRequestPanel(err))
		return
	}
	d, err := s.dashboard.Build(r.Context(), q)
	if err != nil {
		writePanelJSON(w, s.panel(r, err))
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Source:        d.Source,
		Report:        d.Report,
		Query:         d.Query,
		Summary:       d.Summary,
		Cards:         d.Cards,
		Contributions: d.Contributions,
		Choices:       d.Choices,
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	q, err := ParseQuery(r.URL.Query())
	if err != nil {
		writePanelJSON(w, BadRequestPanel(err))
		return
	}
	fig, err := s.dashboard.Chart(r.Context(), name, q)
	if err != nil {
		writePanelJSON(w, s.panel(r, err))
		return
	}
	writeJSON(w, http.StatusOK, fig)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"metrics": s.tracer.GetMetrics(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.dashboard.Ready(r.Context()); err != nil {
		writePanelJSON(w, s.panel(r, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"source": s.dashboard.Source(),
	})
}

// panel classifies err and logs anything that is not a user-fixable input problem.
func (s *Server) panel(r *http.Request, err error) ErrorPanel {
	p := PanelFor(err)
	if p.Kind == PanelInternal {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Dashboard request failed", err, log.ComponentHTTP, log.OpRender, nil)
	}
	return p
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, p ErrorPanel) {
	s.render(w, r, p.Status, "error.html", errorData{Panel: p, Source: s.dashboard.Source()})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).
			ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
