package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"fluxo/internal/core"
	"fluxo/internal/log"
	"fluxo/internal/middleware/security"
	"fluxo/internal/middleware/trace"
	"fluxo/internal/present"
	"fluxo/internal/services"
	appweb "fluxo/web"
)

// requestTimeout bounds one render, including remote source reads.
const requestTimeout = 30 * time.Second

type Server struct {
	http.Server
	templates *template.Template
	dashboard *services.DashboardService
	tracer    *trace.Middleware
	logger    *log.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, dashboard *services.DashboardService, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Discard()
	}
	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates: t,
		dashboard: dashboard,
		tracer:    trace.NewMiddleware(logger.WithComponent(log.ComponentHTTP)),
		logger:    logger.WithComponent(log.ComponentHTTP),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	r.Group(func(r chi.Router) {
		r.Use(security.NoStore)
		r.Use(chimw.Compress(5))
		r.Use(chimw.Timeout(requestTimeout))
		r.Get("/", s.handleIndex)
		r.Get("/api/summary", s.handleSummary)
		r.Get("/api/charts/{name}", s.handleChart)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writePanelJSON(w, ErrorPanel{
			Status:  http.StatusNotFound,
			Kind:    PanelNotFound,
			Title:   "Página não encontrada",
			Message: r.URL.Path,
		})
	})

	return r
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"brl":   present.FormatBRL,
		"date":  present.FormatDate,
		"share": present.FormatShare,
		"isoDate": func(d core.Date) string {
			if d.IsZero() {
				return ""
			}
			return d.Format(time.DateOnly)
		},
		"selected": func(list []string, v string) bool {
			return slices.ContainsFunc(list, func(s string) bool { return strings.EqualFold(s, v) })
		},
		"negative": func(m core.Money) bool { return m.Cents < 0 },
		"rate":     func(r float64) string { return fmt.Sprintf("%.4f%%", r*100) },
		"months":   func(m float64) string { return fmt.Sprintf("%.1f", m) },
	}
}
