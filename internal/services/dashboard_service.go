package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fluxo/internal/aggregate"
	"fluxo/internal/cache"
	"fluxo/internal/core"
	"fluxo/internal/loader"
	"fluxo/internal/log"
	"fluxo/internal/present"
	"fluxo/internal/source"
)

// DashboardOptions configure a DashboardService.
type DashboardOptions struct {
	// RemoteTTL memoizes sources without a fingerprint; zero disables it.
	RemoteTTL     time.Duration
	TopN          int
	Contributions aggregate.ContributionOptions
}

// Query selects what one render shows.
type Query struct {
	Filter      aggregate.Filter
	Granularity aggregate.Granularity
}

// Choices are the values offered by the dashboard filters.
type Choices struct {
	Groups    []string  `json:"groups"`
	Suppliers []string  `json:"suppliers"`
	Natures   []string  `json:"natures"`
	From      core.Date `json:"from"`
	To        core.Date `json:"to"`
}

// Dashboard is everything one page render needs.
type Dashboard struct {
	Source        string                        `json:"source"`
	Report        loader.Report                 `json:"report"`
	Query         Query                         `json:"query"`
	Summary       aggregate.Summary             `json:"summary"`
	Cards         []present.Card                `json:"cards"`
	Charts        map[string]present.Figure     `json:"charts"`
	Contributions aggregate.ContributionSummary `json:"contributions"`
	Choices       Choices                       `json:"choices"`
}

// DashboardService runs Loader, Aggregator and Presenter for each render.
type DashboardService struct {
	src    source.Reader
	loader *loader.Loader
	opts   DashboardOptions
	memo   *cache.LRUCache[loader.Result]
	remote *cache.LRUCache[loader.Result]
	logger *log.Logger
	now    func() time.Time
}

func NewDashboardService(src source.Reader, l *loader.Loader, opts DashboardOptions, logger *log.Logger) *DashboardService {
	if logger == nil {
		logger = log.Discard()
	}
	if opts.TopN <= 0 {
		opts.TopN = aggregate.DefaultTopN
	}
	s := &DashboardService{
		src:    src,
		loader: l,
		opts:   opts,
		memo:   cache.NewLRUCache[loader.Result](4, 0),
		logger: logger.WithComponent(log.ComponentDashboard),
		now:    time.Now,
	}
	if opts.RemoteTTL > 0 {
		s.remote = cache.NewLRUCache[loader.Result](1, opts.RemoteTTL)
	}
	return s
}

// Caches returns the memo caches so a cache.Manager can clean them.
func (s *DashboardService) Caches() []cache.Cleaner {
	out := []cache.Cleaner{s.memo}
	if s.remote != nil {
		out = append(out, s.remote)
	}
	return out
}

// Invalidate drops every memoized table.
func (s *DashboardService) Invalidate() {
	s.memo.Purge()
	if s.remote != nil {
		s.remote.Purge()
	}
}

// Warm loads the source into the memo ahead of the next render.
func (s *DashboardService) Warm(ctx context.Context) error {
	_, err := s.Load(ctx)
	return err
}

// Source names the configured tabular source.
func (s *DashboardService) Source() string {
	return s.src.Describe()
}

// Load returns the normalized table. Sources with a fingerprint are re-parsed
// only when the fingerprint changes.
func (s *DashboardService) Load(ctx context.Context) (loader.Result, error) {
	if fp, ok := s.src.(source.Fingerprinter); ok {
		key, err := fp.Fingerprint(ctx)
		if err != nil {
			return loader.Result{}, fmt.Errorf("load %s: %w", s.src.Describe(), err)
		}
		if res, ok := s.memo.Get(key); ok {
			return res, nil
		}
		res, err := s.loader.Load(ctx, s.src)
		if err != nil {
			return loader.Result{}, err
		}
		s.memo.Set(key, res)
		return res, nil
	}

	key := s.src.Describe()
	if s.remote != nil {
		if res, ok := s.remote.Get(key); ok {
			return res, nil
		}
	}
	res, err := s.loader.Load(ctx, s.src)
	if err != nil {
		return loader.Result{}, err
	}
	if s.remote != nil {
		s.remote.Set(key, res)
	}
	return res, nil
}

// Build loads the source and computes the dashboard for q.
func (s *DashboardService) Build(ctx context.Context, q Query) (Dashboard, error) {
	res, err := s.Load(ctx)
	if err != nil {
		s.logFailure(ctx, err)
		return Dashboard{}, err
	}
	return s.Compose(res, q), nil
}

// Compose turns a load result into a dashboard. It is deterministic for a
// fixed clock.
func (s *DashboardService) Compose(res loader.Result, q Query) Dashboard {
	if !q.Granularity.IsValid() {
		q.Granularity = aggregate.Month
	}
	filtered := q.Filter.Apply(res.Table)
	summary := aggregate.Summarize(filtered, q.Granularity, s.opts.TopN)

	contrib := s.opts.Contributions
	if contrib.AsOf.IsZero() {
		now := s.now()
		contrib.AsOf = core.NewDate(now.Year(), int(now.Month()), now.Day())
	}

	// Contributions sit in the financial subgroup, so the view filter never hides them.
	cf := q.Filter
	cf.View = aggregate.ViewComplete

	return Dashboard{
		Source:        res.Table.Source,
		Report:        res.Report,
		Query:         q,
		Summary:       summary,
		Cards:         present.Cards(summary.KPIs, res.Report.Skipped),
		Charts:        present.Charts(summary),
		Contributions: aggregate.Contributions(cf.Apply(res.Table), contrib),
		Choices:       choices(res.Table),
	}
}

// Chart builds a single named figure for q.
func (s *DashboardService) Chart(ctx context.Context, name string, q Query) (present.Figure, error) {
	res, err := s.Load(ctx)
	if err != nil {
		s.logFailure(ctx, err)
		return present.Figure{}, err
	}
	if !q.Granularity.IsValid() {
		q.Granularity = aggregate.Month
	}
	summary := aggregate.Summarize(q.Filter.Apply(res.Table), q.Granularity, s.opts.TopN)
	return present.Chart(name, summary)
}

// Ready reports whether the source can be reached.
func (s *DashboardService) Ready(ctx context.Context) error {
	if fp, ok := s.src.(source.Fingerprinter); ok {
		_, err := fp.Fingerprint(ctx)
		return err
	}
	_, err := s.Load(ctx)
	return err
}

func (s *DashboardService) logFailure(ctx context.Context, err error) {
	switch {
	case core.IsMissingInput(err):
		s.logger.WarnContext(ctx, "Input source not found", log.FieldSource, s.src.Describe())
	case core.IsMalformedData(err):
		s.logger.WarnContext(ctx, "Input source rejected", log.FieldSource, s.src.Describe(), log.FieldError, err)
	case errors.Is(err, context.Canceled):
	default:
		s.logger.ErrorContext(ctx, "Failed to load dashboard", log.FieldSource, s.src.Describe(), log.FieldError, err)
	}
}

func choices(t core.Table) Choices {
	c := Choices{
		Groups:    t.Distinct(func(tx core.Transaction) string { return tx.Group }),
		Suppliers: t.Distinct(func(tx core.Transaction) string { return tx.Supplier }),
		Natures:   t.Distinct(func(tx core.Transaction) string { return tx.Nature }),
	}
	c.From, c.To, _ = t.Span()
	return c
}
