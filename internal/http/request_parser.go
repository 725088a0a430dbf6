// Package http provides HTTP server and handler implementations.
//
// This file implements parsing and validation of the dashboard query string.
package http

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"fluxo/internal/aggregate"
	"fluxo/internal/core"
	"fluxo/internal/services"
)

// Query parameters accepted by the dashboard routes.
const (
	ParamFrom     = "from"
	ParamTo       = "to"
	ParamGroup    = "group"
	ParamSupplier = "supplier"
	ParamNature   = "nature"
	ParamView     = "view"
	ParamPeriod   = "period"
)

// queryDateLayouts are tried in order for from/to.
var queryDateLayouts = []string{time.DateOnly, "02/01/2006"}

// ParseQuery builds a dashboard query from URL parameters. Missing parameters
// keep their defaults: the whole date range, every label, the operational
// view and monthly periods.
func ParseQuery(values url.Values) (services.Query, error) {
	q := services.Query{
		Filter:      aggregate.Filter{View: aggregate.ViewOperational},
		Granularity: aggregate.Month,
	}
	var problems []string

	from, err := parseQueryDate(values.Get(ParamFrom))
	if err != nil {
		problems = append(problems, fmt.Sprintf("%s: %v", ParamFrom, err))
	}
	to, err := parseQueryDate(values.Get(ParamTo))
	if err != nil {
		problems = append(problems, fmt.Sprintf("%s: %v", ParamTo, err))
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from.Time) {
		problems = append(problems, "to is before from")
	}
	q.Filter.From, q.Filter.To = from, to

	q.Filter.Groups = parseList(values[ParamGroup])
	q.Filter.Suppliers = parseList(values[ParamSupplier])
	q.Filter.Natures = parseList(values[ParamNature])

	if v := strings.ToLower(strings.TrimSpace(values.Get(ParamView))); v != "" {
		view := aggregate.View(v)
		if !view.IsValid() {
			problems = append(problems, fmt.Sprintf("%s: unknown view %q", ParamView, v))
		}
		q.Filter.View = view
	}
	if v := strings.ToLower(strings.TrimSpace(values.Get(ParamPeriod))); v != "" {
		g := aggregate.Granularity(v)
		if !g.IsValid() {
			problems = append(problems, fmt.Sprintf("%s: unknown period %q", ParamPeriod, v))
		}
		q.Granularity = g
	}

	if len(problems) > 0 {
		return services.Query{}, fmt.Errorf("invalid query: %s", strings.Join(problems, "; "))
	}
	return q, nil
}

// EncodeQuery is the inverse of ParseQuery, used to build links.
func EncodeQuery(q services.Query) url.Values {
	v := url.Values{}
	if !q.Filter.From.IsZero() {
		v.Set(ParamFrom, q.Filter.From.Format(time.DateOnly))
	}
	if !q.Filter.To.IsZero() {
		v.Set(ParamTo, q.Filter.To.Format(time.DateOnly))
	}
	for _, g := range q.Filter.Groups {
		v.Add(ParamGroup, g)
	}
	for _, s := range q.Filter.Suppliers {
		v.Add(ParamSupplier, s)
	}
	for _, n := range q.Filter.Natures {
		v.Add(ParamNature, n)
	}
	if q.Filter.View != "" {
		v.Set(ParamView, string(q.Filter.View))
	}
	if q.Granularity != "" {
		v.Set(ParamPeriod, string(q.Granularity))
	}
	return v
}

func parseQueryDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, nil
	}
	for _, layout := range queryDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.Date{Time: t}, nil
		}
	}
	return core.Date{}, fmt.Errorf("unparseable date %q", s)
}

// parseList reads a repeated parameter. Labels may contain commas, so values
// are never split.
func parseList(raw []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, r := range raw {
		v := sanitizeInput(r)
		if v == "" {
			continue
		}
		key := strings.ToUpper(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
