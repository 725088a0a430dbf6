// Package loader turns the raw rows of a spreadsheet export into a normalized,
// date-ordered transaction table.
package loader

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fluxo/internal/core"
	"fluxo/internal/log"
	"fluxo/internal/rules"
	"fluxo/internal/source"
)

// Options control field coercion.
type Options struct {
	// DateFormat is a Go time layout; DefaultDateFormat when empty.
	DateFormat string
	// Decimal applies to sources that do not declare their own style.
	Decimal core.DecimalStyle
	Rules   rules.Rules
}

// DefaultOptions reads pt-BR exports with the built-in classification rules.
func DefaultOptions() Options {
	return Options{DateFormat: DefaultDateFormat, Decimal: core.DecimalComma, Rules: rules.Default()}
}

// RowIssue records a data row that was skipped.
type RowIssue struct {
	Row    int    `json:"row"`
	Column string `json:"column,omitempty"`
	Reason string `json:"reason"`
}

// Report summarizes a load.
type Report struct {
	Source       string     `json:"source"`
	Rows         int        `json:"rows"`
	Transactions int        `json:"transactions"`
	Skipped      int        `json:"skipped"`
	Issues       []RowIssue `json:"issues,omitempty"`
}

// Result is the output of a load.
type Result struct {
	Table  core.Table
	Report Report
}

type Loader struct {
	opts   Options
	logger *log.Logger
}

func New(opts Options, logger *log.Logger) *Loader {
	if opts.DateFormat == "" {
		opts.DateFormat = DefaultDateFormat
	}
	if !opts.Decimal.IsValid() {
		opts.Decimal = core.DecimalComma
	}
	if opts.Rules.FinancialSubgroup == "" {
		opts.Rules = rules.Default()
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Loader{opts: opts, logger: logger.WithComponent(log.ComponentLoader)}
}

// Load reads every row from src and normalizes them.
// A missing source yields *core.MissingInputError; a missing required column
// yields *core.MalformedDataError. Bad rows are skipped and reported.
func (l *Loader) Load(ctx context.Context, src source.Reader) (Result, error) {
	set, err := src.ReadRows(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load %s: %w", src.Describe(), err)
	}
	res, err := l.Normalize(src.Describe(), set)
	if err != nil {
		return Result{}, fmt.Errorf("load %s: %w", src.Describe(), err)
	}
	log.NewStructuredLogger(l.logger).LogLoad(ctx, res.Report.Source, res.Report.Rows, res.Report.Transactions, res.Report.Skipped)
	for _, issue := range res.Report.Issues {
		l.logger.DebugContext(ctx, "Row skipped", "row", issue.Row, "column", issue.Column, "reason", issue.Reason)
	}
	return res, nil
}

// Normalize converts a raw row set into a transaction table.
func (l *Loader) Normalize(name string, set source.RowSet) (Result, error) {
	columns, err := headerMap(set.Header)
	if err != nil {
		return Result{}, err
	}

	style := set.Decimal
	if style == "" {
		style = l.opts.Decimal
	}

	n := &normalizer{
		opts:    l.opts,
		style:   style,
		columns: columns,
		upper:   cases.Upper(language.BrazilianPortuguese),
	}

	res := Result{
		Table:  core.Table{Source: name},
		Report: Report{Source: name, Rows: len(set.Rows)},
	}
	for i, row := range set.Rows {
		txs, issue := n.row(i+1, row)
		if issue != nil {
			res.Report.Issues = append(res.Report.Issues, *issue)
			continue
		}
		res.Table.Transactions = append(res.Table.Transactions, txs...)
	}

	sort.SliceStable(res.Table.Transactions, func(i, j int) bool {
		a, b := res.Table.Transactions[i], res.Table.Transactions[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.Before(b.Date.Time)
		}
		return a.Row < b.Row
	})

	res.Report.Transactions = len(res.Table.Transactions)
	res.Report.Skipped = len(res.Report.Issues)
	return res, nil
}

type normalizer struct {
	opts    Options
	style   core.DecimalStyle
	columns map[string]int
	upper   cases.Caser
}

// row converts one data row into one or two transactions, or an issue.
func (n *normalizer) row(num int, row []string) ([]core.Transaction, *RowIssue) {
	rawDate, ok := safeGet(row, n.columns[ColDate])
	if !ok {
		return nil, &RowIssue{Row: num, Reason: fmt.Sprintf("too few fields (%d)", len(row))}
	}
	date, err := parseDate(rawDate, n.opts.DateFormat)
	if err != nil {
		return nil, &RowIssue{Row: num, Column: ColDate, Reason: fmt.Sprintf("%v: %q", err, strings.TrimSpace(rawDate))}
	}

	inflow, issue := n.amount(num, row, ColInflow)
	if issue != nil {
		return nil, issue
	}
	outflow, issue := n.amount(num, row, ColOutflow)
	if issue != nil {
		return nil, issue
	}
	if inflow.IsZero() && outflow.IsZero() {
		return nil, &RowIssue{Row: num, Reason: "no amount"}
	}

	base := core.Transaction{
		Row:      num,
		Date:     date,
		Group:    n.text(row, ColGroup),
		Subgroup: n.text(row, ColSubgroup),
		Nature:   n.text(row, ColNature),
		Supplier: n.text(row, ColSupplier),
		Account:  n.text(row, ColAccount),
	}
	base.Kind = n.opts.Rules.Classify(base.Subgroup, base.Nature)

	var out []core.Transaction
	if !inflow.IsZero() {
		tx := base
		tx.Amount = inflow
		tx.Direction = core.Credit
		if inflow.Cents < 0 {
			tx.Direction = core.Debit
		}
		out = append(out, tx)
	}
	if !outflow.IsZero() {
		tx := base
		tx.Amount = outflow.Abs().Neg()
		tx.Direction = core.Debit
		out = append(out, tx)
	}
	for _, tx := range out {
		if err := tx.Validate(); err != nil {
			return nil, &RowIssue{Row: num, Reason: err.Error()}
		}
	}
	return out, nil
}

func (n *normalizer) amount(num int, row []string, column string) (core.Money, *RowIssue) {
	raw, _ := safeGet(row, n.columns[column])
	m, err := core.ParseAmount(raw, n.style)
	if err != nil {
		return core.Money{}, &RowIssue{Row: num, Column: column, Reason: err.Error()}
	}
	return m, nil
}

// text trims, collapses blanks and upper-cases a cell; empty cells become core.Unassigned.
func (n *normalizer) text(row []string, column string) string {
	idx, ok := n.columns[column]
	if !ok {
		return core.Unassigned
	}
	raw, _ := safeGet(row, idx)
	v := strings.Join(strings.Fields(raw), " ")
	if v == "" {
		return core.Unassigned
	}
	return n.upper.String(v)
}
