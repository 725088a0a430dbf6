// Package aggregate computes deterministic summaries over a transaction table:
// period totals, category shares, breakdowns, KPIs and contribution interest.
//
// Every function is pure. Output order is fixed and ties are broken by label,
// so equal input always produces equal output.
package aggregate

import (
	"fmt"
	"time"

	"fluxo/internal/core"
)

// Granularity selects the period bucket size.
type Granularity string

const (
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Year    Granularity = "year"
)

func (g Granularity) IsValid() bool {
	return g == Month || g == Quarter || g == Year
}

// Period is the aggregate of one time bucket. Debits is a non-negative
// magnitude and Net is always Credits minus Debits. Running is the cumulative
// net up to and including the bucket.
type Period struct {
	Key     string     `json:"key"`
	Start   core.Date  `json:"start"`
	Credits core.Money `json:"credits"`
	Debits  core.Money `json:"debits"`
	Net     core.Money `json:"net"`
	Running core.Money `json:"running"`
	Count   int        `json:"count"`
}

// Periods buckets the table by granularity. Buckets without transactions
// between the first and last one are included with zero totals.
func Periods(t core.Table, g Granularity) []Period {
	if !g.IsValid() {
		g = Month
	}
	first, last, ok := t.Span()
	if !ok {
		return nil
	}

	byStart := make(map[time.Time]*Period)
	var out []Period
	for s := bucketStart(first, g); !s.After(last.Time); s = nextBucket(s, g) {
		out = append(out, Period{Key: bucketKey(s, g), Start: core.Date{Time: s}})
	}
	for i := range out {
		byStart[out[i].Start.Time] = &out[i]
	}

	for _, tx := range t.Transactions {
		p := byStart[bucketStart(tx.Date, g)]
		p.Credits = p.Credits.Add(tx.Credit())
		p.Debits = p.Debits.Add(tx.Debit())
		p.Count++
	}

	var running core.Money
	for i := range out {
		out[i].Net = out[i].Credits.Sub(out[i].Debits)
		running = running.Add(out[i].Net)
		out[i].Running = running
	}
	return out
}

// LastN returns at most the n most recent periods.
func LastN(periods []Period, n int) []Period {
	if n <= 0 || len(periods) <= n {
		return periods
	}
	return periods[len(periods)-n:]
}

func bucketStart(d core.Date, g Granularity) time.Time {
	y, m, _ := d.Date()
	switch g {
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	case Quarter:
		q := (int(m) - 1) / 3
		return time.Date(y, time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	}
}

func nextBucket(s time.Time, g Granularity) time.Time {
	switch g {
	case Year:
		return s.AddDate(1, 0, 0)
	case Quarter:
		return s.AddDate(0, 3, 0)
	default:
		return s.AddDate(0, 1, 0)
	}
}

func bucketKey(s time.Time, g Granularity) string {
	switch g {
	case Year:
		return fmt.Sprintf("%04d", s.Year())
	case Quarter:
		return fmt.Sprintf("%04d-Q%d", s.Year(), (int(s.Month())-1)/3+1)
	default:
		return s.Format("2006-01")
	}
}
