package aggregate

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"fluxo/internal/core"
	"fluxo/internal/rules"
)

// DefaultMonthlyRate is the contribution correction rate, 0.9477% a month.
var DefaultMonthlyRate = decimal.RequireFromString("0.009477")

// ContributionOptions configure the capital contribution correction.
type ContributionOptions struct {
	// MonthlyRate nil means DefaultMonthlyRate; a zero rate disables interest.
	MonthlyRate *decimal.Decimal
	AsOf        core.Date
	// Amortize makes debits of the rules' amortization groups pay the
	// interest-bearing balance down.
	Amortize bool
	Rules    rules.Rules
}

// Contribution is one corrected capital contribution.
type Contribution struct {
	Date      core.Date  `json:"date"`
	Nature    string     `json:"nature"`
	Supplier  string     `json:"supplier"`
	Account   string     `json:"account"`
	Principal core.Money `json:"principal"`
	Months    float64    `json:"months"`
	Corrected core.Money `json:"corrected"`
	Interest  core.Money `json:"interest"`
}

// ContributionSummary totals the contributions. Outstanding is the corrected
// balance at AsOf: the sum of Corrected, or the amortized balance in
// amortization mode.
type ContributionSummary struct {
	Items       []Contribution `json:"items"`
	Principal   core.Money     `json:"principal"`
	Corrected   core.Money     `json:"corrected"`
	Interest    core.Money     `json:"interest"`
	Amortized   core.Money     `json:"amortized"`
	Outstanding core.Money     `json:"outstanding"`
	Rate        float64        `json:"rate"`
}

// Contributions finds capital contributions (credits whose nature matches the
// contribution keywords) and corrects them by compound monthly interest up to
// AsOf.
func Contributions(t core.Table, opts ContributionOptions) ContributionSummary {
	rate := DefaultMonthlyRate
	if opts.MonthlyRate != nil {
		rate = *opts.MonthlyRate
	}
	if opts.Rules.FinancialSubgroup == "" {
		opts.Rules = rules.Default()
	}
	asOf := opts.AsOf
	if asOf.IsZero() {
		if _, last, ok := t.Span(); ok {
			asOf = last
		}
	}
	r, _ := rate.Float64()
	sum := ContributionSummary{Rate: r}

	type event struct {
		date   core.Date
		row    int
		amount core.Money
	}
	var events []event

	for _, tx := range t.Transactions {
		switch {
		case tx.Direction == core.Credit && opts.Rules.IsContribution(tx.Nature):
			months := monthsBetween(tx.Date, asOf)
			corrected := compound(tx.Amount, r, months)
			sum.Items = append(sum.Items, Contribution{
				Date:      tx.Date,
				Nature:    tx.Nature,
				Supplier:  tx.Supplier,
				Account:   tx.Account,
				Principal: tx.Amount,
				Months:    math.Round(months*100) / 100,
				Corrected: corrected,
				Interest:  corrected.Sub(tx.Amount),
			})
			sum.Principal = sum.Principal.Add(tx.Amount)
			sum.Corrected = sum.Corrected.Add(corrected)
			events = append(events, event{tx.Date, tx.Row, tx.Amount})
		case opts.Amortize && tx.Direction == core.Debit && opts.Rules.IsAmortization(tx.Group):
			sum.Amortized = sum.Amortized.Add(tx.Debit())
			events = append(events, event{tx.Date, tx.Row, tx.Amount})
		}
	}
	sum.Interest = sum.Corrected.Sub(sum.Principal)
	sum.Outstanding = sum.Corrected

	if opts.Amortize && len(events) > 0 {
		sort.SliceStable(events, func(i, j int) bool {
			if !events[i].date.Equal(events[j].date.Time) {
				return events[i].date.Before(events[j].date.Time)
			}
			return events[i].row < events[j].row
		})
		var balance core.Money
		last := events[0].date
		for _, ev := range events {
			balance = compound(balance, r, monthsBetween(last, ev.date)).Add(ev.amount)
			if balance.Cents < 0 {
				balance = core.Money{}
			}
			last = ev.date
		}
		sum.Outstanding = compound(balance, r, monthsBetween(last, asOf))
	}
	return sum
}

// monthsBetween is Δyears·12 + Δmonths + Δdays/30, never negative.
func monthsBetween(from, to core.Date) float64 {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	m := float64((ty-fy)*12+int(tm-fm)) + float64(td-fd)/30
	if m < 0 {
		return 0
	}
	return m
}

func compound(m core.Money, rate, months float64) core.Money {
	if m.IsZero() || months == 0 {
		return m
	}
	factor := decimal.NewFromFloat(math.Pow(1+rate, months))
	return core.MoneyFromDecimal(m.Decimal().Mul(factor))
}
