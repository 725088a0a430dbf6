package aggregate

import (
	"github.com/shopspring/decimal"

	"fluxo/internal/core"
)

// KPISet holds the headline figures of a table.
type KPISet struct {
	Credits core.Money `json:"credits"`
	Debits  core.Money `json:"debits"`
	Net     core.Money `json:"net"`
	// Variation is the change of net in percent between the last two months
	// that have transactions. It is zero with fewer than two such months or
	// when the earlier one nets to zero.
	Variation     float64    `json:"variation"`
	Count         int        `json:"count"`
	AverageTicket core.Money `json:"average_ticket"`
	Months        int        `json:"months"`
}

// KPIs summarizes the table.
func KPIs(t core.Table) KPISet {
	var k KPISet
	for _, tx := range t.Transactions {
		k.Credits = k.Credits.Add(tx.Credit())
		k.Debits = k.Debits.Add(tx.Debit())
	}
	k.Net = k.Credits.Sub(k.Debits)
	k.Count = len(t.Transactions)
	if k.Count > 0 {
		avg := k.Net.Decimal().Div(decimal.NewFromInt(int64(k.Count))).Abs()
		k.AverageTicket = core.MoneyFromDecimal(avg)
	}

	months := Periods(t, Month)
	k.Months = len(months)
	var active []Period
	for _, p := range months {
		if p.Count > 0 {
			active = append(active, p)
		}
	}
	if n := len(active); n >= 2 {
		k.Variation = variation(active[n-1].Net, active[n-2].Net)
	}
	return k
}

// variation returns (current - previous) / |previous| * 100, rounded to 4 places.
func variation(current, previous core.Money) float64 {
	if previous.IsZero() {
		return 0
	}
	v := decimal.NewFromInt(current.Cents - previous.Cents).
		Div(decimal.NewFromInt(previous.Abs().Cents)).
		Mul(decimal.NewFromInt(100)).
		Round(4)
	f, _ := v.Float64()
	return f
}
