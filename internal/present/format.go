// Package present maps aggregates to display values: formatted currency,
// summary cards and Plotly figure specifications.
package present

import (
	"fmt"
	"strconv"
	"strings"

	"fluxo/internal/aggregate"
	"fluxo/internal/core"
)

var monthAbbr = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// FormatBRL formats cents as Brazilian currency (e.g., "R$ 1.234,56", "-R$ 10,00").
func FormatBRL(m core.Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := groupThousands(strconv.FormatInt(cents/100, 10)) + "," + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-R$ " + s
	}
	return "R$ " + s
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatPercent formats a percentage value with one decimal ("25.0%").
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatShare formats a 0..1 share as a percentage ("25.0%").
func FormatShare(share float64) string {
	return FormatPercent(share * 100)
}

// FormatDelta formats a signed percentage change ("+12.5%", "-3.0%").
func FormatDelta(pct float64) string {
	return fmt.Sprintf("%+.1f%%", pct)
}

// MonthLabel returns "Jan/2024" style labels.
func MonthLabel(d core.Date) string {
	return fmt.Sprintf("%s/%d", monthAbbr[d.Month()-1], d.Year())
}

// PeriodLabel labels a period according to its granularity.
func PeriodLabel(p aggregate.Period, g aggregate.Granularity) string {
	switch g {
	case aggregate.Year:
		return strconv.Itoa(p.Start.Year())
	case aggregate.Quarter:
		return fmt.Sprintf("T%d/%d", (int(p.Start.Month())-1)/3+1, p.Start.Year())
	default:
		return MonthLabel(p.Start)
	}
}

// FormatDate returns dd/mm/yyyy.
func FormatDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02/01/2006")
}
