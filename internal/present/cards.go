package present

import (
	"strconv"

	"fluxo/internal/aggregate"
)

// Tone drives card coloring.
type Tone string

const (
	ToneNeutral  Tone = "neutral"
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
)

// Card is one summary scalar.
type Card struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
	Delta string `json:"delta,omitempty"`
	Tone  Tone   `json:"tone"`
}

// Cards returns the summary cards in display order.
func Cards(k aggregate.KPISet, skipped int) []Card {
	net := Card{Key: "net", Label: "Saldo", Value: FormatBRL(k.Net), Tone: toneOf(k.Net.Cents)}
	if k.Months >= 2 {
		net.Delta = FormatDelta(k.Variation)
	}

	skippedTone := ToneNeutral
	if skipped > 0 {
		skippedTone = ToneNegative
	}

	return []Card{
		{Key: "credits", Label: "Entradas", Value: FormatBRL(k.Credits), Tone: TonePositive},
		{Key: "debits", Label: "Saídas", Value: FormatBRL(k.Debits), Tone: ToneNegative},
		net,
		{Key: "count", Label: "Transações", Value: strconv.Itoa(k.Count), Tone: ToneNeutral},
		{Key: "ticket", Label: "Ticket médio", Value: FormatBRL(k.AverageTicket), Tone: ToneNeutral},
		{Key: "skipped", Label: "Linhas ignoradas", Value: strconv.Itoa(skipped), Tone: skippedTone},
	}
}

func toneOf(cents int64) Tone {
	switch {
	case cents > 0:
		return TonePositive
	case cents < 0:
		return ToneNegative
	default:
		return ToneNeutral
	}
}
