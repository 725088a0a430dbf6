// Package core provides money parsing and handling utilities.
//
// This file contains the locale-aware amount parser used by the loader and the
// cents helpers used by the aggregates.
package core

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// DecimalStyle selects how the decimal separator of an amount is recognised.
type DecimalStyle string

const (
	// DecimalComma reads "1.234,56" (pt-BR spreadsheet exports).
	DecimalComma DecimalStyle = "comma"
	// DecimalPoint reads "1,234.56".
	DecimalPoint DecimalStyle = "point"
	// DecimalAuto treats the right-most separator as the decimal one.
	DecimalAuto DecimalStyle = "auto"
)

func (s DecimalStyle) IsValid() bool {
	switch s {
	case DecimalComma, DecimalPoint, DecimalAuto:
		return true
	default:
		return false
	}
}

// ParseAmount converts a spreadsheet amount cell to signed cents.
//
// Currency symbols, blanks, a leading sign and accounting parentheses are
// accepted. Half-away-from-zero rounding is applied on the third decimal place.
// An empty cell is a zero amount, not an error.
//
// Examples:
//
//	ParseAmount("1.234,56", DecimalComma) -> 123456
//	ParseAmount("R$ -10,5", DecimalComma) -> -1050
//	ParseAmount("(1,234.56)", DecimalPoint) -> -123456
//	ParseAmount("12.345", DecimalAuto)    -> 1235
func ParseAmount(s string, style DecimalStyle) (Money, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, nil
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("R$", "", "$", "", " ", "", " ", "").Replace(s)
	switch {
	case strings.HasPrefix(s, "-"):
		neg = !neg
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "" {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	normalized, err := normalizeSeparators(s, style)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if neg {
		d = d.Neg()
	}
	return MoneyFromDecimal(d), nil
}

// normalizeSeparators rewrites s so that "." is the only (optional) decimal separator.
func normalizeSeparators(s string, style DecimalStyle) (string, error) {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return "", ErrInvalidAmount
		}
	}
	if style == DecimalAuto {
		style = detectStyle(s)
	}
	switch style {
	case DecimalComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case DecimalPoint:
		s = strings.ReplaceAll(s, ",", "")
	default:
		return "", ErrInvalidAmount
	}
	if strings.Count(s, ".") > 1 || strings.ContainsRune(s, ',') {
		return "", ErrInvalidAmount
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	return s, nil
}

func detectStyle(s string) DecimalStyle {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			return DecimalComma
		}
		return DecimalPoint
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return DecimalPoint
		}
		return DecimalComma
	case lastDot >= 0 && strings.Count(s, ".") > 1:
		return DecimalComma
	default:
		return DecimalPoint
	}
}

// MoneyFromDecimal rounds d to cents.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// Decimal returns the amount in currency units as an exact decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the amount in currency units for display and chart series.
// Use cents for calculations to avoid floating-point drift.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) Neg() Money        { return Money{Cents: -m.Cents} }
func (m Money) IsZero() bool      { return m.Cents == 0 }

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return m.Neg()
	}
	return m
}

func sortStrings(s []string) {
	sort.Strings(s)
}
