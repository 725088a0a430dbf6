package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

const (
	Operational       Kind = "operational"
	FinancialExternal Kind = "financial_external"
	FinancialInternal Kind = "financial_internal"
)

// Unassigned replaces blank text cells after normalization.
const Unassigned = "NÃO INFORMADO"

type (
	Direction string
	Kind      string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		Row       int // 1-based data row in the source, header excluded
		Date      Date
		Group     string // Grupo
		Subgroup  string // Subgrupo
		Nature    string // Natureza, the category
		Supplier  string // FORNECEDOR
		Account   string // Name
		Amount    Money  // signed: credits > 0, debits < 0
		Direction Direction
		Kind      Kind
	}

	// Table is the normalized, date-ordered result of a load.
	Table struct {
		Source       string
		Transactions []Transaction
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrZeroAmount       = errors.New("zero amount")
	ErrSignMismatch     = errors.New("amount sign does not match direction")
	ErrInvalidDirection = errors.New("invalid direction")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// YearMonth returns the "YYYY-MM" bucket key of the date.
func (d Date) YearMonth() string {
	return d.Format("2006-01")
}

func (d Direction) Valid() bool {
	return d == Credit || d == Debit
}

// Category is the label used for category breakdowns.
func (t Transaction) Category() string {
	return t.Nature
}

// Credit returns the inflow part of the transaction (zero for debits).
func (t Transaction) Credit() Money {
	if t.Direction == Credit {
		return t.Amount
	}
	return Money{}
}

// Debit returns the outflow magnitude of the transaction (zero for credits).
func (t Transaction) Debit() Money {
	if t.Direction == Debit {
		return t.Amount.Abs()
	}
	return Money{}
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Direction.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, t.Direction)
	}
	if t.Amount.IsZero() {
		return ErrZeroAmount
	}
	if (t.Direction == Credit) != (t.Amount.Cents > 0) {
		return ErrSignMismatch
	}
	return nil
}

// IsEmpty reports whether the table holds no transactions.
func (t Table) IsEmpty() bool {
	return len(t.Transactions) == 0
}

// Span returns the first and last transaction dates. ok is false for an empty table.
func (t Table) Span() (first, last Date, ok bool) {
	if len(t.Transactions) == 0 {
		return Date{}, Date{}, false
	}
	first, last = t.Transactions[0].Date, t.Transactions[0].Date
	for _, tx := range t.Transactions[1:] {
		if tx.Date.Before(first.Time) {
			first = tx.Date
		}
		if tx.Date.After(last.Time) {
			last = tx.Date
		}
	}
	return first, last, true
}

// Distinct returns the sorted set of values picked by field.
func (t Table) Distinct(field func(Transaction) string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, tx := range t.Transactions {
		v := strings.TrimSpace(field(tx))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sortStrings(out)
	return out
}
