// Package core provides the domain model for the expense tracker: money,
// dates, ledger records, settings and monthly budgets.
//
// This file contains money parsing and formatting. Amounts are stored as
// integer paise to keep arithmetic exact; rupees appear only at the edges.
package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in paise.
type Money struct {
	Paise int64
}

// FromRupees converts a whole-rupee value to Money.
func FromRupees(r int64) Money {
	return Money{Paise: r * 100}
}

// Rupees returns the rupee value as a float64 for display purposes.
// Use paise for calculations to avoid floating-point drift.
func (m Money) Rupees() float64 {
	return float64(m.Paise) / 100.0
}

// Format renders the amount with a currency symbol and two decimals,
// e.g. "₹123.45".
func (m Money) Format(symbol string) string {
	return fmt.Sprintf("%s%.2f", symbol, m.Rupees())
}

func (m Money) Validate() error {
	if m.Paise <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Paise: m.Paise + o.Paise} }
func (m Money) Sub(o Money) Money { return Money{Paise: m.Paise - o.Paise} }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Paise == 0 }

// Money serializes as a bare paise integer.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Paise, 10)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var p int64
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	m.Paise = p
	return nil
}

// ParseAmount converts a decimal string to paise with half-up rounding on
// the third decimal place. Both dot (12.34) and comma (12,34) separators are
// accepted. Only positive amounts are valid.
//
// Examples:
//
//	ParseAmount("12.34") -> 1234 paise
//	ParseAmount("12,34") -> 1234 paise
//	ParseAmount("12.346") -> 1235 paise (rounds up)
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, ErrInvalidAmount
	}
	var fracPaise int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracPaise = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracPaise += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracPaise++
			}
		}
	}
	paise := iv*100 + fracPaise
	if paise <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Paise: paise}, nil
}
