// Package core provides the domain types shared by every component: calendar
// dates, monetary amounts in integer cents, ledger rows and the failure kinds.
//
// This file contains amount-text normalization. The source ledger is edited by
// hand and its amount cells mix space and comma thousands separators with
// comma or dot decimal separators, so parsing has to canonicalize before use.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmountToCents converts tolerant amount text to non-negative cents.
//
// Accepted forms (all yield canonical cents):
//
//	"1500"      -> 150000
//	"1 500"     -> 150000  (space grouping)
//	"1,500"     -> 150000  (comma grouping: one comma, three digits after)
//	"12,34"     -> 1234    (decimal comma)
//	"12.34"     -> 1234
//	"1,234.50"  -> 123450
//
// A third decimal digit rounds half-up. Signs are rejected; zero is a valid
// amount. Returns ErrParse for anything that does not normalize.
func ParseAmountToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == ' ' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, ErrParse
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrParse
	}
	switch {
	case strings.Contains(s, "."):
		// Dot is the decimal separator; any commas are grouping.
		s = strings.ReplaceAll(s, ",", "")
	case strings.Contains(s, ","):
		i := strings.LastIndex(s, ",")
		if strings.Count(s, ",") == 1 && len(s)-i-1 != 3 {
			// Single comma not followed by a group of three: decimal comma.
			s = s[:i] + "." + s[i+1:]
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	return parseCanonical(s)
}

// parseCanonical parses "123" or "123.45" style text into cents, rounding a
// third fractional digit half-up.
func parseCanonical(s string) (int64, error) {
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrParse
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrParse
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrParse
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrParse
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// DivDays divides an amount evenly over days, rounding half away from zero.
// Amounts here are never negative so half-up is equivalent.
func (m Money) DivDays(days int) Money {
	if days <= 0 {
		return Money{}
	}
	d := int64(days)
	q := m.Cents / d
	if (m.Cents%d)*2 >= d {
		q++
	}
	return Money{Cents: q}
}

// Sub returns m minus o. The result may be negative; clamping is the
// caller's policy.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// IsPositive reports whether the amount is strictly above zero.
func (m Money) IsPositive() bool {
	return m.Cents > 0
}

// Float returns the amount in whole currency units for display and charting.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// String renders the amount with two decimals, e.g. "25000.00".
func (m Money) String() string {
	c := m.Cents
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// PercentOf returns part as a percentage of base. Not clamped: values over
// 100 signal overspend.
func PercentOf(part, base Money) float64 {
	if base.Cents <= 0 {
		return 100
	}
	return float64(part.Cents) / float64(base.Cents) * 100
}
