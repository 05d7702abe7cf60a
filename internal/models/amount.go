package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a money value as the remote API stores it. The API sends amounts
// either as JSON numbers or as numeric strings ("10000"), and blank strings
// for fields nobody filled in, so decoding accepts all three.
type Amount struct {
	decimal.Decimal
}

func NewAmount(v float64) Amount {
	return Amount{decimal.NewFromFloat(v)}
}

func AmountFromInt(v int64) Amount {
	return Amount{decimal.NewFromInt(v)}
}

func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{d}
}

// ParseAmount parses "1200", "1200.50" or "" (zero).
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{d}, nil
}

func (a Amount) Plus(b Amount) Amount {
	return Amount{a.Decimal.Add(b.Decimal)}
}

func (a Amount) Minus(b Amount) Amount {
	return Amount{a.Decimal.Sub(b.Decimal)}
}

func (a Amount) AbsValue() Amount {
	return Amount{a.Decimal.Abs()}
}

// MarshalJSON writes the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	parsed, err := ParseAmount(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Amount) MarshalCSV() (string, error) {
	return a.Decimal.StringFixed(2), nil
}

// Sum adds up amounts; an empty list sums to zero.
func Sum(amounts ...Amount) Amount {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.Decimal)
	}
	return Amount{total}
}
