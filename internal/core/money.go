// Package core provides the budget domain: records, amounts, normalization,
// filtering and summaries.
//
// This file contains the Amount type. Amounts are decimals in rupiah; an
// invalid Amount stands for a value the source could not coerce to a number
// and is skipped by every aggregate.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	billionExp  = 9
	trillionExp = 12
)

type Amount struct {
	value decimal.Decimal
	valid bool
}

// NewAmount returns a valid amount of the given whole rupiah.
func NewAmount(rupiah int64) Amount {
	return Amount{value: decimal.NewFromInt(rupiah), valid: true}
}

// AmountFromDecimal wraps d as a valid amount.
func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{value: d, valid: true}
}

// InvalidAmount is the not-a-number amount.
func InvalidAmount() Amount {
	return Amount{}
}

// CoerceAmount converts a raw database value into an Amount. Values that
// cannot be read as a finite number give an invalid Amount instead of an error.
//
// Examples:
//
//	CoerceAmount(int64(12))     -> 12
//	CoerceAmount([]byte("1.5")) -> 1.5
//	CoerceAmount("n/a")         -> invalid
//	CoerceAmount(nil)           -> invalid
func CoerceAmount(raw any) Amount {
	switch v := raw.(type) {
	case nil:
		return InvalidAmount()
	case int64:
		return NewAmount(v)
	case int32:
		return NewAmount(int64(v))
	case int:
		return NewAmount(int64(v))
	case uint64:
		return ParseAmount(strconv.FormatUint(v, 10))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return InvalidAmount()
		}
		return AmountFromDecimal(decimal.NewFromFloat(v))
	case float32:
		return CoerceAmount(float64(v))
	case decimal.Decimal:
		return AmountFromDecimal(v)
	case []byte:
		return ParseAmount(string(v))
	case string:
		return ParseAmount(v)
	case time.Time, bool:
		return InvalidAmount()
	default:
		return ParseAmount(fmt.Sprint(v))
	}
}

// ParseAmount parses a decimal string. Surrounding blanks are ignored; any
// other garbage gives an invalid Amount.
func ParseAmount(s string) Amount {
	s = strings.TrimSpace(s)
	if s == "" {
		return InvalidAmount()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return InvalidAmount()
	}
	return AmountFromDecimal(d)
}

func (a Amount) Valid() bool {
	return a.valid
}

// Decimal returns the value and whether it is valid.
func (a Amount) Decimal() (decimal.Decimal, bool) {
	return a.value, a.valid
}

// Billions returns the amount divided by 1e9, invalid if a is invalid. The
// division is an exact decimal shift.
func (a Amount) Billions() Amount {
	if !a.valid {
		return InvalidAmount()
	}
	return AmountFromDecimal(a.value.Shift(-billionExp))
}

// Float64 returns the value as a float, NaN when invalid.
func (a Amount) Float64() float64 {
	if !a.valid {
		return math.NaN()
	}
	return a.value.InexactFloat64()
}

func (a Amount) Equal(b Amount) bool {
	if a.valid != b.valid {
		return false
	}
	return !a.valid || a.value.Equal(b.value)
}

// Cmp orders amounts with invalid values below every valid one.
func (a Amount) Cmp(b Amount) int {
	switch {
	case !a.valid && !b.valid:
		return 0
	case !a.valid:
		return -1
	case !b.valid:
		return 1
	}
	return a.value.Cmp(b.value)
}

// String renders the plain decimal value, or "" when invalid.
func (a Amount) String() string {
	if !a.valid {
		return ""
	}
	return a.value.String()
}

// MarshalJSON encodes the amount as a JSON number, null when invalid.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.valid {
		return []byte("null"), nil
	}
	return []byte(a.value.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*a = InvalidAmount()
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("amount %s: %w", data, err)
	}
	*a = AmountFromDecimal(d)
	return nil
}

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiahBillions renders an amount as "Rp 165,16 M" (miliar).
func FormatRupiahBillions(a Amount) string {
	return formatScaled(a, billionExp, "M")
}

// FormatRupiahTrillions renders an amount as "Rp 0,84 T" (triliun).
func FormatRupiahTrillions(a Amount) string {
	return formatScaled(a, trillionExp, "T")
}

func formatScaled(a Amount, exp int32, suffix string) string {
	if !a.valid {
		return "-"
	}
	v := a.value.Shift(-exp).Round(2).InexactFloat64()
	return "Rp " + idPrinter.Sprint(number.Decimal(v, number.Scale(2))) + " " + suffix
}
