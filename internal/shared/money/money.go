// Package money converts between API decimal amounts and the int64 minor
// units stored in the ledger tables.
package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Scale is the number of minor-unit digits (halalas per riyal).
const Scale = 2

var (
	ErrTooPrecise = errors.New("amount has more than 2 decimal places")
	ErrOutOfRange = errors.New("amount is out of range")

	maxMajor = decimal.New(math.MaxInt64, -Scale)
)

// ToMinor converts a decimal amount into minor units.
func ToMinor(d decimal.Decimal) (int64, error) {
	shifted := d.Shift(Scale)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, ErrTooPrecise
	}
	if d.Abs().GreaterThan(maxMajor) {
		return 0, ErrOutOfRange
	}
	return shifted.IntPart(), nil
}

// FromMinor converts minor units back to a decimal amount.
func FromMinor(v int64) decimal.Decimal {
	return decimal.New(v, -Scale)
}

// PositiveMinor converts d and rejects zero or negative amounts.
func PositiveMinor(d decimal.Decimal) (int64, bool) {
	v, err := ToMinor(d)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
