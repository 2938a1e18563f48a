package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts are stored as int64 minor units (cents). Decimal is only used at
// the API boundary to parse and render major-unit strings exactly.

func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("ParseAmount: %w", ErrInvalidRequest)
	}
	if d.Exponent() < -2 {
		return 0, fmt.Errorf("ParseAmount: more than two decimal places: %w", ErrInvalidRequest)
	}
	return d.Shift(2).IntPart(), nil
}

func FormatAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}
