package combination

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lox/bank-combination-finder/internal/types"
	"github.com/shopspring/decimal"
)

const (
	// MinorUnitExponent is the number of decimal places in one currency unit
	MinorUnitExponent = 2

	// MaxMinorUnits is the largest magnitude accepted for a single amount.
	// It keeps sums over several thousand amounts well inside int64.
	MaxMinorUnits int64 = 1_000_000_000_000_000
)

var maxMinorUnits = decimal.NewFromInt(MaxMinorUnits)

// NormalizeDecimal converts a currency value to minor units, rounding half away
// from zero at the cent boundary
func NormalizeDecimal(d decimal.Decimal) (int64, error) {
	cents := d.Shift(MinorUnitExponent).Round(0)
	if cents.Abs().GreaterThan(maxMinorUnits) {
		return 0, &InvalidAmountError{Value: d.String(), Reason: "out of range"}
	}
	return cents.IntPart(), nil
}

// NormalizeFloat converts a floating point currency value to minor units as
// round(v*100), half away from zero. The product is taken in binary floating
// point, so 1.005 becomes 100 rather than 101. NaN and infinities are rejected.
func NormalizeFloat(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &InvalidAmountError{Value: fmt.Sprint(v), Reason: "not a finite number"}
	}
	cents := math.Round(v * math.Pow10(MinorUnitExponent))
	if math.Abs(cents) > float64(MaxMinorUnits) {
		return 0, &InvalidAmountError{Value: fmt.Sprint(v), Reason: "out of range"}
	}
	return int64(cents), nil
}

// NormalizeString parses a textual currency value and converts it to minor units
func NormalizeString(s string) (int64, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	return NormalizeDecimal(d)
}

// ParseAmount parses plain and accounting formatted values such as
// "1234.56", "$1,234.56", "-$12" and "(12.00)"
func ParseAmount(s string) (decimal.Decimal, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return decimal.Zero, &InvalidAmountError{Value: s, Reason: "empty"}
	}

	negative := false
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		negative = true
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	if strings.HasPrefix(text, "-") {
		negative = !negative
		text = text[1:]
	} else {
		text = strings.TrimPrefix(text, "+")
	}
	text = strings.TrimPrefix(text, "$")
	text = strings.ReplaceAll(text, ",", "")

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, &InvalidAmountError{Value: s, Reason: "not a number"}
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// Normalize converts raw amounts to minor units. Rows that can't be converted
// are dropped and reported in the returned error slice; they never abort the run.
func Normalize(raw []types.RawAmount) ([]types.Amount, []error) {
	amounts := make([]types.Amount, 0, len(raw))
	var dropped []error

	for _, r := range raw {
		value, err := NormalizeString(r.Value)
		if err != nil {
			var invalid *InvalidAmountError
			if errors.As(err, &invalid) {
				invalid.OriginID = r.OriginID
			}
			dropped = append(dropped, err)
			continue
		}
		amounts = append(amounts, types.Amount{
			OriginID: r.OriginID,
			Label:    r.Label,
			Value:    value,
		})
	}

	return amounts, dropped
}

// NormalizeTarget converts a target and tolerance given in currency units
func NormalizeTarget(target, tolerance float64) (types.Target, error) {
	value, err := NormalizeFloat(target)
	if err != nil {
		return types.Target{}, &ConfigError{Field: "target", Reason: err.Error()}
	}
	tol, err := NormalizeFloat(tolerance)
	if err != nil {
		return types.Target{}, &ConfigError{Field: "tolerance", Reason: err.Error()}
	}
	if tol < 0 {
		return types.Target{}, &ConfigError{Field: "tolerance", Reason: fmt.Sprintf("must not be negative, got %v", tolerance)}
	}
	return types.Target{Value: value, Tolerance: tol}, nil
}
