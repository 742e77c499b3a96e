package vault

import (
	"math"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/vault-browser/internal/numeric"
)

const (
	// NotAvailable is rendered for values that coerce to NaN.
	NotAvailable = "N/A"

	million = 1e6
)

// Decimals returns the precision a field is rendered with.
func (f Field) Decimals() int32 {
	if f == FieldDaily {
		return 4
	}
	return 2
}

// Format renders v for column f.
//
// Magnitudes strictly above one million are shown in millions with an "M"
// suffix. Below that APY keeps 2 decimals, DAILY 4, and TVL is rounded to a
// whole number.
func Format(f Field, v any) string {
	x := numeric.Coerce(v)
	if math.IsNaN(x) {
		return NotAvailable
	}

	if math.Abs(x) > million {
		return toFixed(x/million, f.Decimals()) + "M"
	}

	if f == FieldTVL {
		return formatInteger(roundHalfUp(x))
	}
	return toFixed(x, f.Decimals())
}

// FormatAPY formats an annual yield.
func FormatAPY(v any) string { return Format(FieldAPY, v) }

// FormatDaily formats a daily yield.
func FormatDaily(v any) string { return Format(FieldDaily, v) }

// FormatTVL formats a total value.
func FormatTVL(v any) string { return Format(FieldTVL, v) }

// Decorate adds the unit a column is displayed with.
func Decorate(f Field, formatted string) string {
	if f == FieldTVL {
		return "$" + formatted
	}
	return formatted + "%"
}

// Display formats v for column f with its unit. "N/A" is never decorated.
func Display(f Field, v any) string {
	formatted := Format(f, v)
	if formatted == NotAvailable {
		return formatted
	}
	return Decorate(f, formatted)
}

// toFixed prints x with exactly places decimals, rounding the exact binary
// value half away from zero. A negative x keeps its sign even when the result
// is all zeros.
func toFixed(x float64, places int32) string {
	switch {
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	case math.Abs(x) >= 1e21:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}

	r := new(big.Rat).SetFloat64(math.Abs(x))
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))
	r.Add(r, big.NewRat(1, 2))
	n := new(big.Int).Quo(r.Num(), r.Denom())

	s := decimal.NewFromBigInt(n, -places).StringFixed(places)
	if x < 0 {
		s = "-" + s
	}
	return s
}

// roundHalfUp rounds to the nearest integer with halves going toward +Inf.
func roundHalfUp(x float64) float64 {
	f := math.Floor(x)
	if x-f >= 0.5 {
		f++
	}
	return f
}

// formatInteger prints a whole number, never as "-0".
func formatInteger(x float64) string {
	if x == 0 {
		return "0"
	}
	return strconv.FormatFloat(x, 'f', 0, 64)
}
