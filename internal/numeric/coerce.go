// Package numeric turns loosely typed upstream values into float64.
//
// Vault feeds mix plain JSON numbers with display strings such as "$1,234.50"
// or "12.5%". Coerce absorbs every malformed input into 0 so that callers never
// have to handle a parse error.
package numeric

import (
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// decorations are stripped from strings before parsing, in any position.
var decorations = strings.NewReplacer("$", "", ",", "", "%", "")

// Raw is implemented by wrapper types that carry an undecoded upstream value.
type Raw interface {
	RawValue() any
}

// Coerce converts v into a float64.
//
// Numbers are returned unchanged (NaN and infinities included). Strings lose
// every '$', ',' and '%' and are then parsed by their longest leading decimal
// literal; a string without one yields 0. Everything else yields 0.
func Coerce(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		return ParseString(x)
	case Raw:
		return Coerce(x.RawValue())
	}

	// Remaining named numeric and string kinds (int8, uint32, json.Number, ...).
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return ParseString(rv.String())
	default:
		return 0
	}
}

// ParseString strips currency and percent decoration from s and parses the
// leading decimal literal of what remains. It returns 0 when there is none.
func ParseString(s string) float64 {
	s = decorations.Replace(s)
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	lit := leadingLiteral(s)
	if lit == "" {
		return 0
	}

	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		// Out of range literals come back as ±Inf with ErrRange; keep the
		// result finite.
		return 0
	}
	return f
}

// leadingLiteral returns the longest prefix of s shaped like
// [+-] digits [. digits] [(e|E) [+-] digits], requiring at least one digit in
// the mantissa. An incomplete exponent is not part of the literal.
func leadingLiteral(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}

	return s[:i]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
