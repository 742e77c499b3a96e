package vault

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/rovshanmuradov/vault-browser/internal/numeric"
)

// Value holds a numeric-ish field exactly as the upstream feed delivered it:
// a number, a decorated string like "$1,234", or anything else.
type Value struct {
	raw any
}

// Number wraps a float64.
func Number(f float64) Value {
	return Value{raw: f}
}

// Text wraps a display string such as "12.5%".
func Text(s string) Value {
	return Value{raw: s}
}

// ValueOf wraps an arbitrary upstream value.
func ValueOf(v any) Value {
	if inner, ok := v.(Value); ok {
		return inner
	}
	return Value{raw: v}
}

// RawValue implements numeric.Raw.
func (v Value) RawValue() any {
	return v.raw
}

// Float coerces the raw value.
func (v Value) Float() float64 {
	return numeric.Coerce(v.raw)
}

// IsAbsent reports whether the feed carried no value at all.
func (v Value) IsAbsent() bool {
	return v.raw == nil
}

// String renders the raw value the way it arrived, for tooltips and exports.
func (v Value) String() string {
	switch x := v.raw.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// MarshalJSON writes the raw value back out. Non-finite floats have no JSON
// form and are written as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if f, ok := v.raw.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return []byte("null"), nil
	}
	return json.Marshal(v.raw)
}

// UnmarshalJSON accepts any JSON value; coercion happens later.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.raw = raw
	return nil
}

// Value implements driver.Valuer so snapshots can store the raw form.
func (v Value) Value() (driver.Value, error) {
	b, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (v *Value) Scan(src any) error {
	switch s := src.(type) {
	case nil:
		v.raw = nil
		return nil
	case []byte:
		return v.UnmarshalJSON(s)
	case string:
		return v.UnmarshalJSON([]byte(s))
	default:
		return fmt.Errorf("vault: cannot scan %T into Value", src)
	}
}
