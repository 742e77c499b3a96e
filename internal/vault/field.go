package vault

import "strings"

// Field is one of the three sortable numeric columns.
type Field int

const (
	FieldAPY Field = iota + 1
	FieldDaily
	FieldTVL
)

// Fields lists the sortable fields in display order.
var Fields = []Field{FieldAPY, FieldDaily, FieldTVL}

// String returns the column label.
func (f Field) String() string {
	switch f {
	case FieldAPY:
		return "CURRENT APY"
	case FieldDaily:
		return "DAILY"
	case FieldTVL:
		return "TVL"
	default:
		return "unknown"
	}
}

// Key returns the short identifier used in query strings and flags.
func (f Field) Key() string {
	switch f {
	case FieldAPY:
		return "apy"
	case FieldDaily:
		return "daily"
	case FieldTVL:
		return "tvl"
	default:
		return ""
	}
}

// Valid reports whether f is a member of the enumeration.
func (f Field) Valid() bool {
	return f >= FieldAPY && f <= FieldTVL
}

// Of returns the raw value of f on v.
func (f Field) Of(v Vault) Value {
	switch f {
	case FieldAPY:
		return v.APY
	case FieldDaily:
		return v.Daily
	case FieldTVL:
		return v.TVL
	default:
		return Value{}
	}
}

// ParseField accepts a key ("tvl") or a label ("CURRENT APY"), ignoring case.
func ParseField(s string) (Field, bool) {
	s = strings.TrimSpace(s)
	for _, f := range Fields {
		if strings.EqualFold(s, f.Key()) || strings.EqualFold(s, f.String()) {
			return f, true
		}
	}
	return 0, false
}
