package numeric

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type rawBox struct{ v any }

func (r rawBox) RawValue() any { return r.v }

type basisPoints int16

func TestCoerceNumbers(t *testing.T) {
	assert.Equal(t, 12.5, Coerce(12.5))
	assert.Equal(t, float64(float32(0.25)), Coerce(float32(0.25)))
	assert.Equal(t, 42.0, Coerce(42))
	assert.Equal(t, -7.0, Coerce(int64(-7)))
	assert.Equal(t, 9.0, Coerce(uint8(9)))
	assert.Equal(t, 150.0, Coerce(basisPoints(150)))
	assert.True(t, math.IsNaN(Coerce(math.NaN())), "NaN must pass through")
	assert.True(t, math.IsInf(Coerce(math.Inf(1)), 1))
}

func TestCoerceStrings(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$1,234.50%", 1234.5},
		{"1234.5", 1234.5},
		{"12.5%", 12.5},
		{"$1,000,000", 1e6},
		{"%$,7,,", 7},
		{"  42", 42},
		{"-3.25", -3.25},
		{"+8", 8},
		{".5", 0.5},
		{"5.", 5},
		{"1e3", 1000},
		{"2.5E-2", 0.025},
		{"1e", 1},
		{"12abc", 12},
		{"1.5 APY", 1.5},
		{"1.2.3", 1.2},
		{"", 0},
		{"abc", 0},
		{"-", 0},
		{".", 0},
		{"$", 0},
		{"N/A", 0},
		{"NaN", 0},
		{"Infinity", 0},
		{"0x10", 0},
		{"1e999", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(tt.in))
		})
	}
}

func TestCoerceOtherTypes(t *testing.T) {
	assert.Equal(t, 0.0, Coerce(nil))
	assert.Equal(t, 0.0, Coerce(true))
	assert.Equal(t, 0.0, Coerce(struct{ A int }{1}))
	assert.Equal(t, 0.0, Coerce(map[string]any{"apy": 1}))
	assert.Equal(t, 0.0, Coerce([]float64{1}))
}

func TestCoerceUnwrapsRaw(t *testing.T) {
	assert.Equal(t, 3.5, Coerce(rawBox{v: "$3.50"}))
	assert.Equal(t, 2.0, Coerce(rawBox{v: 2.0}))
	assert.Equal(t, 0.0, Coerce(rawBox{}))
	assert.Equal(t, 17.0, Coerce(json.Number("17")))
}

func TestParseStringNeverReturnsInfinity(t *testing.T) {
	for _, in := range []string{"inf", "+Inf", "-infinity", "1e309", "-1e309"} {
		got := ParseString(in)
		assert.False(t, math.IsInf(got, 0), in)
		assert.False(t, math.IsNaN(got), in)
	}
}
