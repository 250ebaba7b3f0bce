package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Value
	}{
		{"", Missing{}},
		{"   ", Missing{}},
		{"12", Int(12)},
		{" 12 ", Int(12)},
		{"-3", Int(-3)},
		{"1.5", Float(1.5)},
		{"abc", String("abc")},
		{" A", String(" A")},
		{"NaN", String("NaN")},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name   string
		value  Value
		want   string
		wantOK bool
	}{
		{"string trimmed", String("  A "), "A", true},
		{"blank string", String("   "), "", false},
		{"int", Int(1024), "1024", true},
		{"integral float", Float(3), "3", true},
		{"fractional float", Float(2.5), "2.5", true},
		{"nan float", Float(math.NaN()), "", false},
		{"missing", Missing{}, "", false},
		{"nil", nil, "", false},
		{"nfc normalized", String("e\u0301"), "\u00e9", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Key(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKey_FixedWidthAndCSVAgree(t *testing.T) {
	a, ok := Key(Parse("    1"))
	assert.True(t, ok)
	b, ok := Key(String("1 "))
	assert.True(t, ok)
	assert.Equal(t, a, b)
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		name   string
		value  Value
		want   int64
		wantOK bool
	}{
		{"int", Int(4), 4, true},
		{"integral float", Float(2), 2, true},
		{"fractional float", Float(2.5), 0, false},
		{"numeric string", String(" 3 "), 3, true},
		{"text string", String("three"), 0, false},
		{"missing", Missing{}, 0, false},
		{"infinite", Float(math.Inf(1)), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsInt(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "", Format(Missing{}))
	assert.Equal(t, "x", Format(String("x")))
	assert.Equal(t, "42", Format(Int(42)))
	assert.Equal(t, "0.25", Format(Float(0.25)))
	assert.True(t, IsMissing(nil))
	assert.False(t, IsMissing(Int(0)))
}
