package table

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Value is a sealed interface over the cell kinds a table can hold.
// Only Missing, String, Int and Float implement it.
type Value interface {
	tableValue()
}

// Missing is an empty cell.
type Missing struct{}

func (Missing) tableValue() {}

// String is a text cell.
type String string

func (String) tableValue() {}

// Int is an integer cell.
type Int int64

func (Int) tableValue() {}

// Float is a floating point cell.
type Float float64

func (Float) tableValue() {}

// IsMissing reports whether v is nil or Missing.
func IsMissing(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Missing)
	return ok
}

// Parse infers a Value from raw text.
// Blank text is Missing; otherwise Int, then Float, then String is tried.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Missing{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
		return Float(f)
	}
	return String(raw)
}

// Format renders v for display. Missing renders as the empty string.
func Format(v Value) string {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	default:
		return ""
	}
}

// Key renders v as a grouping identifier.
// Returns false for Missing cells and for strings that are blank after trimming.
func Key(v Value) (string, bool) {
	switch val := v.(type) {
	case String:
		s := norm.NFC.String(strings.TrimSpace(string(val)))
		if s == "" {
			return "", false
		}
		return s, true
	case Int:
		return strconv.FormatInt(int64(val), 10), true
	case Float:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", false
		}
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return strconv.FormatInt(int64(f), 10), true
		}
		return strconv.FormatFloat(f, 'g', -1, 64), true
	default:
		return "", false
	}
}

// AsInt converts v to an integer count.
// Floats must be integral; strings must parse as base-10 integers.
func AsInt(v Value) (int64, bool) {
	switch val := v.(type) {
	case Int:
		return int64(val), true
	case Float:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	case String:
		n, err := strconv.ParseInt(strings.TrimSpace(string(val)), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
