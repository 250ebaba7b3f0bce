package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/check"
)

func resultWith(checked int, ids ...string) *Result {
	r := NewResult()
	r.Check = &check.Result{Checked: checked, Mismatches: []check.Mismatch{}}
	for _, id := range ids {
		m := check.Mismatch{Identifier: id, Observed: 1, Declared: 2}
		r.Check.Mismatches = append(r.Check.Mismatches, m)
		r.Diagnostics = append(r.Diagnostics, m.String())
	}
	return r
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	r := resultWith(4, "a", "b", "c")
	errs := EvaluateAssertions(r, []Assertion{
		{Type: AssertMismatchCount, Count: 3},
		{Type: AssertReports, Identifier: "b"},
		{Type: AssertNotReported, Identifier: "z"},
		{Type: AssertDiagnosticOrder, Identifiers: []string{"a", "c"}},
		{Type: AssertChecked, Count: 4},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	r := resultWith(2, "a", "b")

	tests := []struct {
		assertion Assertion
		want      string
	}{
		{Assertion{Type: AssertMismatchCount, Count: 1}, "Expected: 1 mismatch(es)"},
		{Assertion{Type: AssertReports, Identifier: "z"}, "Expected: mismatch for z"},
		{Assertion{Type: AssertNotReported, Identifier: "a"}, "Assertion failed: not_reported"},
		{Assertion{Type: AssertDiagnosticOrder, Identifiers: []string{"b", "a"}}, "Actual: a -> b"},
		{Assertion{Type: AssertChecked, Count: 5}, "Actual: 2 record(s) checked"},
		{Assertion{Type: "bogus"}, `unknown assertion type "bogus"`},
	}
	for _, tt := range tests {
		t.Run(tt.assertion.Type, func(t *testing.T) {
			errs := EvaluateAssertions(r, []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestAssertionError_IncludesDiagnostics(t *testing.T) {
	err := &AssertionError{
		Type:        AssertChecked,
		Expected:    "1",
		Actual:      "2",
		Diagnostics: []string{"7 1 2"},
	}
	assert.Contains(t, err.Error(), "[1] 7 1 2")
}

func TestAssertions_CheckErrorHasNoMismatches(t *testing.T) {
	r := NewResult()
	r.CheckError = "boom"

	errs := EvaluateAssertions(r, []Assertion{
		{Type: AssertMismatchCount, Count: 0},
		{Type: AssertChecked, Count: 0},
	})
	assert.Empty(t, errs)
}
