package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the diagnostics for context.
type AssertionError struct {
	Type        string
	Expected    string
	Actual      string
	Diagnostics []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Diagnostics) > 0 {
		fmt.Fprintf(&buf, "\nDiagnostics:\n")
		for i, line := range e.Diagnostics {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, line)
		}
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(r *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluateAssertion(r, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluateAssertion(r *Result, a Assertion) error {
	switch a.Type {
	case AssertMismatchCount:
		return assertMismatchCount(r, a)
	case AssertReports:
		return assertReported(r, a, true)
	case AssertNotReported:
		return assertReported(r, a, false)
	case AssertDiagnosticOrder:
		return assertDiagnosticOrder(r, a)
	case AssertChecked:
		return assertChecked(r, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertMismatchCount(r *Result, a Assertion) error {
	got := len(r.mismatches())
	if got == a.Count {
		return nil
	}
	return &AssertionError{
		Type:        AssertMismatchCount,
		Expected:    fmt.Sprintf("%d mismatch(es)", a.Count),
		Actual:      fmt.Sprintf("%d mismatch(es)", got),
		Diagnostics: r.Diagnostics,
	}
}

func assertReported(r *Result, a Assertion, want bool) error {
	found := false
	for _, m := range r.mismatches() {
		if m.Identifier == a.Identifier {
			found = true
			break
		}
	}
	if found == want {
		return nil
	}

	typ, expected, actual := AssertReports, "mismatch for "+a.Identifier, "not reported"
	if !want {
		typ, expected, actual = AssertNotReported, "no mismatch for "+a.Identifier, "reported"
	}
	return &AssertionError{Type: typ, Expected: expected, Actual: actual, Diagnostics: r.Diagnostics}
}

// assertDiagnosticOrder checks that the listed identifiers appear in this
// relative order. Other diagnostics may come in between.
func assertDiagnosticOrder(r *Result, a Assertion) error {
	var order []string
	for _, m := range r.mismatches() {
		order = append(order, m.Identifier)
	}

	next := 0
	for _, id := range order {
		if next < len(a.Identifiers) && id == a.Identifiers[next] {
			next++
		}
	}
	if next == len(a.Identifiers) {
		return nil
	}
	return &AssertionError{
		Type:        AssertDiagnosticOrder,
		Expected:    strings.Join(a.Identifiers, " -> "),
		Actual:      strings.Join(order, " -> "),
		Diagnostics: r.Diagnostics,
	}
}

func assertChecked(r *Result, a Assertion) error {
	got := 0
	if r.Check != nil {
		got = r.Check.Checked
	}
	if got == a.Count {
		return nil
	}
	return &AssertionError{
		Type:        AssertChecked,
		Expected:    fmt.Sprintf("%d record(s) checked", a.Count),
		Actual:      fmt.Sprintf("%d record(s) checked", got),
		Diagnostics: r.Diagnostics,
	}
}
