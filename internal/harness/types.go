package harness

import "github.com/roach88/tally/internal/check"

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall scenario success: the expect clause and every
	// assertion held.
	Pass bool `json:"pass"`

	// Check is the checker result. Nil when the checker returned an error.
	Check *check.Result `json:"check,omitempty"`

	// CheckError is the checker's error message, if any.
	CheckError string `json:"check_error,omitempty"`

	// Diagnostics are the lines the checker wrote, in order.
	Diagnostics []string `json:"diagnostics"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Diagnostics: []string{},
		Errors:      []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// mismatches returns the reported mismatches, or nil when the check errored.
func (r *Result) mismatches() []check.Mismatch {
	if r.Check == nil {
		return nil
	}
	return r.Check.Mismatches
}
