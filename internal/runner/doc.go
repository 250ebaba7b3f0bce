// Package runner executes compiled checks end to end.
//
// A run loads the detail table, then the summary table, hands both to the
// checker and, when a store is configured, records the outcome in the run
// log. Loads are sequential; the context is consulted between steps so a
// cancelled CLI invocation stops before the next table is read.
//
// Mismatches are results, not errors. Run returns an error only when a table
// cannot be loaded, the checker rejects its input, or the run log write
// fails; each case is a *RunError with a distinct code.
package runner
