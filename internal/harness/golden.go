package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tally/internal/digest"
)

// Snapshot serializes a scenario outcome as canonical JSON for golden
// comparison. Positions and row counts are included so that a change in how
// tables are read shows up as a diff.
func Snapshot(scenario *Scenario, r *Result) ([]byte, error) {
	diagnostics := make([]any, len(r.Diagnostics))
	for i, line := range r.Diagnostics {
		diagnostics[i] = line
	}

	snap := map[string]any{
		"scenario_name": scenario.Name,
		"diagnostics":   diagnostics,
	}
	if r.CheckError != "" {
		snap["check_error"] = r.CheckError
	}
	if r.Check != nil {
		mismatches := make([]any, len(r.Check.Mismatches))
		for i, m := range r.Check.Mismatches {
			mismatches[i] = map[string]any{
				"identifier": m.Identifier,
				"observed":   m.Observed,
				"declared":   m.Declared,
				"position":   m.Position,
			}
		}
		snap["result"] = map[string]any{
			"pass":         r.Check.Pass,
			"mode":         string(r.Check.Mode),
			"detail_rows":  r.Check.DetailRows,
			"summary_rows": r.Check.SummaryRows,
			"groups":       r.Check.Groups,
			"checked":      r.Check.Checked,
			"mismatches":   mismatches,
		}
	}
	return digest.MarshalCanonical(snap)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
