package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/tally/internal/check"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with minimal required fields.
func createTestRun(id, checkName string, mismatches ...check.Mismatch) *Run {
	if mismatches == nil {
		mismatches = []check.Mismatch{}
	}
	return &Run{
		ID:                id,
		CheckName:         checkName,
		PlanFingerprint:   "plan-" + checkName,
		ResultFingerprint: "result-" + id,
		Options:           check.Options{Key: "caseid", Count: "pregnum", Mode: check.CollectAll},
		Result: check.Result{
			Pass:        len(mismatches) == 0,
			Mode:        check.CollectAll,
			DetailRows:  6,
			SummaryRows: 3,
			Groups:      3,
			Checked:     3,
			Mismatches:  mismatches,
		},
		CreatedAt: "2026-10-19T00:00:00Z",
	}
}
