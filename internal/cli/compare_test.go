package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/runner"
	"github.com/roach88/tally/internal/store"
)

// newCompare returns a runner for a fresh compare command that never
// records to a run log unless --db is given.
func newCompare(t *testing.T, format string) func(args ...string) (string, error) {
	t.Helper()
	t.Setenv(EnvDatabase, "")
	cmd := NewCompareCommand(&RootOptions{Format: format})
	return func(args ...string) (string, error) {
		out, _, err := execute(t, cmd, args...)
		return out, err
	}
}

func TestCompare_Pass(t *testing.T) {
	dir := t.TempDir()
	detail := writeFile(t, dir, "preg.csv", pregCSV)
	summary := writeFile(t, dir, "resp.csv", respPassCSV)

	run := newCompare(t, "text")
	out, err := run("--detail", detail, "--summary", summary, "--key", "caseid", "--count", "pregnum")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ compare: 2 summary record(s) consistent with 3 detail record(s)")
}

func TestCompare_FailFastReportsFirstMismatch(t *testing.T) {
	dir := t.TempDir()
	detail := writeFile(t, dir, "preg.csv", pregCSV)
	summary := writeFile(t, dir, "resp.csv", respFailCSV)

	run := newCompare(t, "text")
	out, err := run("--detail", detail, "--summary", summary, "--key", "caseid", "--count", "pregnum")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ compare: 1 mismatch(es)")
	assert.Contains(t, out, "2 1 3\n")
	assert.NotContains(t, out, "3 0 1")
}

func TestCompare_CollectAllReportsEveryMismatch(t *testing.T) {
	dir := t.TempDir()
	detail := writeFile(t, dir, "preg.csv", pregCSV)
	summary := writeFile(t, dir, "resp.csv", respFailCSV)

	run := newCompare(t, "text")
	out, err := run("--detail", detail, "--summary", summary, "--key", "caseid", "--count", "pregnum", "--collect-all")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "2 1 3\n3 0 1\n")
}

func TestCompare_JSONFailureEnvelope(t *testing.T) {
	dir := t.TempDir()
	detail := writeFile(t, dir, "preg.csv", pregCSV)
	summary := writeFile(t, dir, "resp.csv", respFailCSV)

	run := newCompare(t, "json")
	out, err := run("--detail", detail, "--summary", summary, "--key", "caseid", "--count", "pregnum")
	require.Error(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunOutput `json:"data"`
		Error  *CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeCheckFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Reports, 1)
	require.Len(t, resp.Data.Reports[0].Result.Mismatches, 1)
	m := resp.Data.Reports[0].Result.Mismatches[0]
	assert.Equal(t, "2", m.Identifier)
	assert.Equal(t, 1, m.Observed)
	assert.Equal(t, int64(3), m.Declared)
}

func TestCompare_UnknownColumnIsCommandError(t *testing.T) {
	dir := t.TempDir()
	detail := writeFile(t, dir, "preg.csv", pregCSV)
	summary := writeFile(t, dir, "resp.csv", respPassCSV)

	run := newCompare(t, "text")
	out, err := run("--detail", detail, "--summary", summary, "--key", "caseid", "--count", "numbabes")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeRunFailed)
	assert.Contains(t, out, "numbabes")
}

func TestCompare_MissingDataFile(t *testing.T) {
	dir := t.TempDir()
	summary := writeFile(t, dir, "resp.csv", respPassCSV)

	run := newCompare(t, "text")
	_, err := run("--detail", filepath.Join(dir, "absent.csv"), "--summary", summary, "--key", "caseid", "--count", "pregnum")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, runner.IsLoadError(err))
}

func TestCompare_RequiredFlags(t *testing.T) {
	run := newCompare(t, "text")
	_, err := run("--detail", "preg.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestCompare_CountColumnEqualsKey(t *testing.T) {
	run := newCompare(t, "text")
	out, err := run("--detail", "preg.csv", "--summary", "resp.csv", "--key", "caseid", "--count", "caseid")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeInvalidFlags)
}

func TestCompare_RecordsRun(t *testing.T) {
	t.Setenv(EnvDatabase, "")
	dir := t.TempDir()
	detail := writeFile(t, dir, "preg.csv", pregCSV)
	summary := writeFile(t, dir, "resp.csv", respFailCSV)
	dbPath := filepath.Join(dir, "tally.db")

	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompareCommand(rootOpts)
	_, _, err := execute(t, cmd, "--detail", detail, "--summary", summary,
		"--key", "caseid", "--count", "pregnum", "--collect-all",
		"--db", dbPath, "--name", "pregnum")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "pregnum", runs[0].CheckName)
	assert.False(t, runs[0].Result.Pass)
	assert.Len(t, runs[0].Result.Mismatches, 2)
}
