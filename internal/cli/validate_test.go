package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/plan"
)

func TestValidate_ValidPlans(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nsfg.cue", nsfgPlan)

	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, _, err := execute(t, cmd, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All plans valid (2 check(s))")
}

func TestValidate_DoesNotReadTables(t *testing.T) {
	dir := t.TempDir()
	// Neither data file exists.
	writeFile(t, dir, "nsfg.cue", `package nsfg

check: pregnum: {
	detail:  {data: "s3://nsfg/2002FemPreg.dat.gz", dictionary: "2002FemPreg.dct"}
	summary: {data: "resp.csv"}
	key:   "caseid"
	count: "pregnum"
}
`)

	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	_, _, err := execute(t, cmd, dir)
	require.NoError(t, err)
}

func TestValidate_CollectsEveryError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.cue", `package nsfg

check: a: {
	detail:  {data: "preg.csv"}
	summary: {data: "resp.csv"}
	mode: "sometimes"
}

check: b: {key: 7}
`)

	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, _, err := execute(t, cmd, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, plan.ErrCodeCompile)
	assert.Contains(t, out, plan.ErrKeyRequired)
	assert.Contains(t, out, plan.ErrCountRequired)
	assert.Contains(t, out, plan.ErrInvalidMode)
}

func TestValidate_JSONErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.cue", `package nsfg

check: pregnum: {
	detail:  {data: "preg.dat"}
	summary: {data: "resp.csv"}
	key:   "caseid"
	count: "pregnum"
}
`)

	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	out, _, err := execute(t, cmd, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, plan.ErrInvalidFormat, resp.Data.Errors[0].Code)
	assert.Equal(t, "detail.format", resp.Data.Errors[0].Field)
}

func TestValidate_NonExistentDir(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, _, err := execute(t, cmd, "/nonexistent/plans")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidate_NoCUEFiles(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	_, _, err := execute(t, cmd, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), plan.ErrCodeNoFiles)
}

func TestValidate_MissingArgs(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	_, _, err := execute(t, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
