package plan

import (
	"errors"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/check"
	"github.com/roach88/tally/internal/source"
)

func compileString(t *testing.T, src, path string) cue.Value {
	t.Helper()
	v := cuecontext.New().CompileString(src, cue.Filename("plan.cue"))
	require.NoError(t, v.Err())
	return v.LookupPath(cue.ParsePath(path))
}

const pregnumPlan = `
check: pregnum: {
	description: "pregnum matches pregnancy records"
	detail:  {data: "2002FemPreg.dat.gz", dictionary: "2002FemPreg.dct"}
	summary: {data: "s3://nsfg/2002FemResp.dat.gz", dictionary: "/abs/2002FemResp.dct", max_rows: 100}
	key:   "caseid"
	count: "pregnum"
	mode:  "collect_all"
}
`

func TestCompileCheck_Full(t *testing.T) {
	v := compileString(t, pregnumPlan, "check.pregnum")

	c, err := CompileCheck(v, "/plans")
	require.NoError(t, err)

	assert.Equal(t, "pregnum", c.Name)
	assert.Equal(t, "pregnum matches pregnancy records", c.Description)
	assert.Equal(t, "caseid", c.Key)
	assert.Equal(t, "pregnum", c.Count)
	assert.Equal(t, check.CollectAll, c.Mode)
	assert.Equal(t, source.Spec{
		Data:       filepath.Join("/plans", "2002FemPreg.dat.gz"),
		Dictionary: filepath.Join("/plans", "2002FemPreg.dct"),
	}, c.Detail)
	assert.Equal(t, source.Spec{
		Data:       "s3://nsfg/2002FemResp.dat.gz",
		Dictionary: "/abs/2002FemResp.dct",
		MaxRows:    100,
	}, c.Summary)
	assert.Empty(t, Validate(c))
}

func TestCompileCheck_DefaultsModeToFailFast(t *testing.T) {
	v := compileString(t, `check: c: {key: "id", count: "n"}`, "check.c")

	c, err := CompileCheck(v, "")
	require.NoError(t, err)
	assert.Equal(t, check.FailFast, c.Mode)
}

func TestCompileCheck_WrongType(t *testing.T) {
	v := compileString(t, `check: c: {key: 7, count: "n"}`, "check.c")

	_, err := CompileCheck(v, "")
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "key", ce.Field)
	assert.Contains(t, err.Error(), "must be a string")
}

func TestCompileCheck_NestedWrongType(t *testing.T) {
	v := compileString(t, `check: c: {detail: {data: ["a"]}}`, "check.c")

	_, err := CompileCheck(v, "")
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "detail.data", ce.Field)
}

func TestCompileCheck_SpecMustBeStruct(t *testing.T) {
	v := compileString(t, `check: c: {detail: "preg.csv"}`, "check.c")

	_, err := CompileCheck(v, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detail must be a struct")
}

func TestCompileCheck_NotAStruct(t *testing.T) {
	v := compileString(t, `check: c: "pregnum"`, "check.c")

	_, err := CompileCheck(v, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check must be a struct")
}

func TestCompileCheck_MaxRowsMustBeInt(t *testing.T) {
	v := compileString(t, `check: c: {detail: {data: "a.csv", max_rows: "ten"}}`, "check.c")

	_, err := CompileCheck(v, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detail.max_rows")
}

func TestFingerprint_StableAndDescriptionIndependent(t *testing.T) {
	a, err := CompileCheck(compileString(t, pregnumPlan, "check.pregnum"), "/plans")
	require.NoError(t, err)
	b := *a
	b.Description = "reworded"

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fa, fb)

	b.Count = "numbabes"
	fc, err := b.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, fa, fc)
}

func TestOptions(t *testing.T) {
	c := &Check{Key: "caseid", SummaryKey: "id", Count: "pregnum", Mode: check.CollectAll}
	assert.Equal(t, check.Options{Key: "caseid", SummaryKey: "id", Count: "pregnum", Mode: check.CollectAll}, c.Options())
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, filepath.Join("base", "a.csv"), resolvePath("base", "a.csv"))
	assert.Equal(t, "/abs/a.csv", resolvePath("base", "/abs/a.csv"))
	assert.Equal(t, "s3://b/k", resolvePath("base", "s3://b/k"))
	assert.Equal(t, "file:///x", resolvePath("base", "file:///x"))
	assert.Equal(t, "", resolvePath("base", ""))
	assert.Equal(t, "a.csv", resolvePath("", "a.csv"))
}
