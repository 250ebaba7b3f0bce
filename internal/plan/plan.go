package plan

import (
	"fmt"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/tally/internal/check"
	"github.com/roach88/tally/internal/digest"
	"github.com/roach88/tally/internal/source"
)

// Check is a compiled check definition.
type Check struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Detail      source.Spec `json:"detail"`
	Summary     source.Spec `json:"summary"`
	Key         string      `json:"key"`
	SummaryKey  string      `json:"summary_key,omitempty"`
	Count       string      `json:"count"`
	Mode        check.Mode  `json:"mode"`
}

// Options returns the checker options for c.
func (c *Check) Options() check.Options {
	return check.Options{
		Key:        c.Key,
		SummaryKey: c.SummaryKey,
		Count:      c.Count,
		Mode:       c.Mode,
	}
}

// Fingerprint identifies the definition. Descriptions are excluded so that
// rewording a plan does not change its identity.
func (c *Check) Fingerprint() (string, error) {
	return digest.Fingerprint(digest.DomainCheck, map[string]any{
		"name":        c.Name,
		"detail":      specMap(c.Detail),
		"summary":     specMap(c.Summary),
		"key":         c.Key,
		"summary_key": c.SummaryKey,
		"count":       c.Count,
		"mode":        string(c.Mode),
	})
}

func specMap(s source.Spec) map[string]any {
	return map[string]any{
		"name":       s.Name,
		"format":     string(s.Format),
		"data":       s.Data,
		"dictionary": s.Dictionary,
		"max_rows":   s.MaxRows,
	}
}

// CompileError is a shape error found while reading CUE.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileCheck reads one check definition. v is the check struct itself
// (the value at check.<name>); baseDir anchors relative file paths.
func CompileCheck(v cue.Value, baseDir string) (*Check, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{Field: "check", Message: "check must be a struct", Pos: v.Pos()}
	}

	c := &Check{}
	if sels := v.Path().Selectors(); len(sels) > 0 {
		c.Name = sels[len(sels)-1].String()
	}

	var err error
	if c.Description, err = lookupString(v, "description"); err != nil {
		return nil, err
	}
	if c.Key, err = lookupString(v, "key"); err != nil {
		return nil, err
	}
	if c.SummaryKey, err = lookupString(v, "summary_key"); err != nil {
		return nil, err
	}
	if c.Count, err = lookupString(v, "count"); err != nil {
		return nil, err
	}
	mode, err := lookupString(v, "mode")
	if err != nil {
		return nil, err
	}
	c.Mode = check.Mode(mode)
	if c.Mode == "" {
		c.Mode = check.FailFast
	}

	if c.Detail, err = compileSpec(v, "detail", baseDir); err != nil {
		return nil, err
	}
	if c.Summary, err = compileSpec(v, "summary", baseDir); err != nil {
		return nil, err
	}
	return c, nil
}

func compileSpec(v cue.Value, field, baseDir string) (source.Spec, error) {
	var spec source.Spec
	sv := v.LookupPath(cue.ParsePath(field))
	if !sv.Exists() {
		return spec, nil
	}
	if sv.IncompleteKind() != cue.StructKind {
		return spec, &CompileError{Field: field, Message: fmt.Sprintf("%s must be a struct", field), Pos: sv.Pos()}
	}

	var err error
	if spec.Name, err = lookupString(sv, "name"); err != nil {
		return spec, prefixField(err, field)
	}
	format, err := lookupString(sv, "format")
	if err != nil {
		return spec, prefixField(err, field)
	}
	spec.Format = source.Format(format)
	if spec.Data, err = lookupString(sv, "data"); err != nil {
		return spec, prefixField(err, field)
	}
	if spec.Dictionary, err = lookupString(sv, "dictionary"); err != nil {
		return spec, prefixField(err, field)
	}

	if mr := sv.LookupPath(cue.ParsePath("max_rows")); mr.Exists() {
		n, err := mr.Int64()
		if err != nil {
			return spec, &CompileError{Field: field + ".max_rows", Message: "max_rows must be an integer", Pos: mr.Pos()}
		}
		spec.MaxRows = int(n)
	}

	spec.Data = resolvePath(baseDir, spec.Data)
	spec.Dictionary = resolvePath(baseDir, spec.Dictionary)
	return spec, nil
}

func lookupString(v cue.Value, path string) (string, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", &CompileError{Field: path, Message: fmt.Sprintf("%s must be a string", path), Pos: f.Pos()}
	}
	return s, nil
}

func prefixField(err error, prefix string) error {
	if ce, ok := err.(*CompileError); ok {
		return &CompileError{Field: prefix + "." + ce.Field, Message: ce.Message, Pos: ce.Pos}
	}
	return err
}

// resolvePath anchors a relative local path at baseDir. URIs and absolute
// paths are returned unchanged.
func resolvePath(baseDir, p string) string {
	if p == "" || baseDir == "" || strings.Contains(p, "://") || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
