package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/tally/internal/check"
	"github.com/roach88/tally/internal/source"
	"github.com/roach88/tally/internal/table"
)

// Harness executes scenarios. The zero value is not usable; call New.
type Harness struct {
	loader *source.Loader
	logger *slog.Logger
}

// New creates a harness whose file-backed tables are read through loader.
// A nil loader gets a default one; a nil logger discards.
func New(loader *source.Loader, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if loader == nil {
		loader = source.NewLoader(logger)
	}
	return &Harness{loader: loader, logger: logger}
}

// Run executes a scenario with a default harness.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil, nil).Run(context.Background(), scenario)
}

// Run builds both tables, runs the checker and evaluates expectations.
//
// The returned error covers only setup problems (unreadable tables). A
// checker error is part of the outcome and is compared with expect.error.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	detail, err := h.buildTable(ctx, "detail", scenario.Detail)
	if err != nil {
		return nil, fmt.Errorf("failed to build detail table: %w", err)
	}
	summary, err := h.buildTable(ctx, "summary", scenario.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to build summary table: %w", err)
	}

	var diag bytes.Buffer
	checker := &check.Checker{
		Options:     scenario.Options.CheckOptions(),
		Diagnostics: &diag,
		Logger:      h.logger,
	}

	result := NewResult()
	checkResult, checkErr := checker.Check(detail, summary)
	if checkErr != nil {
		result.CheckError = checkErr.Error()
	} else {
		result.Check = checkResult
	}
	for _, line := range strings.Split(strings.TrimRight(diag.String(), "\n"), "\n") {
		if line != "" {
			result.Diagnostics = append(result.Diagnostics, line)
		}
	}

	for _, msg := range evaluateExpect(scenario.Expect, result) {
		result.AddError(msg)
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario complete", "name", scenario.Name, "pass", result.Pass)
	return result, nil
}

func (h *Harness) buildTable(ctx context.Context, field string, def TableDef) (*table.Table, error) {
	name := def.Name
	if name == "" {
		name = field
	}
	if !def.Inline() {
		return h.loader.Load(ctx, source.Spec{
			Name:       def.Name,
			Format:     source.Format(def.Format),
			Data:       def.Data,
			Dictionary: def.Dictionary,
		})
	}

	t, err := table.New(name, def.Columns...)
	if err != nil {
		return nil, err
	}
	for i, row := range def.Rows {
		values := make([]table.Value, len(row))
		for j, cell := range row {
			v, err := cellValue(cell)
			if err != nil {
				return nil, fmt.Errorf("rows[%d][%d]: %w", i, j, err)
			}
			values[j] = v
		}
		if err := t.Append(values...); err != nil {
			return nil, fmt.Errorf("rows[%d]: %w", i, err)
		}
	}
	return t, nil
}

// cellValue converts a decoded YAML scalar. Strings are typed the way file
// readers type them, so "3" and 3 are the same cell.
func cellValue(v any) (table.Value, error) {
	switch x := v.(type) {
	case nil:
		return table.Missing{}, nil
	case int:
		return table.Int(x), nil
	case int64:
		return table.Int(x), nil
	case uint64:
		return table.Int(int64(x)), nil
	case float64:
		return table.Float(x), nil
	case string:
		return table.Parse(x), nil
	default:
		return nil, fmt.Errorf("unsupported cell %v (%T)", v, v)
	}
}

// evaluateExpect compares the outcome with the expect clause.
func evaluateExpect(expect Expectation, r *Result) []string {
	var errs []string

	if expect.Error != "" {
		switch {
		case r.CheckError == "":
			errs = append(errs, fmt.Sprintf("expected check error containing %q, got none", expect.Error))
		case !strings.Contains(r.CheckError, expect.Error):
			errs = append(errs, fmt.Sprintf("expected check error containing %q, got %q", expect.Error, r.CheckError))
		}
		return errs
	}

	if r.CheckError != "" {
		return append(errs, fmt.Sprintf("unexpected check error: %s", r.CheckError))
	}

	if expect.Pass != nil && *expect.Pass != r.Check.Pass {
		errs = append(errs, fmt.Sprintf("expected pass=%t, got pass=%t", *expect.Pass, r.Check.Pass))
	}

	if expect.Mismatches != nil {
		got := r.Check.Mismatches
		if len(got) != len(expect.Mismatches) {
			errs = append(errs, fmt.Sprintf("expected %d mismatch(es), got %d", len(expect.Mismatches), len(got)))
			return errs
		}
		for i, want := range expect.Mismatches {
			m := got[i]
			if m.Identifier != want.Identifier || m.Observed != want.Observed || m.Declared != want.Declared {
				errs = append(errs, fmt.Sprintf("mismatches[%d]: expected %s %d %d, got %s",
					i, want.Identifier, want.Observed, want.Declared, m.String()))
			}
		}
	}
	return errs
}
