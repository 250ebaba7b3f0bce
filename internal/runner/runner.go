package runner

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/tally/internal/check"
	"github.com/roach88/tally/internal/digest"
	"github.com/roach88/tally/internal/plan"
	"github.com/roach88/tally/internal/source"
	"github.com/roach88/tally/internal/store"
	"github.com/roach88/tally/internal/table"
)

// TableLoader reads a table described by a source spec.
// Implemented by *source.Loader.
type TableLoader interface {
	Load(ctx context.Context, spec source.Spec) (*table.Table, error)
}

// Recorder persists run outcomes. Implemented by *store.Store.
type Recorder interface {
	WriteRun(ctx context.Context, run *store.Run) error
}

// Report is the outcome of one run.
type Report struct {
	RunID             string        `json:"run_id"`
	Check             string        `json:"check"`
	PlanFingerprint   string        `json:"plan_fingerprint"`
	ResultFingerprint string        `json:"result_fingerprint"`
	Result            *check.Result `json:"result"`
	StartedAt         time.Time     `json:"started_at"`
	DurationMS        int64         `json:"duration_ms"`
	Recorded          bool          `json:"recorded"`
}

// Runner executes checks.
type Runner struct {
	loader      TableLoader
	recorder    Recorder
	ids         IDGenerator
	logger      *slog.Logger
	diagnostics io.Writer
	now         func() time.Time
	mode        check.Mode
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder records every completed run. Without it runs are not logged.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithIDGenerator overrides the default UUIDv7 run IDs.
func WithIDGenerator(ids IDGenerator) Option {
	return func(r *Runner) {
		r.ids = ids
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithDiagnostics sends one "<identifier> <observed> <declared>" line per
// mismatch to w.
func WithDiagnostics(w io.Writer) Option {
	return func(r *Runner) {
		r.diagnostics = w
	}
}

// WithClock overrides the wall clock used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithMode forces a mode on every check, overriding plan definitions.
func WithMode(mode check.Mode) Option {
	return func(r *Runner) {
		r.mode = mode
	}
}

// New creates a Runner that reads tables through loader.
func New(loader TableLoader, opts ...Option) *Runner {
	r := &Runner{
		loader: loader,
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one check.
func (r *Runner) Run(ctx context.Context, c plan.Check) (*Report, error) {
	if r.mode != "" {
		c.Mode = r.mode
	}
	logger := r.logger.With("check", c.Name)
	started := r.now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	detail, err := r.loader.Load(ctx, c.Detail)
	if err != nil {
		return nil, &RunError{Code: ErrCodeLoadFailed, Check: c.Name, Message: "load detail table", Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	summary, err := r.loader.Load(ctx, c.Summary)
	if err != nil {
		return nil, &RunError{Code: ErrCodeLoadFailed, Check: c.Name, Message: "load summary table", Err: err}
	}

	checker := &check.Checker{
		Options:     c.Options(),
		Diagnostics: r.diagnostics,
		Logger:      logger,
	}
	result, err := checker.Check(detail, summary)
	if err != nil {
		return nil, &RunError{Code: ErrCodeCheckError, Check: c.Name, Message: "check failed", Err: err}
	}

	planFP, err := c.Fingerprint()
	if err != nil {
		return nil, &RunError{Code: ErrCodeCheckError, Check: c.Name, Message: "fingerprint plan", Err: err}
	}
	resultFP, err := digest.ResultFingerprint(result)
	if err != nil {
		return nil, &RunError{Code: ErrCodeCheckError, Check: c.Name, Message: "fingerprint result", Err: err}
	}

	report := &Report{
		RunID:             r.ids.Generate(),
		Check:             c.Name,
		PlanFingerprint:   planFP,
		ResultFingerprint: resultFP,
		Result:            result,
		StartedAt:         started.UTC(),
		DurationMS:        r.now().Sub(started).Milliseconds(),
	}

	if r.recorder != nil {
		run := &store.Run{
			ID:                report.RunID,
			CheckName:         c.Name,
			PlanFingerprint:   planFP,
			ResultFingerprint: resultFP,
			Options:           c.Options(),
			Result:            *result,
			CreatedAt:         report.StartedAt.Format(time.RFC3339),
		}
		if err := r.recorder.WriteRun(ctx, run); err != nil {
			return nil, &RunError{Code: ErrCodeRecordFailed, Check: c.Name, Message: "record run", Err: err}
		}
		report.Recorded = true
	}

	logger.Info("check complete",
		"run_id", report.RunID,
		"pass", result.Pass,
		"checked", result.Checked,
		"mismatches", len(result.Mismatches))
	return report, nil
}

// RunAll executes checks in order. It stops at the first error and returns
// the reports completed so far; failing checks do not stop it.
func (r *Runner) RunAll(ctx context.Context, checks []plan.Check) ([]*Report, error) {
	reports := make([]*Report, 0, len(checks))
	for _, c := range checks {
		report, err := r.Run(ctx, c)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Passed reports whether every report passed.
func Passed(reports []*Report) bool {
	for _, rep := range reports {
		if !rep.Result.Pass {
			return false
		}
	}
	return true
}
