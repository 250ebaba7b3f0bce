package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/check"
	"github.com/roach88/tally/internal/runner"
	"github.com/roach88/tally/internal/source"
	"github.com/roach88/tally/internal/store"
)

// RunOutput is the data payload of compare and run.
type RunOutput struct {
	Reports []*runner.Report `json:"reports"`
	Passed  int              `json:"passed"`
	Failed  int              `json:"failed"`
	Total   int              `json:"total"`
}

// ExecOptions are the flags shared by commands that execute checks.
type ExecOptions struct {
	*RootOptions
	Database   string
	CollectAll bool

	// IDs overrides the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs runner.IDGenerator
}

func bindExecFlags(cmd *cobra.Command, opts *ExecOptions) {
	cmd.Flags().StringVar(&opts.Database, "db", os.Getenv(EnvDatabase), "path to SQLite run log (default $"+EnvDatabase+")")
	cmd.Flags().BoolVar(&opts.CollectAll, "collect-all", false, "report every mismatch instead of stopping at the first")
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// newLogger returns a text logger on w, at debug level under --verbose.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// signalContext derives a context that is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command, logger *slog.Logger) (context.Context, context.CancelFunc) {
	// Use command's context if available (for testing), otherwise create one
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan) // Prevent signal handler leak
		cancel()
	}
}

// newRunner assembles a runner and, when --db is set, opens the run log.
// The returned close function is never nil.
func newRunner(opts *ExecOptions, logger *slog.Logger) (*runner.Runner, func(), error) {
	runOpts := []runner.Option{runner.WithLogger(logger)}
	if opts.IDs != nil {
		runOpts = append(runOpts, runner.WithIDGenerator(opts.IDs))
	}
	if opts.CollectAll {
		runOpts = append(runOpts, runner.WithMode(check.CollectAll))
	}

	closeFn := func() {}
	if opts.Database != "" {
		logger.Debug("opening run log", "path", opts.Database)
		st, err := store.Open(opts.Database)
		if err != nil {
			return nil, closeFn, WrapExitError(ExitCommandError, fmt.Sprintf("%s: failed to open run log", ErrCodeStoreFailed), err)
		}
		runOpts = append(runOpts, runner.WithRecorder(st))
		closeFn = func() {
			if err := st.Close(); err != nil {
				logger.Error("error closing run log", "error", err)
			}
		}
	}

	return runner.New(source.NewLoader(logger), runOpts...), closeFn, nil
}

// outputReports renders reports and converts failures into exit codes.
func outputReports(f *OutputFormatter, reports []*runner.Report) error {
	out := RunOutput{Reports: reports, Total: len(reports)}
	for _, r := range reports {
		if r.Result.Pass {
			out.Passed++
		} else {
			out.Failed++
		}
	}

	if f.Format == "json" {
		if out.Failed > 0 {
			if err := f.Failure(ErrCodeCheckFailed, fmt.Sprintf("%d check(s) failed", out.Failed), out); err != nil {
				return err
			}
		} else if err := f.Success(out); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			writeReportText(f.Writer, r)
		}
	}

	if out.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d check(s) failed", out.Failed))
	}
	return nil
}

// writeReportText prints the status line, then one diagnostic line per
// mismatch in "<identifier> <observed> <declared>" form.
func writeReportText(w io.Writer, r *runner.Report) {
	res := r.Result
	if res.Pass {
		fmt.Fprintf(w, "✓ %s: %d summary record(s) consistent with %d detail record(s)\n",
			r.Check, res.Checked, res.DetailRows)
		return
	}
	fmt.Fprintf(w, "✗ %s: %d mismatch(es) in %d summary record(s) checked\n",
		r.Check, len(res.Mismatches), res.Checked)
	for _, m := range res.Mismatches {
		fmt.Fprintln(w, m.String())
	}
}

// runError maps runner errors to command errors.
func runError(f *OutputFormatter, err error) error {
	_ = f.Error(ErrCodeRunFailed, err.Error(), nil)
	return WrapExitError(ExitCommandError, ErrCodeRunFailed+": check could not be executed", err)
}
