package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Check    string
	RunID    string
	Limit    int
}

// HistoryOutput is the data payload of history.
type HistoryOutput struct {
	Runs []store.Run `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded check runs",
		Long: `List the runs recorded in a run log, newest first, or show one run
with its mismatches.

Example:
  tally history --db ./tally.db
  tally history --db ./tally.db --check pregnum --limit 5
  tally history --db ./tally.db --run 01932c4e-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", os.Getenv(EnvDatabase), "path to SQLite run log (default $"+EnvDatabase+")")
	cmd.Flags().StringVar(&opts.Check, "check", "", "only runs of this check")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run with its mismatches")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 lists all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Database == "" {
		msg := "no run log: pass --db or set " + EnvDatabase
		_ = formatter.Error(ErrCodeInvalidFlags, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	if opts.Limit < 0 {
		msg := fmt.Sprintf("--limit must not be negative, got %d", opts.Limit)
		_ = formatter.Error(ErrCodeInvalidFlags, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open run log", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.RunID != "" {
		run, err := st.GetRun(ctx, opts.RunID)
		if err != nil {
			code := ErrCodeStoreFailed
			if errors.Is(err, store.ErrRunNotFound) {
				code = ErrCodeInvalidFlags
			}
			_ = formatter.Error(code, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(run)
		}
		writeRunDetail(formatter.Writer, run)
		return nil
	}

	runs, err := st.ListRuns(ctx, store.RunFilter{CheckName: opts.Check, Limit: opts.Limit})
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	if formatter.Format == "json" {
		return formatter.Success(HistoryOutput{Runs: runs})
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	for i := range runs {
		writeRunLine(formatter.Writer, &runs[i])
	}
	return nil
}

func runStatus(run *store.Run) string {
	if run.Result.Pass {
		return "✓"
	}
	return "✗"
}

func writeRunLine(w io.Writer, run *store.Run) {
	fmt.Fprintf(w, "%s #%d %s %s checked=%d mismatches=%d %s\n",
		runStatus(run), run.Seq, run.CheckName, run.CreatedAt,
		run.Result.Checked, len(run.Result.Mismatches), run.ID)
}

func writeRunDetail(w io.Writer, run *store.Run) {
	fmt.Fprintf(w, "%s %s (run %s, #%d)\n", runStatus(run), run.CheckName, run.ID, run.Seq)
	fmt.Fprintf(w, "  created:  %s\n", run.CreatedAt)
	fmt.Fprintf(w, "  mode:     %s\n", run.Result.Mode)
	fmt.Fprintf(w, "  options:  key=%s summary_key=%s count=%s\n",
		run.Options.Key, run.Options.SummaryKey, run.Options.Count)
	fmt.Fprintf(w, "  tables:   %d detail, %d summary, %d group(s)\n",
		run.Result.DetailRows, run.Result.SummaryRows, run.Result.Groups)
	fmt.Fprintf(w, "  checked:  %d\n", run.Result.Checked)
	fmt.Fprintf(w, "  plan:     %s\n", run.PlanFingerprint)
	fmt.Fprintf(w, "  result:   %s\n", run.ResultFingerprint)
	for _, m := range run.Result.Mismatches {
		fmt.Fprintln(w, m.String())
	}
}
