package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/check"
	"github.com/roach88/tally/internal/plan"
	"github.com/roach88/tally/internal/runner"
	"github.com/roach88/tally/internal/source"
)

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	ExecOptions
	Name        string
	Detail      string
	DetailDict  string
	Summary     string
	SummaryDict string
	Key         string
	SummaryKey  string
	Count       string
	MaxRows     int
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{ExecOptions: ExecOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Check one summary table against one detail table",
		Long: `Compare the counts declared in a summary table with the group sizes of
a detail table, without writing a plan.

Tables are CSV files or fixed-width files described by a Stata dictionary.
Paths may be local files, file:// URIs or s3:// objects, and may be
gzip-compressed.

For every mismatch one line "<identifier> <observed> <declared>" is
printed. Without --collect-all the check stops at the first mismatch.

Example:
  tally compare --detail preg.csv --summary resp.csv --key caseid --count pregnum
  tally compare \
    --detail 2002FemPreg.dat.gz --detail-dict 2002FemPreg.dct \
    --summary 2002FemResp.dat.gz --summary-dict 2002FemResp.dct \
    --key caseid --count pregnum --collect-all`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(opts, cmd)
		},
	}

	bindExecFlags(cmd, &opts.ExecOptions)
	cmd.Flags().StringVar(&opts.Name, "name", "compare", "check name used in reports and the run log")
	cmd.Flags().StringVar(&opts.Detail, "detail", "", "detail table data file (required)")
	cmd.Flags().StringVar(&opts.DetailDict, "detail-dict", "", "Stata dictionary for a fixed-width detail table")
	cmd.Flags().StringVar(&opts.Summary, "summary", "", "summary table data file (required)")
	cmd.Flags().StringVar(&opts.SummaryDict, "summary-dict", "", "Stata dictionary for a fixed-width summary table")
	cmd.Flags().StringVar(&opts.Key, "key", "", "identifier column of the detail table (required)")
	cmd.Flags().StringVar(&opts.SummaryKey, "summary-key", "", "identifier column of the summary table (default --key)")
	cmd.Flags().StringVar(&opts.Count, "count", "", "declared count column of the summary table (required)")
	cmd.Flags().IntVar(&opts.MaxRows, "max-rows", 0, "read at most this many records per table (0 reads all)")
	_ = cmd.MarkFlagRequired("detail")
	_ = cmd.MarkFlagRequired("summary")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("count")

	return cmd
}

// compareCheck builds the check definition described by the flags.
func compareCheck(opts *CompareOptions) plan.Check {
	return plan.Check{
		Name: opts.Name,
		Detail: source.Spec{
			Data:       opts.Detail,
			Dictionary: opts.DetailDict,
			MaxRows:    opts.MaxRows,
		},
		Summary: source.Spec{
			Data:       opts.Summary,
			Dictionary: opts.SummaryDict,
			MaxRows:    opts.MaxRows,
		},
		Key:        opts.Key,
		SummaryKey: opts.SummaryKey,
		Count:      opts.Count,
		Mode:       check.FailFast,
	}
}

func runCompare(opts *CompareOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	c := compareCheck(opts)
	if errs := plan.Validate(&c); len(errs) > 0 {
		_ = formatter.Error(ErrCodeInvalidFlags, errs[0].Error(), errs)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeInvalidFlags, errs[0].Error()))
	}

	r, closeRunner, err := newRunner(&opts.ExecOptions, logger)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return err
	}
	defer closeRunner()

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	report, err := r.Run(ctx, c)
	if err != nil {
		return runError(formatter, err)
	}
	return outputReports(formatter, []*runner.Report{report})
}
