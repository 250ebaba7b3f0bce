package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/plan"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	ExecOptions
	Checks []string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{ExecOptions: ExecOptions{RootOptions: rootOpts}})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <plans-dir>",
		Short: "Run the checks defined in a plans directory",
		Long: `Run every check defined under check.<name> in the CUE plans of a
directory, in name order.

Each check reads its detail and summary tables, groups the detail table by
the key column and compares every group size with the declared count.
Results are appended to the run log when --db (or $TALLY_DB) is set.

Exit codes:
  0 - All checks passed
  1 - One or more checks reported mismatches
  2 - Command error (plans invalid, tables unreadable, etc.)

Example:
  tally run ./plans
  tally run ./plans --check pregnum --collect-all
  tally run ./plans --db ./tally.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlans(opts, args[0], cmd)
		},
	}

	bindExecFlags(cmd, &opts.ExecOptions)
	cmd.Flags().StringSliceVar(&opts.Checks, "check", nil, "run only the named checks (repeatable)")

	return cmd
}

func runPlans(opts *RunOptions, plansDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	logger.Debug("loading plans", "dir", plansDir)
	checks, err := loadChecks(formatter, plansDir, opts.Checks)
	if err != nil {
		return err
	}
	logger.Debug("plans loaded", "checks", len(checks))

	r, closeRunner, err := newRunner(&opts.ExecOptions, logger)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return err
	}
	defer closeRunner()

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	reports, err := r.RunAll(ctx, checks)
	if err != nil {
		return runError(formatter, err)
	}
	return outputReports(formatter, reports)
}

// loadChecks loads, selects and validates the checks in plansDir.
func loadChecks(formatter *OutputFormatter, plansDir string, names []string) ([]plan.Check, error) {
	result, loadErrs := plan.Load(plansDir, plan.LoadModeFailFast)
	if len(loadErrs) > 0 {
		code, message := plan.ErrCodeGeneric, loadErrs[0].Error()
		var le *plan.LoadError
		if errors.As(loadErrs[0], &le) {
			code, message = le.Code, le.Error()
		}
		_ = formatter.Error(code, message, nil)
		return nil, NewExitError(ExitCommandError, message)
	}

	checks := result.Checks
	if len(names) > 0 {
		checks = make([]plan.Check, 0, len(names))
		for _, name := range names {
			c, ok := result.Find(name)
			if !ok {
				msg := fmt.Sprintf("check %q not found in %s", name, plansDir)
				_ = formatter.Error(ErrCodeInvalidFlags, msg, nil)
				return nil, NewExitError(ExitCommandError, msg)
			}
			checks = append(checks, *c)
		}
	}

	var invalid []plan.ValidationError
	for i := range checks {
		invalid = append(invalid, plan.Validate(&checks[i])...)
	}
	if len(invalid) > 0 {
		_ = formatter.Error(ErrCodeInvalidPlan, invalid[0].Error(), invalid)
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("%s: %d plan error(s)", ErrCodeInvalidPlan, len(invalid)))
	}
	return checks, nil
}
