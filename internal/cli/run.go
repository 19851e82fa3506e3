package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/surge/internal/assertion"
	"github.com/roach88/surge/internal/runtime"
	"github.com/roach88/surge/internal/scenario"
	"github.com/roach88/surge/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database   string
	Users      int
	Iterations int
	Duration   time.Duration
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario and check its assertions",
		Long: `Run a scenario with concurrent virtual users, then evaluate its
assertions against the collected statistics.

Flags override the scenario file, which overrides surge.yaml. The command
exits 1 when any assertion fails and 2 when the run could not happen.

Example:
  surge run checkout.yaml
  surge run --users 50 --duration 1m --db ./surge.db checkout.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database to store the run in")
	cmd.Flags().IntVarP(&opts.Users, "users", "u", 0, "concurrent virtual users")
	cmd.Flags().IntVarP(&opts.Iterations, "iterations", "n", 0, "iterations per user")
	cmd.Flags().DurationVarP(&opts.Duration, "duration", "d", 0, "bound on the whole run")

	return cmd
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	cfg := opts.Config

	sc, err := scenario.Load(path, assertion.New(cfg.Percentiles))
	if err != nil {
		return scenarioError(formatter, err)
	}
	for _, issue := range assertion.LintAll(sc.Assertions) {
		slog.Warn("assertion can never pass", "assertion", issue.Assertion, "issue", issue.Message)
	}

	rcfg := runtime.Config{
		Users:      firstNonZero(opts.Users, sc.Users, cfg.Users),
		Iterations: firstNonZero(opts.Iterations, sc.Iterations),
		Duration:   firstNonZero(opts.Duration, sc.Duration, cfg.Duration),
		Timeout:    cfg.Timeout,
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := runtime.NewRunner(rcfg).Run(ctx, sc.Chain)
	if err != nil {
		_ = formatter.Error(ErrCodeRun, err.Error(), nil)
		return WrapExitError(ExitCommandError, "run failed", err)
	}

	verdicts := assertion.Evaluate(sc.Assertions, res.Snapshot)
	report := NewReport(sc.Name, rcfg.Users, res, verdicts)

	if db := firstNonZero(opts.Database, cfg.Database); db != "" {
		if err := saveReport(ctx, db, report); err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to store run", err)
		}
		formatter.VerboseLog("stored run %s in %s", report.Run.ID, db)
	}

	if err := formatter.Success(report); err != nil {
		return err
	}
	if !report.Run.Passed {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d assertions failed", report.Failures(), len(report.Assertions)))
	}
	return nil
}

func saveReport(ctx context.Context, path string, r Report) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	// Store even when the run was interrupted.
	return st.SaveRun(context.WithoutCancel(ctx), r.Run, r.Assertions)
}

// scenarioError reports a scenario that failed to load.
func scenarioError(f *OutputFormatter, err error) error {
	if errs, ok := scenario.AsValidationErrors(err); ok {
		_ = f.Error(ErrCodeScenario, fmt.Sprintf("scenario has %d error(s)", len(errs)), validationDetails(errs))
		return WrapExitError(ExitCommandError, "invalid scenario", err)
	}
	_ = f.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to load scenario", err)
}

func firstNonZero[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
