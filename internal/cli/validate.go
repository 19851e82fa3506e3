package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/surge/internal/assertion"
	"github.com/roach88/surge/internal/chain"
	"github.com/roach88/surge/internal/scenario"
)

// ValidationResult is the outcome of validating a scenario.
type ValidationResult struct {
	Valid      bool     `json:"valid"`
	Scenario   string   `json:"scenario"`
	Steps      int      `json:"steps"`
	Assertions int      `json:"assertions"`
	Warnings   []string `json:"warnings,omitempty"`
}

// RenderText writes the human-readable result.
func (r ValidationResult) RenderText(w io.Writer) error {
	st := newStyles(w)
	fmt.Fprintf(w, "%s scenario %s (%d steps, %d assertions)\n",
		st.pass.Render("VALID"), r.Scenario, r.Steps, r.Assertions)
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "%s %s\n", st.warn.Render("warning:"), warning)
	}
	return nil
}

type validationList scenario.ValidationErrors

func (l validationList) RenderText(w io.Writer) error {
	for _, e := range l {
		if _, err := fmt.Fprintf(w, "  %s\n", e.Error()); err != nil {
			return err
		}
	}
	return nil
}

func validationDetails(errs scenario.ValidationErrors) validationList {
	return validationList(errs)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario without running it",
		Long: `Validate a scenario file against the schema, compile its steps and
assertions, and warn about assertions that can never pass.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sc, err := scenario.Load(path, assertion.New(opts.Config.Percentiles))
	if err != nil {
		return scenarioError(formatter, err)
	}

	result := ValidationResult{
		Valid:      true,
		Scenario:   sc.Name,
		Assertions: len(sc.Assertions),
	}
	chain.Walk(sc.Chain, func(depth int, step chain.Step) {
		formatter.VerboseLog("%*s%s", depth*2, "", step)
		result.Steps++
	})
	for _, issue := range assertion.LintAll(sc.Assertions) {
		result.Warnings = append(result.Warnings, issue.String())
	}

	return formatter.Success(result)
}
