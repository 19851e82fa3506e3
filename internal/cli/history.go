package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/roach88/surge/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// History is the list of stored runs, newest first.
type History struct {
	Runs []store.RunSummary `json:"runs"`
}

// RenderText writes the runs as a table.
func (h History) RenderText(w io.Writer) error {
	if len(h.Runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs stored")
		return err
	}

	st := newStyles(w)
	rows := make([][]string, 0, len(h.Runs))
	for _, r := range h.Runs {
		result := "PASS"
		if !r.Passed {
			result = "FAIL"
		}
		rows = append(rows, []string{
			r.ID,
			r.Scenario,
			r.Start.Format(time.DateTime),
			r.End.Sub(r.Start).String(),
			strconv.Itoa(r.Requests),
			strconv.Itoa(r.FailedRequests),
			fmt.Sprintf("%d/%d", r.Assertions-r.Failures, r.Assertions),
			result,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.subtle).
		Headers("RUN", "SCENARIO", "STARTED", "DURATION", "REQUESTS", "FAILED", "PASSED", "RESULT").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.title
			}
			if col == 7 {
				if rows[row][7] == "PASS" {
					return st.pass
				}
				return st.fail
			}
			return lipgloss.NewStyle()
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored runs",
		Long: `List runs stored by "surge run --db", newest first, with their
assertion results.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database (default from config)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	db := firstNonZero(opts.Database, opts.Config.Database)
	if db == "" {
		_ = formatter.Error(ErrCodeStore, "no database: pass --db or set database in surge.yaml", nil)
		return NewExitError(ExitCommandError, "no database configured")
	}

	st, err := store.Open(db)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	return formatter.Success(History{Runs: runs})
}
