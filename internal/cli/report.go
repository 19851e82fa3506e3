package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/surge/internal/assertion"
	"github.com/roach88/surge/internal/runtime"
	"github.com/roach88/surge/internal/store"
)

// Report is the outcome of one run as printed and stored.
type Report struct {
	Run        store.Run       `json:"run"`
	Assertions []store.Verdict `json:"assertions"`
	// Errors holds the errors that aborted virtual users.
	Errors []string `json:"errors,omitempty"`
}

// NewReport summarises res and its verdicts.
func NewReport(scenario string, users int, res *runtime.Result, verdicts []assertion.Verdict) Report {
	snap := res.Snapshot
	r := Report{
		Run: store.Run{
			ID:           res.RunID,
			Scenario:     scenario,
			Start:        snap.Start(),
			End:          snap.End(),
			Users:        users,
			Requests:     snap.Len(),
			AbortedUsers: len(res.Errors),
			Passed:       assertion.Passed(verdicts),
		},
		Assertions: store.FromVerdicts(verdicts),
	}
	for _, rec := range snap.Records() {
		if !rec.OK {
			r.Run.FailedRequests++
		}
	}
	for _, err := range res.Errors {
		r.Errors = append(r.Errors, err.Error())
	}
	return r
}

// Failures counts the failed assertions.
func (r Report) Failures() int {
	n := 0
	for _, v := range r.Assertions {
		if !v.Passed {
			n++
		}
	}
	return n
}

// RenderText writes the human-readable report.
func (r Report) RenderText(w io.Writer) error {
	st := newStyles(w)
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", st.title.Render("Scenario "+r.Run.Scenario), st.subtle.Render("(run "+r.Run.ID+")"))
	fmt.Fprintf(&b, "Users %s | Requests %s | Failed %s | Aborted %s | Duration %s\n",
		st.value.Render(strconv.Itoa(r.Run.Users)),
		st.value.Render(strconv.Itoa(r.Run.Requests)),
		st.value.Render(strconv.Itoa(r.Run.FailedRequests)),
		st.value.Render(strconv.Itoa(r.Run.AbortedUsers)),
		st.value.Render(r.Run.End.Sub(r.Run.Start).String()),
	)
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "%s %s\n", st.warn.Render("aborted:"), e)
	}

	b.WriteString("\n")
	for _, v := range r.Assertions {
		mark := st.pass.Render("PASS")
		if !v.Passed {
			mark = st.fail.Render("FAIL")
		}
		detail := v.Error
		if v.Actual != nil {
			detail = "actual " + formatValue(*v.Actual)
		}
		fmt.Fprintf(&b, "%s %s %s\n", mark, v.Description, st.subtle.Render("("+detail+")"))
	}

	b.WriteString("\n")
	total, failed := len(r.Assertions), r.Failures()
	switch {
	case total == 0:
		b.WriteString(st.subtle.Render("No assertions") + "\n")
	case failed == 0:
		fmt.Fprintf(&b, "%s all %d assertions passed\n", st.pass.Render("PASSED:"), total)
	default:
		fmt.Fprintf(&b, "%s %d of %d assertions failed\n", st.fail.Render("FAILED:"), failed, total)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
