package store

import (
	"time"

	"github.com/roach88/surge/internal/assertion"
)

// Run is one stored run.
type Run struct {
	ID             string    `json:"id"`
	Scenario       string    `json:"scenario"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Users          int       `json:"users"`
	Requests       int       `json:"requests"`
	FailedRequests int       `json:"failed_requests"`
	AbortedUsers   int       `json:"aborted_users"`
	Passed         bool      `json:"passed"`
}

// Verdict is one stored assertion verdict.
type Verdict struct {
	Seq         int    `json:"seq"`
	AssertionID string `json:"assertion_id"`
	Description string `json:"description"`
	Path        string `json:"path"`
	// Actual is nil when the value could not be resolved.
	Actual *float64 `json:"actual,omitempty"`
	Passed bool     `json:"passed"`
	Error  string   `json:"error,omitempty"`
}

// RunSummary is a run plus its verdict counts.
type RunSummary struct {
	Run
	Assertions int `json:"assertions"`
	Failures   int `json:"failures"`
}

// FromVerdicts converts evaluator verdicts, keeping their order.
func FromVerdicts(verdicts []assertion.Verdict) []Verdict {
	out := make([]Verdict, len(verdicts))
	for i, v := range verdicts {
		rec := Verdict{
			Seq:         i,
			AssertionID: v.Assertion.ID().String(),
			Description: v.Assertion.String(),
			Path:        v.Path,
			Passed:      v.Passed,
		}
		if v.Err != nil {
			rec.Error = v.Err.Error()
		} else {
			actual := v.Actual
			rec.Actual = &actual
		}
		out[i] = rec
	}
	return out
}
