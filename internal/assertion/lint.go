package assertion

import (
	"fmt"

	"github.com/google/uuid"
)

// Issue is a suspicious but accepted assertion. Construction never rejects
// out-of-domain values; Lint reports them so they can be fixed before a run.
type Issue struct {
	AssertionID uuid.UUID
	Assertion   string
	Message     string
}

func (i Issue) String() string {
	return i.Assertion + ": " + i.Message
}

// Lint reports values that make an assertion nonsensical or unsatisfiable.
func Lint(a Assertion) []Issue {
	var msgs []string

	if t, ok := a.target.(TimeTarget); ok {
		if p, ok := t.Stat.(Percentile); ok && (p.Value < 0 || p.Value > 100) {
			msgs = append(msgs, fmt.Sprintf("percentile %s is outside [0,100]", formatNumber(p.Value)))
		}
	}

	switch c := a.condition.(type) {
	case Between:
		switch {
		case c.Min > c.Max:
			msgs = append(msgs, fmt.Sprintf("range min %s is greater than max %s and can never pass",
				formatNumber(c.Min), formatNumber(c.Max)))
		case c.Min == c.Max && !c.Inclusive:
			msgs = append(msgs, "exclusive range is empty and can never pass")
		}
	case In:
		if len(c.values) == 0 {
			msgs = append(msgs, "value set is empty and can never pass")
		}
	}

	if _, ok := a.target.(PercentTarget); ok {
		for _, v := range operands(a.condition) {
			if v < 0 || v > 100 {
				msgs = append(msgs, fmt.Sprintf("percentage operand %s is outside [0,100]", formatNumber(v)))
				break
			}
		}
	}

	issues := make([]Issue, 0, len(msgs))
	for _, m := range msgs {
		issues = append(issues, Issue{AssertionID: a.id, Assertion: a.String(), Message: m})
	}
	return issues
}

// LintAll lints every assertion, in order.
func LintAll(assertions []Assertion) []Issue {
	var out []Issue
	for _, a := range assertions {
		out = append(out, Lint(a)...)
	}
	return out
}

func operands(c Condition) []float64 {
	switch c := c.(type) {
	case Lt:
		return []float64{c.Value}
	case Lte:
		return []float64{c.Value}
	case Gt:
		return []float64{c.Value}
	case Gte:
		return []float64{c.Value}
	case Is:
		return []float64{c.Value}
	case Between:
		return []float64{c.Min, c.Max}
	case In:
		return c.Values()
	default:
		return nil
	}
}
