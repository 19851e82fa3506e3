// Package assertion declares post-run pass/fail criteria and evaluates them
// against run statistics.
//
// Assertions are built through staged builders that only expose valid
// choices at each step:
//
//	dsl := assertion.New(cfg.Percentiles)
//	a := dsl.Request("Login").ResponseTime().Percentile3().Lt(500)
//
// Every builder value is immutable and may be reused. An Assertion is a
// (path, target, condition) triple and can only be created by a builder.
package assertion

import (
	"github.com/google/uuid"
)

// Assertion is an immutable (path, target, condition) triple.
// Each Assertion has its own ID, so identical triples remain distinct values.
type Assertion struct {
	id        uuid.UUID
	path      Path
	target    Target
	condition Condition
}

func newAssertion(path Path, target Target, condition Condition) Assertion {
	return Assertion{
		id:        uuid.New(),
		path:      path,
		target:    target,
		condition: condition,
	}
}

// ID returns the assertion's unique identifier.
func (a Assertion) ID() uuid.UUID { return a.id }

// Path returns the scope the assertion is evaluated over.
func (a Assertion) Path() Path { return a.path }

// Target returns the measured quantity.
func (a Assertion) Target() Target { return a.target }

// Condition returns the comparison applied to the target's value.
func (a Assertion) Condition() Condition { return a.condition }

// String describes the assertion, e.g.
// "Login: 95th percentile of response time is less than 500".
func (a Assertion) String() string {
	if a.target == nil || a.condition == nil {
		return a.path.Label() + ": <incomplete assertion>"
	}
	return a.path.Label() + ": " + a.target.String() + " " + a.condition.String()
}
