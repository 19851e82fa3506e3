// Package chain builds immutable action chains: the ordered steps one virtual
// user executes.
//
// Every builder call returns a new Chain; no call mutates its receiver, so a
// chain can be shared and extended from several places. Loops are built in
// two phases (AsLongAs, then On) so the loop condition and counter name are
// fixed before the body is known.
package chain

// Executable is anything that can be appended to a chain: a single Step or a
// whole Chain. Appending a Chain appends its steps in order.
type Executable interface {
	flatten() []Step
}

// Chain is an ordered, immutable sequence of steps.
// The zero value is an empty chain.
type Chain struct {
	steps []Step
}

// Empty is the chain with no steps.
var Empty = Chain{}

// Of builds a chain from the given executables, flattening nested chains.
// Nil executables are skipped.
func Of(execs ...Executable) Chain {
	return Empty.Exec(execs...)
}

// Exec returns a new chain with execs appended after the receiver's steps.
func (c Chain) Exec(execs ...Executable) Chain {
	added := merge(execs)
	if len(added) == 0 {
		return c
	}
	steps := make([]Step, 0, len(c.steps)+len(added))
	steps = append(steps, c.steps...)
	steps = append(steps, added...)
	return Chain{steps: steps}
}

// Steps returns a copy of the chain's steps.
func (c Chain) Steps() []Step {
	out := make([]Step, len(c.steps))
	copy(out, c.steps)
	return out
}

// Len returns the number of top-level steps.
func (c Chain) Len() int {
	return len(c.steps)
}

func (c Chain) flatten() []Step {
	return c.steps
}

func merge(execs []Executable) []Step {
	var out []Step
	for _, e := range execs {
		if e == nil {
			continue
		}
		out = append(out, e.flatten()...)
	}
	return out
}

// Walk visits every step depth-first, descending into loop and group bodies.
// depth is 0 for top-level steps.
func Walk(c Chain, fn func(depth int, s Step)) {
	walk(c, 0, fn)
}

func walk(c Chain, depth int, fn func(int, Step)) {
	for _, s := range c.steps {
		fn(depth, s)
		switch st := s.(type) {
		case Loop:
			walk(st.body, depth+1, fn)
		case Group:
			walk(st.Body, depth+1, fn)
		}
	}
}
