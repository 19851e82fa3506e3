package chain

// LoopState is the per-user state of one loop execution.
type LoopState int

const (
	// Evaluating means the condition check is pending.
	Evaluating LoopState = iota
	// InBody means body steps are executing.
	InBody
	// Exited is terminal.
	Exited
)

func (s LoopState) String() string {
	switch s {
	case Evaluating:
		return "evaluating"
	case InBody:
		return "in_body"
	case Exited:
		return "exited"
	default:
		return "unknown"
	}
}

// LoopMachine tracks the state of one execution of a Loop for one user.
// It holds no session state; the caller resolves the condition and owns the
// counter.
type LoopMachine struct {
	exitASAP bool
	state    LoopState
}

// Machine returns a new state machine for the loop, starting in Evaluating.
func (l Loop) Machine() *LoopMachine {
	return &LoopMachine{exitASAP: l.exitASAP, state: Evaluating}
}

// State returns the current state.
func (m *LoopMachine) State() LoopState {
	return m.state
}

// Check applies a condition result to the machine and returns the new state.
//
// From Evaluating, true enters InBody and false exits. From InBody (exit asap
// only) false exits and true stays in the body. Check reports entered=true
// exactly when the call moved the machine into InBody; that is when the
// iteration counter increments.
func (m *LoopMachine) Check(holds bool) (state LoopState, entered bool) {
	switch m.state {
	case Evaluating:
		if holds {
			m.state = InBody
			return m.state, true
		}
		m.state = Exited
	case InBody:
		if !holds {
			m.state = Exited
		}
	}
	return m.state, false
}

// CheckAfterStep reports whether the condition must be re-checked after a
// body step. last is true for the final step of the iteration, which is
// followed by the regular Evaluating check anyway.
func (m *LoopMachine) CheckAfterStep(last bool) bool {
	return m.exitASAP && !last && m.state == InBody
}

// EndIteration moves a completed iteration back to Evaluating.
func (m *LoopMachine) EndIteration() LoopState {
	if m.state == InBody {
		m.state = Evaluating
	}
	return m.state
}
