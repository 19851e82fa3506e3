package chain

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/surge/internal/expression"
)

// Loop repeats its body as long as its condition holds.
//
// A Loop is only obtainable through AsLongAs(...).On(...), so it always has
// a condition, a counter name and a non-empty body.
type Loop struct {
	condition   expression.Expression[bool]
	counterName string
	exitASAP    bool
	body        Chain
}

// Condition returns the loop condition.
func (l Loop) Condition() expression.Expression[bool] { return l.condition }

// CounterName returns the session key of the iteration counter.
// The name is fixed when the loop is built.
func (l Loop) CounterName() string { return l.counterName }

// ExitASAP reports whether the condition is re-checked after every body step.
func (l Loop) ExitASAP() bool { return l.exitASAP }

// Body returns the loop body.
func (l Loop) Body() Chain { return l.body }

func (l Loop) Kind() StepKind { return KindLoop }

func (l Loop) String() string {
	policy := "per iteration"
	if l.exitASAP {
		policy = "exit asap"
	}
	return fmt.Sprintf("as long as %v (counter %s, %s, %d steps)", l.condition, l.counterName, policy, l.body.Len())
}

func (l Loop) flatten() []Step { return []Step{l} }

func (Loop) isStep() {}

// LoopOption configures AsLongAs.
type LoopOption func(*loopConfig)

type loopConfig struct {
	counterName string
	exitASAP    bool
}

// WithCounterName sets the session key of the iteration counter.
// An empty name keeps the generated default.
func WithCounterName(name string) LoopOption {
	return func(c *loopConfig) {
		if name != "" {
			c.counterName = name
		}
	}
}

// ExitASAP re-checks the condition after every body step instead of once per
// iteration.
func ExitASAP() LoopOption {
	return func(c *loopConfig) {
		c.exitASAP = true
	}
}

// LoopEntry is a loop whose body has not been attached yet. It is not a Step
// and cannot be appended to a chain; call On to complete it.
type LoopEntry struct {
	parent    Chain
	condition expression.Expression[bool]
	config    loopConfig
	err       error
}

// AsLongAs starts a loop that runs while cond resolves to true.
// Without WithCounterName the counter gets a random name, generated here once.
func (c Chain) AsLongAs(cond expression.Expression[bool], opts ...LoopOption) LoopEntry {
	cfg := loopConfig{counterName: uuid.NewString()}
	for _, opt := range opts {
		opt(&cfg)
	}

	entry := LoopEntry{parent: c, condition: cond, config: cfg}
	if cond == nil {
		entry.err = &BuildError{Code: ErrCodeInvalidCondition, Message: "loop condition is nil"}
	}
	return entry
}

// AsLongAsEL starts a loop whose condition is an EL string such as
// "#{retries} < 3". A condition that does not compile fails immediately.
func (c Chain) AsLongAsEL(el string, opts ...LoopOption) (LoopEntry, error) {
	cond, err := expression.Compile[bool](el)
	if err != nil {
		return LoopEntry{}, &BuildError{Code: ErrCodeInvalidCondition, Message: "loop condition does not compile", Err: err}
	}
	return c.AsLongAs(cond, opts...), nil
}

// CounterName returns the counter name the finished loop will use, so body
// steps can be built against it before On is called.
func (e LoopEntry) CounterName() string {
	return e.config.counterName
}

// On attaches the body and returns the parent chain with the loop appended.
// The executables are merged, in order, into one body chain.
func (e LoopEntry) On(execs ...Executable) (Chain, error) {
	if e.err != nil {
		return Chain{}, e.err
	}
	body := Of(execs...)
	if body.Len() == 0 {
		return Chain{}, ErrEmptyBody
	}
	loop := Loop{
		condition:   e.condition,
		counterName: e.config.counterName,
		exitASAP:    e.config.exitASAP,
		body:        body,
	}
	return e.parent.Exec(loop), nil
}
