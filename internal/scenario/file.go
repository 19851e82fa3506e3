// Package scenario loads YAML scenario files and compiles them into an action
// chain plus assertions.
//
// Loading happens in three passes:
//  1. the raw document is validated against an embedded CUE schema,
//  2. it is decoded into File with unknown fields rejected,
//  3. File is compiled through the chain and assertion builders.
//
// Every problem found is reported as a ValidationError before any run starts.
package scenario

// File is the YAML form of a scenario.
type File struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Users       int             `yaml:"users"`
	Iterations  int             `yaml:"iterations"`
	Duration    string          `yaml:"duration"`
	Steps       []StepSpec      `yaml:"steps"`
	Assertions  []AssertionSpec `yaml:"assertions"`
}

// StepSpec holds exactly one step.
type StepSpec struct {
	Pause    string       `yaml:"pause,omitempty"`
	Set      *SetSpec     `yaml:"set,omitempty"`
	Request  *RequestSpec `yaml:"request,omitempty"`
	Group    *GroupSpec   `yaml:"group,omitempty"`
	AsLongAs *LoopSpec    `yaml:"as_long_as,omitempty"`
}

// SetSpec stores a literal Value or the result of the EL Expr under Key.
type SetSpec struct {
	Key   string `yaml:"key"`
	Value any    `yaml:"value,omitempty"`
	Expr  string `yaml:"expr,omitempty"`
}

// RequestSpec is one HTTP request. URL may contain #{name} placeholders.
type RequestSpec struct {
	Name   string `yaml:"name"`
	Method string `yaml:"method,omitempty"`
	URL    string `yaml:"url"`
}

// GroupSpec scopes its steps under Name.
type GroupSpec struct {
	Name  string     `yaml:"name"`
	Steps []StepSpec `yaml:"steps"`
}

// LoopSpec repeats Steps while Condition holds.
type LoopSpec struct {
	Condition string     `yaml:"condition"`
	Counter   string     `yaml:"counter,omitempty"`
	ExitASAP  bool       `yaml:"exit_asap,omitempty"`
	Steps     []StepSpec `yaml:"steps"`
}

// ScopeSpec selects the assertion path. An absent scope means global.
type ScopeSpec struct {
	Global  bool     `yaml:"global,omitempty"`
	Request string   `yaml:"request,omitempty"`
	Group   []string `yaml:"group,omitempty"`
	Details []string `yaml:"details,omitempty"`
}

// AssertionSpec is one assertion.
type AssertionSpec struct {
	Scope      *ScopeSpec    `yaml:"scope,omitempty"`
	Metric     string        `yaml:"metric"`
	Stat       string        `yaml:"stat,omitempty"`
	Percentile *float64      `yaml:"percentile,omitempty"`
	Measure    string        `yaml:"measure,omitempty"`
	Condition  ConditionSpec `yaml:"condition"`
}

// ConditionSpec holds exactly one condition.
type ConditionSpec struct {
	Lt                      *float64   `yaml:"lt,omitempty"`
	Lte                     *float64   `yaml:"lte,omitempty"`
	Gt                      *float64   `yaml:"gt,omitempty"`
	Gte                     *float64   `yaml:"gte,omitempty"`
	Is                      *float64   `yaml:"is,omitempty"`
	Between                 []float64  `yaml:"between,omitempty"`
	BetweenExclusive        []float64  `yaml:"between_exclusive,omitempty"`
	Around                  []float64  `yaml:"around,omitempty"`
	AroundExclusive         []float64  `yaml:"around_exclusive,omitempty"`
	DeviatesAround          []float64  `yaml:"deviates_around,omitempty"`
	DeviatesAroundExclusive []float64  `yaml:"deviates_around_exclusive,omitempty"`
	In                      *[]float64 `yaml:"in,omitempty"`
}
