package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/surge/internal/expression"
	"github.com/roach88/surge/internal/session"
)

// StepKind names a step variant.
type StepKind string

const (
	KindAction  StepKind = "action"
	KindLoop    StepKind = "loop"
	KindPause   StepKind = "pause"
	KindGroup   StepKind = "group"
	KindRequest StepKind = "request"
	KindSet     StepKind = "set"
)

// Step is one executable element of a chain.
// The set of steps is closed: Action, Loop, Pause, Group, Request and Set.
type Step interface {
	Executable
	Kind() StepKind
	String() string
	isStep()
}

// ActionFunc is user code run by an Action step.
type ActionFunc func(ctx context.Context, s *session.Session) error

// Action runs arbitrary user code against the session.
type Action struct {
	Name string
	Fn   ActionFunc
}

func (a Action) Kind() StepKind  { return KindAction }
func (a Action) String() string  { return fmt.Sprintf("action %q", a.Name) }
func (a Action) flatten() []Step { return []Step{a} }

func (Action) isStep() {}

// Pause suspends the virtual user.
type Pause struct {
	Duration time.Duration
}

func (p Pause) Kind() StepKind  { return KindPause }
func (p Pause) String() string  { return "pause " + p.Duration.String() }
func (p Pause) flatten() []Step { return []Step{p} }

func (Pause) isStep() {}

// Group scopes the requests in its body under Name for statistics.
// Nested groups form a group path.
type Group struct {
	Name string
	Body Chain
}

func (g Group) Kind() StepKind  { return KindGroup }
func (g Group) String() string  { return fmt.Sprintf("group %q (%d steps)", g.Name, g.Body.Len()) }
func (g Group) flatten() []Step { return []Step{g} }

func (Group) isStep() {}

// Request issues one HTTP request and records its response time under Name.
type Request struct {
	Name   string
	Method string
	URL    expression.Expression[string]
}

func (r Request) Kind() StepKind  { return KindRequest }
func (r Request) String() string  { return fmt.Sprintf("request %q %s %v", r.Name, r.Method, r.URL) }
func (r Request) flatten() []Step { return []Step{r} }

func (Request) isStep() {}

// Set stores a resolved value in the session under Key.
type Set struct {
	Key   string
	Value expression.Expression[any]
}

func (s Set) Kind() StepKind  { return KindSet }
func (s Set) String() string  { return fmt.Sprintf("set %q", s.Key) }
func (s Set) flatten() []Step { return []Step{s} }

func (Set) isStep() {}
