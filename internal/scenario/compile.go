package scenario

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/roach88/surge/internal/assertion"
	"github.com/roach88/surge/internal/chain"
	"github.com/roach88/surge/internal/expression"
)

// Scenario is a compiled scenario file.
type Scenario struct {
	Name        string
	Description string
	Users       int
	Iterations  int
	Duration    time.Duration
	Chain       chain.Chain
	Assertions  []assertion.Assertion
}

type compiler struct {
	dsl  *assertion.DSL
	errs ValidationErrors
}

func (c *compiler) fail(field, code, format string, args ...any) {
	c.errs = append(c.errs, ValidationError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Compile builds the chain and assertions of f. Assertions use dsl, so they
// pick up its percentile thresholds. All errors are collected.
func Compile(f *File, dsl *assertion.DSL) (*Scenario, error) {
	c := &compiler{dsl: dsl}

	sc := &Scenario{
		Name:        f.Name,
		Description: f.Description,
		Users:       f.Users,
		Iterations:  f.Iterations,
	}
	if f.Duration != "" {
		d, err := time.ParseDuration(f.Duration)
		if err != nil {
			c.fail("duration", ErrInvalidStep, "%v", err)
		}
		sc.Duration = d
	}

	sc.Chain = c.steps(f.Steps, "steps")
	for i, a := range f.Assertions {
		if built, ok := c.assertion(a, fmt.Sprintf("assertions.%d", i)); ok {
			sc.Assertions = append(sc.Assertions, built)
		}
	}

	if len(c.errs) > 0 {
		return nil, c.errs
	}
	return sc, nil
}

func (c *compiler) steps(specs []StepSpec, field string) chain.Chain {
	out := chain.Empty
	for i, s := range specs {
		if step, ok := c.step(s, fmt.Sprintf("%s.%d", field, i)); ok {
			out = out.Exec(step)
		}
	}
	return out
}

func (c *compiler) step(s StepSpec, field string) (chain.Executable, bool) {
	set := 0
	for _, present := range []bool{s.Pause != "", s.Set != nil, s.Request != nil, s.Group != nil, s.AsLongAs != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		c.fail(field, ErrInvalidStep, "a step needs exactly one of pause, set, request, group, as_long_as (got %d)", set)
		return nil, false
	}

	switch {
	case s.Pause != "":
		d, err := time.ParseDuration(s.Pause)
		if err != nil {
			c.fail(field+".pause", ErrInvalidStep, "%v", err)
			return nil, false
		}
		return chain.Pause{Duration: d}, true

	case s.Set != nil:
		if s.Set.Expr != "" {
			e, err := expression.Compile[any](s.Set.Expr)
			if err != nil {
				c.fail(field+".set.expr", ErrInvalidExpr, "%v", err)
				return nil, false
			}
			return chain.Set{Key: s.Set.Key, Value: e}, true
		}
		return chain.Set{Key: s.Set.Key, Value: expression.Static(s.Set.Value)}, true

	case s.Request != nil:
		url, err := expression.Compile[string](s.Request.URL)
		if err != nil {
			c.fail(field+".request.url", ErrInvalidExpr, "%v", err)
			return nil, false
		}
		method := strings.ToUpper(s.Request.Method)
		if method == "" {
			method = http.MethodGet
		}
		return chain.Request{Name: s.Request.Name, Method: method, URL: url}, true

	case s.Group != nil:
		body := c.steps(s.Group.Steps, field+".group.steps")
		return chain.Group{Name: s.Group.Name, Body: body}, true

	default:
		return c.loop(s.AsLongAs, field+".as_long_as")
	}
}

func (c *compiler) loop(l *LoopSpec, field string) (chain.Executable, bool) {
	opts := []chain.LoopOption{chain.WithCounterName(l.Counter)}
	if l.ExitASAP {
		opts = append(opts, chain.ExitASAP())
	}

	entry, err := chain.Empty.AsLongAsEL(l.Condition, opts...)
	if err != nil {
		c.fail(field+".condition", ErrInvalidExpr, "%v", err)
		return nil, false
	}

	body := c.steps(l.Steps, field+".steps")
	built, err := entry.On(body)
	if err != nil {
		if chain.IsEmptyBody(err) {
			c.fail(field+".steps", ErrEmptyLoopBody, "loop body needs at least one step")
		} else {
			c.fail(field, ErrInvalidStep, "%v", err)
		}
		return nil, false
	}
	return built, true
}

func (c *compiler) assertion(a AssertionSpec, field string) (assertion.Assertion, bool) {
	ps, ok := c.scope(a.Scope, field+".scope")
	if !ok {
		return assertion.Assertion{}, false
	}

	switch a.Metric {
	case "response_time":
		stage, ok := c.stat(ps.ResponseTime(), a, field)
		if !ok {
			return assertion.Assertion{}, false
		}
		return applyCondition(c, stage, a.Condition, asInt, field+".condition")

	case "all_requests", "failed_requests", "successful_requests":
		var cs assertion.CountStage
		switch a.Metric {
		case "all_requests":
			cs = ps.AllRequests()
		case "failed_requests":
			cs = ps.FailedRequests()
		default:
			cs = ps.SuccessfulRequests()
		}
		switch a.Measure {
		case "", "count":
			return applyCondition(c, cs.Count(), a.Condition, asInt, field+".condition")
		case "percent":
			return applyCondition(c, cs.Percent(), a.Condition, asFloat, field+".condition")
		default:
			c.fail(field+".measure", ErrInvalidAssertion, "unknown measure %q", a.Measure)
			return assertion.Assertion{}, false
		}

	case "requests_per_sec":
		return applyCondition(c, ps.RequestsPerSec(), a.Condition, asFloat, field+".condition")

	default:
		c.fail(field+".metric", ErrInvalidAssertion, "unknown metric %q", a.Metric)
		return assertion.Assertion{}, false
	}
}

func (c *compiler) scope(s *ScopeSpec, field string) (assertion.PathStage, bool) {
	if s == nil {
		return c.dsl.Global(), true
	}
	switch {
	case s.Request != "":
		return c.dsl.Request(s.Request), true
	case len(s.Group) > 0:
		return c.dsl.Group(s.Group...), true
	case len(s.Details) > 0:
		return c.dsl.Details(s.Details...), true
	case s.Global:
		return c.dsl.Global(), true
	default:
		c.fail(field, ErrInvalidAssertion, "scope needs one of global, request, group, details")
		return assertion.PathStage{}, false
	}
}

func (c *compiler) stat(ts assertion.TimeStage, a AssertionSpec, field string) (assertion.TargetStage[int64], bool) {
	switch a.Stat {
	case "min":
		return ts.Min(), true
	case "max":
		return ts.Max(), true
	case "mean":
		return ts.Mean(), true
	case "stddev":
		return ts.StdDev(), true
	case "percentile1":
		return ts.Percentile1(), true
	case "percentile2":
		return ts.Percentile2(), true
	case "percentile3":
		return ts.Percentile3(), true
	case "percentile4":
		return ts.Percentile4(), true
	case "percentile":
		if a.Percentile == nil {
			c.fail(field+".percentile", ErrInvalidAssertion, "stat percentile needs a percentile value")
			return assertion.TargetStage[int64]{}, false
		}
		return ts.Percentile(*a.Percentile), true
	case "":
		c.fail(field+".stat", ErrInvalidAssertion, "response_time needs a stat")
	default:
		c.fail(field+".stat", ErrInvalidAssertion, "unknown stat %q", a.Stat)
	}
	return assertion.TargetStage[int64]{}, false
}

func asInt(v float64) (int64, error) {
	if v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%v is not an integer; time and count targets take integer operands", v)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if v < math.MinInt64 || v >= math.MaxInt64 {
		return 0, fmt.Errorf("%v is out of range for an integer operand", v)
	}
	return int64(v), nil
}

func asFloat(v float64) (float64, error) {
	return v, nil
}

// applyCondition attaches the single condition in cs to stage. conv maps
// YAML numbers into the stage's operand domain.
func applyCondition[T assertion.Number](c *compiler, stage assertion.TargetStage[T], cs ConditionSpec, conv func(float64) (T, error), field string) (assertion.Assertion, bool) {
	var (
		built   assertion.Assertion
		count   int
		bad     error
		badCode = ErrNonIntegerValue
	)
	one := func(p *float64, f func(T) assertion.Assertion) {
		if p == nil {
			return
		}
		count++
		v, err := conv(*p)
		if err != nil {
			bad = err
			return
		}
		built = f(v)
	}
	pair := func(p []float64, f func(T, T) assertion.Assertion) {
		if p == nil {
			return
		}
		count++
		if len(p) != 2 {
			bad, badCode = fmt.Errorf("expected two values, got %d", len(p)), ErrInvalidAssertion
			return
		}
		a, err := conv(p[0])
		if err != nil {
			bad = err
			return
		}
		b, err := conv(p[1])
		if err != nil {
			bad = err
			return
		}
		built = f(a, b)
	}
	deviates := func(p []float64, f func(T, float64) assertion.Assertion) {
		if p == nil {
			return
		}
		count++
		if len(p) != 2 {
			bad, badCode = fmt.Errorf("expected mean and percent deviation, got %d values", len(p)), ErrInvalidAssertion
			return
		}
		mean, err := conv(p[0])
		if err != nil {
			bad = err
			return
		}
		built = f(mean, p[1])
	}

	one(cs.Lt, stage.Lt)
	one(cs.Lte, stage.Lte)
	one(cs.Gt, stage.Gt)
	one(cs.Gte, stage.Gte)
	one(cs.Is, stage.Is)
	pair(cs.Between, stage.Between)
	pair(cs.BetweenExclusive, stage.BetweenExclusive)
	pair(cs.Around, stage.Around)
	pair(cs.AroundExclusive, stage.AroundExclusive)
	deviates(cs.DeviatesAround, stage.DeviatesAround)
	deviates(cs.DeviatesAroundExclusive, stage.DeviatesAroundExclusive)
	if cs.In != nil {
		count++
		values := make([]T, 0, len(*cs.In))
		for _, f := range *cs.In {
			v, err := conv(f)
			if err != nil {
				bad = err
				break
			}
			values = append(values, v)
		}
		if bad == nil {
			built = stage.In(values...)
		}
	}

	switch {
	case count != 1:
		c.fail(field, ErrInvalidAssertion, "a condition needs exactly one operator (got %d)", count)
		return assertion.Assertion{}, false
	case bad != nil:
		c.fail(field, badCode, "%v", bad)
		return assertion.Assertion{}, false
	}
	return built, true
}
