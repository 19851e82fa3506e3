package assertion

import (
	"math"

	"github.com/roach88/surge/internal/config"
)

// Number is the operand domain of a target stage: integer-valued targets use
// int64, real-valued targets use float64.
type Number interface {
	~int64 | ~float64
}

// DSL is the entry point of the staged builder. It carries the configured
// percentile thresholds used by Percentile1..Percentile4.
type DSL struct {
	percentiles config.Percentiles
}

// New returns a builder bound to the given percentile thresholds.
func New(p config.Percentiles) *DSL {
	return &DSL{percentiles: p}
}

// Global starts an assertion over the whole run.
func (d *DSL) Global() PathStage { return d.For(Global()) }

// Group starts an assertion over the requests of a group path.
func (d *DSL) Group(names ...string) PathStage { return d.For(Group(names...)) }

// Request starts an assertion over the requests named name.
func (d *DSL) Request(name string) PathStage { return d.For(Request(name)) }

// Details starts an assertion over a request inside a group path, or a group path.
func (d *DSL) Details(parts ...string) PathStage { return d.For(Details(parts...)) }

// For starts an assertion over an explicit path.
func (d *DSL) For(p Path) PathStage {
	return PathStage{path: p, percentiles: d.percentiles}
}

// PathStage chooses what to measure on a path.
type PathStage struct {
	path        Path
	percentiles config.Percentiles
}

// ResponseTime measures response time.
func (s PathStage) ResponseTime() TimeStage {
	return TimeStage{path: s.path, metric: ResponseTime, percentiles: s.percentiles}
}

// AllRequests counts every request.
func (s PathStage) AllRequests() CountStage { return s.count(AllRequests) }

// FailedRequests counts failed requests.
func (s PathStage) FailedRequests() CountStage { return s.count(FailedRequests) }

// SuccessfulRequests counts successful requests.
func (s PathStage) SuccessfulRequests() CountStage { return s.count(SuccessfulRequests) }

// RequestsPerSec measures mean throughput.
func (s PathStage) RequestsPerSec() TargetStage[float64] {
	return TargetStage[float64]{path: s.path, target: MeanRequestsPerSecond{}}
}

func (s PathStage) count(m CountMetric) CountStage {
	return CountStage{path: s.path, metric: m}
}

// TimeStage chooses the stat of a time metric. All stats are integer-valued.
type TimeStage struct {
	path        Path
	metric      TimeMetric
	percentiles config.Percentiles
}

func (s TimeStage) Min() TargetStage[int64]    { return s.stat(Min{}) }
func (s TimeStage) Max() TargetStage[int64]    { return s.stat(Max{}) }
func (s TimeStage) Mean() TargetStage[int64]   { return s.stat(Mean{}) }
func (s TimeStage) StdDev() TargetStage[int64] { return s.stat(StdDev{}) }

// Percentile1 uses the first configured percentile threshold.
func (s TimeStage) Percentile1() TargetStage[int64] { return s.Percentile(s.percentiles.P1) }

// Percentile2 uses the second configured percentile threshold.
func (s TimeStage) Percentile2() TargetStage[int64] { return s.Percentile(s.percentiles.P2) }

// Percentile3 uses the third configured percentile threshold.
func (s TimeStage) Percentile3() TargetStage[int64] { return s.Percentile(s.percentiles.P3) }

// Percentile4 uses the fourth configured percentile threshold.
func (s TimeStage) Percentile4() TargetStage[int64] { return s.Percentile(s.percentiles.P4) }

// Percentile uses an arbitrary percentile. Values outside [0,100] are accepted.
func (s TimeStage) Percentile(value float64) TargetStage[int64] {
	return s.stat(Percentile{Value: value})
}

func (s TimeStage) stat(st Stat) TargetStage[int64] {
	return TargetStage[int64]{path: s.path, target: TimeTarget{Metric: s.metric, Stat: st}}
}

// CountStage chooses between an absolute count and a percentage.
type CountStage struct {
	path   Path
	metric CountMetric
}

// Count measures the number of matching requests.
func (s CountStage) Count() TargetStage[int64] {
	return TargetStage[int64]{path: s.path, target: CountTarget{Metric: s.metric}}
}

// Percent measures matching requests as a percentage of all requests.
func (s CountStage) Percent() TargetStage[float64] {
	return TargetStage[float64]{path: s.path, target: PercentTarget{Metric: s.metric}}
}

// TargetStage attaches a condition and produces the Assertion. T is the
// operand domain fixed by the previous stage.
type TargetStage[T Number] struct {
	path   Path
	target Target
}

// Target returns the target chosen so far.
func (s TargetStage[T]) Target() Target { return s.target }

func (s TargetStage[T]) Lt(v T) Assertion  { return s.assert(Lt{Value: float64(v)}) }
func (s TargetStage[T]) Lte(v T) Assertion { return s.assert(Lte{Value: float64(v)}) }
func (s TargetStage[T]) Gt(v T) Assertion  { return s.assert(Gt{Value: float64(v)}) }
func (s TargetStage[T]) Gte(v T) Assertion { return s.assert(Gte{Value: float64(v)}) }

// Between passes for values in [min,max].
func (s TargetStage[T]) Between(min, max T) Assertion {
	return s.between(float64(min), float64(max), true)
}

// BetweenExclusive passes for values in (min,max).
func (s TargetStage[T]) BetweenExclusive(min, max T) Assertion {
	return s.between(float64(min), float64(max), false)
}

// Around passes for values in [mean-plusOrMinus, mean+plusOrMinus].
func (s TargetStage[T]) Around(mean, plusOrMinus T) Assertion {
	return s.around(float64(mean), float64(plusOrMinus), true)
}

// AroundExclusive passes for values in (mean-plusOrMinus, mean+plusOrMinus).
func (s TargetStage[T]) AroundExclusive(mean, plusOrMinus T) Assertion {
	return s.around(float64(mean), float64(plusOrMinus), false)
}

// DeviatesAround passes for values within floor(mean*percentDeviation) of mean,
// bounds included. percentDeviation is a fraction: 0.1 for ten percent.
// The margin is floored for real-valued targets too.
func (s TargetStage[T]) DeviatesAround(mean T, percentDeviation float64) Assertion {
	return s.deviates(float64(mean), percentDeviation, true)
}

// DeviatesAroundExclusive is DeviatesAround with bounds excluded.
func (s TargetStage[T]) DeviatesAroundExclusive(mean T, percentDeviation float64) Assertion {
	return s.deviates(float64(mean), percentDeviation, false)
}

// Is passes when the value equals v exactly.
func (s TargetStage[T]) Is(v T) Assertion { return s.assert(Is{Value: float64(v)}) }

// ShouldBe is an alias of Is.
func (s TargetStage[T]) ShouldBe(v T) Assertion { return s.Is(v) }

// In passes when the value is one of values. Duplicates are dropped.
func (s TargetStage[T]) In(values ...T) Assertion {
	fs := make([]float64, len(values))
	for i, v := range values {
		fs[i] = float64(v)
	}
	return s.assert(NewIn(fs...))
}

// Within is an alias of In.
func (s TargetStage[T]) Within(values ...T) Assertion { return s.In(values...) }

func (s TargetStage[T]) between(min, max float64, inclusive bool) Assertion {
	return s.assert(Between{Min: min, Max: max, Inclusive: inclusive})
}

func (s TargetStage[T]) around(mean, plusOrMinus float64, inclusive bool) Assertion {
	return s.between(mean-plusOrMinus, mean+plusOrMinus, inclusive)
}

func (s TargetStage[T]) deviates(mean, percentDeviation float64, inclusive bool) Assertion {
	margin := math.Floor(mean * percentDeviation)
	return s.between(mean-margin, mean+margin, inclusive)
}

func (s TargetStage[T]) assert(c Condition) Assertion {
	return newAssertion(s.path, s.target, c)
}
