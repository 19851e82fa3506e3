package assertion

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeMetric is a metric measured over a time series.
type TimeMetric int

const (
	ResponseTime TimeMetric = iota
)

func (m TimeMetric) String() string {
	switch m {
	case ResponseTime:
		return "response time"
	default:
		return "unknown time metric"
	}
}

// CountMetric is a metric measured by counting requests.
type CountMetric int

const (
	AllRequests CountMetric = iota
	FailedRequests
	SuccessfulRequests
)

func (m CountMetric) String() string {
	switch m {
	case AllRequests:
		return "all requests"
	case FailedRequests:
		return "failed requests"
	case SuccessfulRequests:
		return "successful requests"
	default:
		return "unknown count metric"
	}
}

// Stat aggregates a time series. The set is closed: Min, Max, Mean, StdDev
// and Percentile.
type Stat interface {
	fmt.Stringer
	isStat()
}

type (
	Min    struct{}
	Max    struct{}
	Mean   struct{}
	StdDev struct{}

	// Percentile is the value below which Value percent of observations fall.
	// Value is expected in [0,100] but is not checked; see Lint.
	Percentile struct {
		Value float64
	}
)

func (Min) isStat()        {}
func (Max) isStat()        {}
func (Mean) isStat()       {}
func (StdDev) isStat()     {}
func (Percentile) isStat() {}

func (Min) String() string    { return "min" }
func (Max) String() string    { return "max" }
func (Mean) String() string   { return "mean" }
func (StdDev) String() string { return "standard deviation" }

func (p Percentile) String() string {
	return ordinal(p.Value) + " percentile"
}

// Target is the quantity an assertion measures. The set is closed:
// MeanRequestsPerSecond, TimeTarget, CountTarget and PercentTarget.
type Target interface {
	fmt.Stringer
	isTarget()
}

// MeanRequestsPerSecond is the request throughput over the run (real-valued).
type MeanRequestsPerSecond struct{}

// TimeTarget is a stat over a time metric, in integer milliseconds.
type TimeTarget struct {
	Metric TimeMetric
	Stat   Stat
}

// CountTarget is the number of requests matching Metric.
type CountTarget struct {
	Metric CountMetric
}

// PercentTarget is the share of requests matching Metric, in percent of all
// requests on the path (real-valued).
type PercentTarget struct {
	Metric CountMetric
}

func (MeanRequestsPerSecond) isTarget() {}
func (TimeTarget) isTarget()            {}
func (CountTarget) isTarget()           {}
func (PercentTarget) isTarget()         {}

func (MeanRequestsPerSecond) String() string { return "mean requests per second" }
func (t TimeTarget) String() string          { return t.Stat.String() + " of " + t.Metric.String() }
func (t CountTarget) String() string         { return "count of " + t.Metric.String() }
func (t PercentTarget) String() string       { return "percentage of " + t.Metric.String() }

// Condition compares a resolved value. The set is closed: Lt, Lte, Gt, Gte,
// Between, Is and In. Operands are always float64.
type Condition interface {
	fmt.Stringer
	isCondition()
}

type (
	Lt  struct{ Value float64 }
	Lte struct{ Value float64 }
	Gt  struct{ Value float64 }
	Gte struct{ Value float64 }
	Is  struct{ Value float64 }

	// Between passes for values in [Min,Max], or (Min,Max) when not Inclusive.
	// Min > Max is accepted and never passes.
	Between struct {
		Min       float64
		Max       float64
		Inclusive bool
	}

	// In passes for members of a finite set.
	In struct {
		values []float64
	}
)

// NewIn builds an In condition, dropping duplicate values.
func NewIn(values ...float64) In {
	seen := make(map[float64]bool, len(values))
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return In{values: out}
}

// Values returns a copy of the set, in first-seen order.
func (c In) Values() []float64 {
	out := make([]float64, len(c.values))
	copy(out, c.values)
	return out
}

// Contains reports whether v is a member of the set.
func (c In) Contains(v float64) bool {
	for _, x := range c.values {
		if x == v {
			return true
		}
	}
	return false
}

func (Lt) isCondition()      {}
func (Lte) isCondition()     {}
func (Gt) isCondition()      {}
func (Gte) isCondition()     {}
func (Is) isCondition()      {}
func (Between) isCondition() {}
func (In) isCondition()      {}

func (c Lt) String() string  { return "is less than " + formatNumber(c.Value) }
func (c Lte) String() string { return "is less than or equal to " + formatNumber(c.Value) }
func (c Gt) String() string  { return "is greater than " + formatNumber(c.Value) }
func (c Gte) String() string { return "is greater than or equal to " + formatNumber(c.Value) }
func (c Is) String() string  { return "is " + formatNumber(c.Value) }

func (c Between) String() string {
	bounds := "inclusive"
	if !c.Inclusive {
		bounds = "exclusive"
	}
	return fmt.Sprintf("is between %s and %s (%s)", formatNumber(c.Min), formatNumber(c.Max), bounds)
}

func (c In) String() string {
	parts := make([]string, len(c.values))
	for i, v := range c.values {
		parts[i] = formatNumber(v)
	}
	return "is in [" + strings.Join(parts, ", ") + "]"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ordinal(v float64) string {
	s := formatNumber(v)
	if v != float64(int64(v)) {
		return s + "th"
	}
	n := int64(v)
	if n < 0 {
		n = -n
	}
	switch {
	case n%100 >= 11 && n%100 <= 13:
		return s + "th"
	case n%10 == 1:
		return s + "st"
	case n%10 == 2:
		return s + "nd"
	case n%10 == 3:
		return s + "rd"
	default:
		return s + "th"
	}
}
