package assertion

import (
	"errors"
	"fmt"
	"sync"
)

// ErrPathNotFound is returned by a StatsProvider for a path that was never
// observed in the run.
var ErrPathNotFound = errors.New("path not found")

// StatsProvider resolves target values against a settled run.
type StatsProvider interface {
	// StatValue returns the value of target over path. It returns an error
	// matching ErrPathNotFound when the path was never observed.
	StatValue(path Path, target Target) (float64, error)
}

// MissingPathError reports an assertion path with no data in the run.
type MissingPathError struct {
	Path string
}

func (e *MissingPathError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPathNotFound, e.Path)
}

func (e *MissingPathError) Unwrap() error {
	return ErrPathNotFound
}

// IsMissingPath returns true if err reports a path that was never observed.
func IsMissingPath(err error) bool {
	return errors.Is(err, ErrPathNotFound)
}

// Verdict is the outcome of one assertion.
type Verdict struct {
	Assertion Assertion
	// Path is the resolved path label.
	Path string
	// Actual is the resolved value; zero when Err is set.
	Actual float64
	Passed bool
	// Err is set when the value could not be resolved. The verdict is then failed.
	Err error
}

// PathMissing reports whether the verdict failed because the path was never observed.
func (v Verdict) PathMissing() bool {
	return IsMissingPath(v.Err)
}

// Evaluate checks a single assertion.
func (a Assertion) Evaluate(stats StatsProvider) Verdict {
	v := Verdict{Assertion: a, Path: a.path.Label()}

	actual, err := stats.StatValue(a.path, a.target)
	if err != nil {
		var mp *MissingPathError
		if errors.Is(err, ErrPathNotFound) && !errors.As(err, &mp) {
			err = &MissingPathError{Path: v.Path}
		}
		v.Err = err
		return v
	}
	v.Actual = actual

	passed, err := check(a.condition, actual)
	if err != nil {
		v.Err = err
		return v
	}
	v.Passed = passed
	return v
}

// Evaluate checks every assertion against stats and returns one verdict per
// assertion, in input order. A failing or unresolvable assertion never stops
// the others. Assertions are evaluated concurrently; stats must be safe for
// concurrent reads.
func Evaluate(assertions []Assertion, stats StatsProvider) []Verdict {
	verdicts := make([]Verdict, len(assertions))

	var wg sync.WaitGroup
	for i, a := range assertions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			verdicts[i] = a.Evaluate(stats)
		}()
	}
	wg.Wait()

	return verdicts
}

// Passed reports whether every verdict passed.
func Passed(verdicts []Verdict) bool {
	for _, v := range verdicts {
		if !v.Passed {
			return false
		}
	}
	return true
}

// Failures returns the failed verdicts.
func Failures(verdicts []Verdict) []Verdict {
	var out []Verdict
	for _, v := range verdicts {
		if !v.Passed {
			out = append(out, v)
		}
	}
	return out
}

func check(c Condition, v float64) (bool, error) {
	switch c := c.(type) {
	case Lt:
		return v < c.Value, nil
	case Lte:
		return v <= c.Value, nil
	case Gt:
		return v > c.Value, nil
	case Gte:
		return v >= c.Value, nil
	case Between:
		if c.Inclusive {
			return c.Min <= v && v <= c.Max, nil
		}
		return c.Min < v && v < c.Max, nil
	case Is:
		return v == c.Value, nil
	case In:
		return c.Contains(v), nil
	default:
		return false, fmt.Errorf("unsupported condition %T", c)
	}
}
