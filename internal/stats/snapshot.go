package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/roach88/surge/internal/assertion"
)

// Response times are tracked in milliseconds, up to one hour, with
// three significant figures.
const (
	histogramMax     = int64(time.Hour / time.Millisecond)
	histogramSigFigs = 3
)

// Snapshot is an immutable, settled view of a run. It is safe for concurrent
// reads.
type Snapshot struct {
	start   time.Time
	end     time.Time
	records []Record
}

// NewSnapshot builds a snapshot directly from records. Intended for tests and
// for replaying stored runs.
func NewSnapshot(start, end time.Time, records []Record) *Snapshot {
	cp := make([]Record, len(records))
	for i, r := range records {
		cp[i] = normalizeRecord(r)
	}
	return &Snapshot{start: start, end: end, records: cp}
}

// Start returns the run start.
func (s *Snapshot) Start() time.Time { return s.start }

// End returns the run end.
func (s *Snapshot) End() time.Time { return s.end }

// Duration returns the run duration.
func (s *Snapshot) Duration() time.Duration { return s.end.Sub(s.start) }

// Len returns the number of records.
func (s *Snapshot) Len() int { return len(s.records) }

// Records returns a copy of the records.
func (s *Snapshot) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// StatValue resolves target over the records selected by path.
//
// Time targets are integer milliseconds. Percent targets are in [0,100] and
// 0 for a path without requests. Every path except Global fails with
// assertion.ErrPathNotFound when it selects no record.
func (s *Snapshot) StatValue(path assertion.Path, target assertion.Target) (float64, error) {
	recs := s.Select(path)
	if len(recs) == 0 && path.Kind() != assertion.PathGlobal {
		return 0, &assertion.MissingPathError{Path: path.Label()}
	}

	switch t := target.(type) {
	case assertion.TimeTarget:
		return timeStat(recs, t.Stat)
	case assertion.CountTarget:
		return float64(count(recs, t.Metric)), nil
	case assertion.PercentTarget:
		if len(recs) == 0 {
			return 0, nil
		}
		return float64(count(recs, t.Metric)) / float64(len(recs)) * 100, nil
	case assertion.MeanRequestsPerSecond:
		secs := s.Duration().Seconds()
		if secs <= 0 {
			return 0, nil
		}
		return float64(len(recs)) / secs, nil
	default:
		return 0, fmt.Errorf("unsupported target %T", target)
	}
}

// Select returns the records a path selects.
func (s *Snapshot) Select(path assertion.Path) []Record {
	parts := path.Parts()

	switch path.Kind() {
	case assertion.PathGlobal:
		return s.Records()
	case assertion.PathGroup:
		return s.filter(func(r Record) bool { return hasPrefix(r.Groups, parts) })
	case assertion.PathRequest:
		return s.filter(func(r Record) bool { return r.Name == parts[0] })
	case assertion.PathDetails:
		if len(parts) == 0 {
			return s.Records()
		}
		groups, name := parts[:len(parts)-1], parts[len(parts)-1]
		reqs := s.filter(func(r Record) bool { return r.Name == name && equal(r.Groups, groups) })
		if len(reqs) > 0 {
			return reqs
		}
		return s.filter(func(r Record) bool { return hasPrefix(r.Groups, parts) })
	default:
		return nil
	}
}

// Groups returns every distinct group path seen in the run, outermost first.
func (s *Snapshot) Groups() [][]string {
	seen := make(map[string]bool)
	var out [][]string
	for _, r := range s.records {
		for i := 1; i <= len(r.Groups); i++ {
			p := r.Groups[:i]
			k := fmt.Sprint(p)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, append([]string(nil), p...))
		}
	}
	return out
}

func (s *Snapshot) filter(keep func(Record) bool) []Record {
	var out []Record
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func count(recs []Record, m assertion.CountMetric) int {
	n := 0
	for _, r := range recs {
		switch m {
		case assertion.AllRequests:
			n++
		case assertion.FailedRequests:
			if !r.OK {
				n++
			}
		case assertion.SuccessfulRequests:
			if r.OK {
				n++
			}
		}
	}
	return n
}

func timeStat(recs []Record, st assertion.Stat) (float64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	ms := make([]int64, len(recs))
	for i, r := range recs {
		ms[i] = r.Duration.Round(time.Millisecond).Milliseconds()
	}

	lo, hi := ms[0], ms[0]
	for _, v := range ms[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	switch st := st.(type) {
	case assertion.Min:
		return float64(lo), nil
	case assertion.Max:
		return float64(hi), nil
	case assertion.Mean:
		return math.Round(mean(ms)), nil
	case assertion.StdDev:
		m := mean(ms)
		var sq float64
		for _, v := range ms {
			d := float64(v) - m
			sq += d * d
		}
		return math.Round(math.Sqrt(sq / float64(len(ms)))), nil
	case assertion.Percentile:
		h := hdrhistogram.New(1, histogramMax, histogramSigFigs)
		for _, v := range ms {
			if err := h.RecordValue(v); err != nil {
				return 0, fmt.Errorf("record %dms: %w", v, err)
			}
		}
		// Below half a sample the histogram answers 0, and its buckets can
		// overshoot the largest value, so the result is kept inside [lo, hi].
		if st.Value/100*float64(len(ms)) < 0.5 {
			return float64(lo), nil
		}
		return float64(min(max(h.ValueAtQuantile(st.Value), lo), hi)), nil
	default:
		return 0, fmt.Errorf("unsupported stat %T", st)
	}
}

func mean(ms []int64) float64 {
	var sum int64
	for _, v := range ms {
		sum += v
	}
	return float64(sum) / float64(len(ms))
}

func hasPrefix(groups, prefix []string) bool {
	if len(prefix) > len(groups) {
		return false
	}
	return equal(groups[:len(prefix)], prefix)
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
