// Package stats records request outcomes during a run and resolves assertion
// targets against the settled result.
//
// A Recorder is shared by all virtual users and is safe for concurrent use.
// Snapshot freezes it into an immutable Snapshot, which implements
// assertion.StatsProvider.
package stats

import (
	"sync"
	"time"

	"github.com/roach88/surge/internal/assertion"
)

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the real clock.
var SystemClock Clock = systemClock{}

// Record is the outcome of one request.
type Record struct {
	// Groups is the group path the request ran in, outermost first.
	Groups []string
	// Name is the request name.
	Name     string
	Start    time.Time
	Duration time.Duration
	OK       bool
	// Status is the HTTP status, 0 when no response arrived.
	Status int
}

// Recorder collects records from concurrent virtual users.
type Recorder struct {
	clock Clock

	mu      sync.Mutex
	start   time.Time
	end     time.Time
	records []Record
}

// NewRecorder creates a recorder. The run starts now.
func NewRecorder(clock Clock) *Recorder {
	if clock == nil {
		clock = SystemClock
	}
	return &Recorder{clock: clock, start: clock.Now()}
}

// Clock returns the recorder's clock.
func (r *Recorder) Clock() Clock {
	return r.clock
}

// Add stores a record. Group and request names are normalised to NFC.
func (r *Recorder) Add(rec Record) {
	rec = normalizeRecord(rec)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// Len returns the number of records so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Finish marks the end of the run. Later calls keep the first end time.
func (r *Recorder) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.end.IsZero() {
		r.end = r.clock.Now()
	}
}

// Snapshot returns an immutable view of everything recorded so far.
// If Finish was not called the snapshot ends now.
func (r *Recorder) Snapshot() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	end := r.end
	if end.IsZero() {
		end = r.clock.Now()
	}
	records := make([]Record, len(r.records))
	copy(records, r.records)
	return &Snapshot{start: r.start, end: end, records: records}
}

func normalizeRecord(rec Record) Record {
	groups := make([]string, len(rec.Groups))
	for i, g := range rec.Groups {
		groups[i] = assertion.Normalize(g)
	}
	rec.Groups = groups
	rec.Name = assertion.Normalize(rec.Name)
	return rec
}
