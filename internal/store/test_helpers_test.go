package store

import (
	"path/filepath"
	"testing"
	"time"
)

// createTestStore opens a store in a temp dir, closed at test cleanup.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// createTestRun creates a run starting offset after testEpoch and lasting ten seconds.
func createTestRun(id string, offset time.Duration, passed bool) Run {
	start := testEpoch.Add(offset)
	return Run{
		ID:             id,
		Scenario:       "checkout",
		Start:          start,
		End:            start.Add(10 * time.Second),
		Users:          5,
		Requests:       120,
		FailedRequests: 3,
		Passed:         passed,
	}
}

func ptr(f float64) *float64 { return &f }
