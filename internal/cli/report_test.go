package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/surge/internal/assertion"
	"github.com/roach88/surge/internal/config"
	"github.com/roach88/surge/internal/runtime"
	"github.com/roach88/surge/internal/stats"
	"github.com/roach88/surge/internal/testutil"
)

func sampleRun(t *testing.T) (*runtime.Result, []assertion.Verdict) {
	t.Helper()

	start := testutil.Epoch
	rec := func(groups []string, name string, ms int, ok bool) stats.Record {
		status := 200
		if !ok {
			status = 500
		}
		return stats.Record{Groups: groups, Name: name, Start: start, Duration: time.Duration(ms) * time.Millisecond, OK: ok, Status: status}
	}
	snap := stats.NewSnapshot(start, start.Add(10*time.Second), []stats.Record{
		rec(nil, "Login", 100, true),
		rec(nil, "Login", 200, true),
		rec(nil, "Login", 400, true),
		rec([]string{"Checkout"}, "Pay", 50, false),
	})

	dsl := assertion.New(config.DefaultPercentiles())
	assertions := []assertion.Assertion{
		dsl.Request("Login").ResponseTime().Max().Lt(500),
		dsl.Global().FailedRequests().Percent().Lte(10),
		dsl.Group("Admin").AllRequests().Count().Gt(0),
		dsl.Global().RequestsPerSec().Is(0.4),
	}

	res := &runtime.Result{
		RunID:    "run-1",
		Snapshot: snap,
		Errors:   []error{errors.New("user-2: action failed")},
	}
	return res, assertion.Evaluate(assertions, snap)
}

func TestNewReport(t *testing.T) {
	res, verdicts := sampleRun(t)
	r := NewReport("checkout", 5, res, verdicts)

	assert.Equal(t, "run-1", r.Run.ID)
	assert.Equal(t, "checkout", r.Run.Scenario)
	assert.Equal(t, 4, r.Run.Requests)
	assert.Equal(t, 1, r.Run.FailedRequests)
	assert.Equal(t, 1, r.Run.AbortedUsers)
	assert.Equal(t, 10*time.Second, r.Run.End.Sub(r.Run.Start))
	assert.False(t, r.Run.Passed)
	assert.Equal(t, 2, r.Failures())
	assert.Equal(t, []string{"user-2: action failed"}, r.Errors)

	require.Len(t, r.Assertions, 4)
	assert.Nil(t, r.Assertions[2].Actual)
	assert.Equal(t, "path not found: Admin", r.Assertions[2].Error)
}

func TestReport_RenderText(t *testing.T) {
	res, verdicts := sampleRun(t)
	r := NewReport("checkout", 5, res, verdicts)

	var buf bytes.Buffer
	require.NoError(t, r.RenderText(&buf))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "report", buf.Bytes())
}

func TestReport_RenderTextSummaryLine(t *testing.T) {
	res, _ := sampleRun(t)

	var buf bytes.Buffer
	require.NoError(t, NewReport("checkout", 5, res, nil).RenderText(&buf))
	assert.Contains(t, buf.String(), "No assertions\n")

	dsl := assertion.New(config.DefaultPercentiles())
	verdicts := assertion.Evaluate([]assertion.Assertion{dsl.Global().AllRequests().Count().Is(4)}, res.Snapshot)

	buf.Reset()
	require.NoError(t, NewReport("checkout", 5, res, verdicts).RenderText(&buf))
	assert.Contains(t, buf.String(), "PASSED: all 1 assertions passed\n")
}

func TestReport_JSON(t *testing.T) {
	res, verdicts := sampleRun(t)
	r := NewReport("checkout", 5, res, verdicts)

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	run := decoded["run"].(map[string]any)
	assert.Equal(t, "run-1", run["id"])
	assert.Equal(t, false, run["passed"])

	list := decoded["assertions"].([]any)
	require.Len(t, list, 4)
	missing := list[2].(map[string]any)
	assert.NotContains(t, missing, "actual")
	assert.Equal(t, "path not found: Admin", missing["error"])
}
