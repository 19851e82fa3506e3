package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = `r.id, r.scenario, r.started_at, r.ended_at, r.users, r.requests, r.failed_requests, r.aborted_users, r.passed`

// ListRuns returns up to limit runs, newest first, with verdict counts.
// A limit of zero or less returns every run. Returns an empty slice (not nil)
// when nothing is stored.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`,
			COUNT(v.seq),
			COALESCE(SUM(CASE WHEN v.passed = 0 THEN 1 ELSE 0 END), 0)
		FROM runs r
		LEFT JOIN verdicts v ON v.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC, r.id COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var sum RunSummary
		run, err := scanRun(rows, &sum.Assertions, &sum.Failures)
		if err != nil {
			return nil, err
		}
		sum.Run = run
		runs = append(runs, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, id)
	return scanRun(row)
}

// Verdicts returns the verdicts of a run in evaluation order.
func (s *Store) Verdicts(ctx context.Context, runID string) ([]Verdict, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, assertion_id, description, path, actual, passed, error
		FROM verdicts
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query verdicts: %w", err)
	}
	defer rows.Close()

	verdicts := []Verdict{}
	for rows.Next() {
		var (
			v      Verdict
			actual sql.NullFloat64
			passed int
		)
		if err := rows.Scan(&v.Seq, &v.AssertionID, &v.Description, &v.Path, &actual, &passed, &v.Error); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		v.Actual = floatPtr(actual)
		v.Passed = passed != 0
		verdicts = append(verdicts, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verdicts: %w", err)
	}
	return verdicts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner, extra ...any) (Run, error) {
	var (
		run        Run
		start, end string
		passed     int
	)
	dest := append([]any{
		&run.ID, &run.Scenario, &start, &end, &run.Users,
		&run.Requests, &run.FailedRequests, &run.AbortedUsers, &passed,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	var err error
	if run.Start, err = parseTime(start); err != nil {
		return Run{}, err
	}
	if run.End, err = parseTime(end); err != nil {
		return Run{}, err
	}
	run.Passed = passed != 0
	return run, nil
}
