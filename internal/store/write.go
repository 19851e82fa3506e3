package store

import (
	"context"
	"fmt"
)

// SaveRun inserts run and its verdicts in one transaction.
// Uses ON CONFLICT DO NOTHING for idempotency: saving a run ID again keeps
// the first copy.
func (s *Store) SaveRun(ctx context.Context, run Run, verdicts []Verdict) error {
	if run.ID == "" {
		return fmt.Errorf("save run: empty run ID")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, scenario, started_at, ended_at, users, requests, failed_requests, aborted_users, passed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Scenario,
		formatTime(run.Start),
		formatTime(run.End),
		run.Users,
		run.Requests,
		run.FailedRequests,
		run.AbortedUsers,
		boolInt(run.Passed),
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Already stored.
		return tx.Commit()
	}

	for _, v := range verdicts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO verdicts
			(run_id, seq, assertion_id, description, path, actual, passed, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`,
			run.ID,
			v.Seq,
			v.AssertionID,
			v.Description,
			v.Path,
			nullFloat(v.Actual),
			boolInt(v.Passed),
			v.Error,
		)
		if err != nil {
			return fmt.Errorf("save verdict %d: %w", v.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save run: commit: %w", err)
	}
	return nil
}

// DeleteRun removes a run and its verdicts. Deleting an unknown ID is a no-op.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}
