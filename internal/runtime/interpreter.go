// Package runtime executes action chains for virtual users.
//
// An Interpreter runs one chain for one user against that user's Session.
// A Runner starts many users concurrently, each with its own Session and
// Interpreter state, and records every request in a shared stats.Recorder.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/roach88/surge/internal/chain"
	"github.com/roach88/surge/internal/session"
	"github.com/roach88/surge/internal/stats"
)

// StepError aborts one virtual user's run.
type StepError struct {
	UserID string
	Step   string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("user %s: %s: %v", e.UserID, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Interpreter executes chain steps for a single virtual user.
// It is stateless between calls; all user state lives in the Session.
type Interpreter struct {
	client   *http.Client
	recorder *stats.Recorder
	clock    stats.Clock
}

// NewInterpreter creates an interpreter that records requests in recorder.
func NewInterpreter(client *http.Client, recorder *stats.Recorder) *Interpreter {
	return &Interpreter{client: client, recorder: recorder, clock: recorder.Clock()}
}

// Exec runs every step of c in order.
func (in *Interpreter) Exec(ctx context.Context, s *session.Session, c chain.Chain) error {
	return in.run(ctx, s, c, nil)
}

func (in *Interpreter) run(ctx context.Context, s *session.Session, c chain.Chain, groups []string) error {
	for _, st := range c.Steps() {
		if err := in.step(ctx, s, st, groups); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) step(ctx context.Context, s *session.Session, st chain.Step, groups []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch st := st.(type) {
	case chain.Action:
		if st.Fn == nil {
			return nil
		}
		if err := st.Fn(ctx, s); err != nil {
			return in.fail(s, st, err)
		}
	case chain.Pause:
		return pause(ctx, st.Duration)
	case chain.Set:
		v, err := st.Value.Resolve(s)
		if err != nil {
			return in.fail(s, st, err)
		}
		s.Set(st.Key, v)
	case chain.Group:
		nested := make([]string, len(groups), len(groups)+1)
		copy(nested, groups)
		return in.run(ctx, s, st.Body, append(nested, st.Name))
	case chain.Request:
		return in.request(ctx, s, st, groups)
	case chain.Loop:
		return in.loop(ctx, s, st, groups)
	default:
		return in.fail(s, st, fmt.Errorf("unsupported step %T", st))
	}
	return nil
}

// loop enacts the loop state machine. The counter is reset to 0 on entry,
// incremented on every move into the body, and keeps its value after exit.
func (in *Interpreter) loop(ctx context.Context, s *session.Session, l chain.Loop, groups []string) error {
	name := l.CounterName()
	s.SetCounter(name, 0)

	m := l.Machine()
	body := l.Body().Steps()
	for {
		holds, err := in.holds(s, l)
		if err != nil {
			return err
		}
		state, entered := m.Check(holds)
		if state == chain.Exited {
			break
		}
		if entered {
			s.Increment(name)
		}

		exited := false
		for i, st := range body {
			if err := in.step(ctx, s, st, groups); err != nil {
				return err
			}
			if !m.CheckAfterStep(i == len(body)-1) {
				continue
			}
			holds, err := in.holds(s, l)
			if err != nil {
				return err
			}
			if state, _ := m.Check(holds); state == chain.Exited {
				exited = true
				break
			}
		}
		if exited {
			break
		}
		m.EndIteration()
	}

	n, _ := s.Counter(name)
	slog.Debug("loop exited", "user", s.UserID(), "counter", name, "iterations", n)
	return nil
}

func (in *Interpreter) holds(s *session.Session, l chain.Loop) (bool, error) {
	v, err := l.Condition().Resolve(s)
	if err != nil {
		return false, in.fail(s, l, fmt.Errorf("resolve loop condition: %w", err))
	}
	return v, nil
}

func (in *Interpreter) request(ctx context.Context, s *session.Session, r chain.Request, groups []string) error {
	url, err := r.URL.Resolve(s)
	if err != nil {
		return in.fail(s, r, fmt.Errorf("resolve url: %w", err))
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return in.fail(s, r, err)
	}

	start := in.clock.Now()
	resp, err := in.client.Do(req)
	elapsed := in.clock.Now().Sub(start)

	if err != nil && ctx.Err() != nil {
		// cut off by the end of the run, not a failure of the target
		return ctx.Err()
	}

	rec := stats.Record{Groups: groups, Name: r.Name, Start: start, Duration: elapsed}
	if err != nil {
		slog.Debug("request failed", "user", s.UserID(), "request", r.Name, "error", err)
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		rec.Status = resp.StatusCode
		rec.OK = resp.StatusCode >= 200 && resp.StatusCode < 300
	}
	in.recorder.Add(rec)
	return nil
}

func (in *Interpreter) fail(s *session.Session, st chain.Step, err error) error {
	var se *StepError
	if errors.As(err, &se) {
		return err
	}
	return &StepError{UserID: s.UserID(), Step: st.String(), Err: err}
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
