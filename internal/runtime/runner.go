package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/surge/internal/chain"
	"github.com/roach88/surge/internal/session"
	"github.com/roach88/surge/internal/stats"
)

// Config controls a run.
type Config struct {
	// Users is the number of concurrent virtual users.
	Users int
	// Iterations is how many times each user runs the chain. Zero means
	// repeat until Duration elapses, or once when Duration is also zero.
	Iterations int
	// Duration bounds the whole run. Zero means unbounded.
	Duration time.Duration
	// Timeout bounds each request.
	Timeout time.Duration
}

// Result is the outcome of a run.
type Result struct {
	RunID    string
	Snapshot *stats.Snapshot
	// Sessions holds each user's final session, indexed by user.
	Sessions []*session.Session
	// Errors holds the error that stopped each aborted user.
	Errors []error
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable run IDs.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Runner runs a chain with many concurrent users (closed loop: each user
// starts its next iteration as soon as the previous one ends).
type Runner struct {
	cfg    Config
	client *http.Client
	clock  stats.Clock
	ids    IDGenerator
}

// Option configures a Runner.
type Option func(*Runner)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) Option {
	return func(r *Runner) { r.client = c }
}

// WithClock replaces the clock used for timing and run bounds.
func WithClock(c stats.Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithIDGenerator replaces the run ID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Runner) { r.ids = g }
}

// NewRunner creates a runner.
func NewRunner(cfg Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, clock: stats.SystemClock, ids: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = newClient(cfg.Users, cfg.Timeout)
	}
	return r
}

func newClient(users int, timeout time.Duration) *http.Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	conns := max(users, 1) * 2
	t.MaxIdleConns = conns
	t.MaxConnsPerHost = conns
	t.MaxIdleConnsPerHost = conns
	return &http.Client{Timeout: timeout, Transport: t}
}

// Run executes c for every user and returns the settled result. User
// failures do not fail the run; they are reported in Result.Errors.
func (r *Runner) Run(ctx context.Context, c chain.Chain) (*Result, error) {
	if r.cfg.Users < 1 {
		return nil, fmt.Errorf("users must be at least 1, got %d", r.cfg.Users)
	}
	if c.Len() == 0 {
		return nil, errors.New("scenario has no steps")
	}

	if r.cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Duration)
		defer cancel()
	}

	runID := r.ids.Generate()
	recorder := stats.NewRecorder(r.clock)
	interp := NewInterpreter(r.client, recorder)

	slog.Info("run started", "run", runID, "users", r.cfg.Users, "iterations", r.cfg.Iterations, "duration", r.cfg.Duration)

	res := &Result{RunID: runID, Sessions: make([]*session.Session, r.cfg.Users)}
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Users; i++ {
		s := session.New(fmt.Sprintf("user-%d", i+1))
		s.Set("userId", i+1)
		res.Sessions[i] = s

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.user(ctx, interp, s, c); err != nil {
				slog.Warn("user aborted", "run", runID, "user", s.UserID(), "error", err)
				mu.Lock()
				res.Errors = append(res.Errors, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	recorder.Finish()
	res.Snapshot = recorder.Snapshot()
	slog.Info("run finished", "run", runID, "requests", res.Snapshot.Len(), "aborted_users", len(res.Errors))
	return res, nil
}

func (r *Runner) user(ctx context.Context, interp *Interpreter, s *session.Session, c chain.Chain) error {
	for n := 0; ; n++ {
		if r.cfg.Iterations > 0 && n >= r.cfg.Iterations {
			return nil
		}
		if r.cfg.Iterations == 0 && r.cfg.Duration == 0 && n == 1 {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		if err := interp.Exec(ctx, s, c); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		}
	}
}
