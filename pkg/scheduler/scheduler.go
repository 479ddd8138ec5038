// Package scheduler runs delayed, fire-and-forget side effects on an
// injectable clock, retrying failed effects a bounded number of times.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/clock"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 2 * time.Second
)

// ErrStopped is passed to Task.Done when the scheduler stopped before the task ran.
var ErrStopped = errors.New("scheduler stopped")

// Task is a side effect to run once after a delay.
type Task struct {
	// Name identifies the kind of task in logs and metrics.
	Name string

	// Key identifies the resource the task acts on, for logs.
	Key string

	// Delay is the minimum time before the first attempt.
	Delay time.Duration

	// Run performs the effect. Errors are retried unless wrapped with Permanent.
	Run func(ctx context.Context) error

	// Done, if set, is called exactly once with the result of the last attempt.
	Done func(err error)
}

// Option configures a Scheduler.
type Option func(s *Scheduler)

// WithRetries sets how many times a task is attempted in total and how long
// to wait between attempts.
func WithRetries(maxAttempts int, delay time.Duration) Option {
	return func(s *Scheduler) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		if delay > 0 {
			s.retryDelay = delay
		}
	}
}

// Scheduler runs tasks after their delay on the given clock.
type Scheduler struct {
	l   *slog.Logger
	clk clock.Clock

	maxAttempts int
	retryDelay  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]*scheduled
	stopped bool
	wg      sync.WaitGroup
}

type scheduled struct {
	task  Task
	timer *clock.Timer
}

// New creates a scheduler that runs on the given clock.
func New(l *slog.Logger, clk clock.Clock, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		l:           l,
		clk:         clk,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
		ctx:         ctx,
		cancel:      cancel,
		pending:     make(map[uint64]*scheduled),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule registers the task. It never blocks on the task itself.
func (s *Scheduler) Schedule(t Task) {
	s.schedule(t, t.Delay, 1)
}

func (s *Scheduler) schedule(t Task, delay time.Duration, attempt int) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		s.finish(t, ErrStopped)
		return
	}
	id := s.nextID
	s.nextID++
	entry := &scheduled{task: t}
	s.pending[id] = entry
	s.wg.Add(1)
	PendingTasks.Inc()
	s.mu.Unlock()

	timer := s.clk.AfterFunc(delay, func() {
		s.fire(id, t, attempt)
	})

	s.mu.Lock()
	entry.timer = timer
	s.mu.Unlock()
}

func (s *Scheduler) fire(id uint64, t Task, attempt int) {
	s.mu.Lock()
	_, ok := s.pending[id]
	delete(s.pending, id)
	stopped := s.stopped
	s.mu.Unlock()

	if !ok {
		// Stop already accounted for this task.
		return
	}
	defer s.wg.Done()
	PendingTasks.Dec()

	if stopped {
		s.finish(t, ErrStopped)
		return
	}

	err := s.run(t)
	switch {
	case err == nil:
		TaskResults.WithLabelValues(t.Name, "success").Inc()
		s.finish(t, nil)
	case IsPermanent(err):
		TaskResults.WithLabelValues(t.Name, "skipped").Inc()
		s.l.Debug("Delayed task finished without effect",
			slog.String("task", t.Name),
			slog.String("key", t.Key),
			slog.String(logging.KeyError, err.Error()),
		)
		s.finish(t, err)
	case attempt < s.maxAttempts:
		TaskResults.WithLabelValues(t.Name, "retry").Inc()
		s.l.Warn("Delayed task failed, retrying",
			slog.String("task", t.Name),
			slog.String("key", t.Key),
			slog.Int("attempt", attempt),
			slog.String(logging.KeyError, err.Error()),
		)
		s.schedule(t, s.retryDelay, attempt+1)
	default:
		TaskResults.WithLabelValues(t.Name, "failed").Inc()
		s.l.Error("Delayed task failed",
			slog.String("task", t.Name),
			slog.String("key", t.Key),
			slog.Int("attempts", attempt),
			slog.String(logging.KeyError, err.Error()),
		)
		s.finish(t, err)
	}
}

func (s *Scheduler) run(t Task) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.l.Error("Panic in delayed task",
				slog.String("task", t.Name),
				slog.String("key", t.Key),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("panic in task %s: %v", t.Name, rec)
		}
	}()
	return t.Run(s.ctx)
}

func (s *Scheduler) finish(t Task, err error) {
	if t.Done == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			s.l.Error("Panic in delayed task callback",
				slog.String("task", t.Name),
				slog.String("key", t.Key),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	t.Done(err)
}

// Pending returns the number of tasks waiting for their timer.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop drops every task that has not started, then waits for running tasks
// to finish. Dropped tasks are completed with ErrStopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	var dropped []Task
	for id, entry := range s.pending {
		if entry.timer != nil && entry.timer.Stop() {
			delete(s.pending, id)
			dropped = append(dropped, entry.task)
		}
	}
	s.mu.Unlock()

	for _, t := range dropped {
		PendingTasks.Dec()
		TaskResults.WithLabelValues(t.Name, "dropped").Inc()
		s.finish(t, ErrStopped)
		s.wg.Done()
	}

	s.wg.Wait()
	s.cancel()
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent marks an error as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether the error was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
