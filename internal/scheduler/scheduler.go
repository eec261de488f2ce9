// Package scheduler runs uniquely named periodic jobs in process on top of gocron.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// stopTimeout bounds how long Stop waits for a run in progress
const stopTimeout = 10 * time.Second

var (
	ErrStopped         = errors.New("scheduler stopped")
	ErrInvalidInterval = errors.New("periodic interval must be positive")
)

// Policy decides what happens when a job with the same name already exists.
type Policy int

const (
	// KeepExisting leaves a scheduled job untouched.
	KeepExisting Policy = iota
	// ReplaceExisting cancels the scheduled job and starts the new one.
	ReplaceExisting
)

func (p Policy) String() string {
	if p == ReplaceExisting {
		return "replace"
	}
	return "keep"
}

// PeriodicWork describes a job run every Interval. The first run happens
// immediately. Errors returned by Run are logged and never retried.
type PeriodicWork struct {
	Interval        time.Duration
	RequiresNetwork bool
	Run             func(ctx context.Context) error
}

// NetworkProbe reports whether the network is reachable.
type NetworkProbe interface {
	Available(ctx context.Context) bool
}

// ProbeFunc adapts a function to NetworkProbe.
type ProbeFunc func(ctx context.Context) bool

func (f ProbeFunc) Available(ctx context.Context) bool { return f(ctx) }

// DialProbe considers the network available when a TCP connection to
// Address can be opened.
type DialProbe struct {
	Address string
	Timeout time.Duration
}

func (p DialProbe) Available(ctx context.Context) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

type job struct {
	name   string
	id     uuid.UUID
	work   PeriodicWork
	ctx    context.Context
	cancel context.CancelFunc
}

// Scheduler runs uniquely named periodic jobs on a gocron scheduler. It adds
// the unique-name policies, the network constraint and per-run logging.
type Scheduler struct {
	cron   gocron.Scheduler
	probe  NetworkProbe
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	jobs     map[string]*job
	stopped  bool
	stopOnce sync.Once
}

// New creates and starts a scheduler. A nil probe treats the network as
// always available.
func New(probe NetworkProbe, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if probe == nil {
		probe = ProbeFunc(func(context.Context) bool { return true })
	}

	cron, err := gocron.NewScheduler(
		gocron.WithLogger(logger),
		gocron.WithStopTimeout(stopTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	cron.Start()

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron,
		probe:  probe,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]*job),
	}, nil
}

// EnqueueUniquePeriodic schedules work under name. It reports whether a new
// job was started; with KeepExisting an existing job is never duplicated.
func (s *Scheduler) EnqueueUniquePeriodic(name string, policy Policy, work PeriodicWork) (bool, error) {
	if work.Interval <= 0 {
		return false, ErrInvalidInterval
	}
	if work.Run == nil {
		return false, fmt.Errorf("job %q has no run function", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false, ErrStopped
	}
	if existing, ok := s.jobs[name]; ok {
		if policy == KeepExisting {
			s.logger.Debug("job already scheduled", "job", name, "policy", policy.String())
			return false, nil
		}
		s.remove(existing)
	}

	ctx, cancel := context.WithCancel(s.ctx)
	j := &job{name: name, work: work, ctx: ctx, cancel: cancel}

	cj, err := s.cron.NewJob(
		gocron.DurationJob(work.Interval),
		gocron.NewTask(func() { s.runOnce(j) }),
		gocron.WithName(name),
		gocron.WithTags(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		cancel()
		return false, fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	j.id = cj.ID()
	s.jobs[name] = j

	s.logger.Info("job scheduled", "job", name, "interval", work.Interval, "requiresNetwork", work.RequiresNetwork)
	return true, nil
}

// remove cancels j and drops it from gocron. Caller holds s.mu.
func (s *Scheduler) remove(j *job) {
	j.cancel()
	delete(s.jobs, j.name)
	if err := s.cron.RemoveJob(j.id); err != nil {
		s.logger.Debug("job already removed", "job", j.name, "error", err)
	}
}

// CancelUnique cancels the job registered under name. Runs due after it
// returns never start. A run already in progress, or one racing past its
// start checks, is not interrupted but sees its context canceled.
func (s *Scheduler) CancelUnique(name string) bool {
	s.mu.Lock()
	j, ok := s.jobs[name]
	if ok {
		s.remove(j)
	}
	s.mu.Unlock()

	if ok {
		s.logger.Info("job canceled", "job", name)
	}
	return ok
}

// IsScheduled reports whether a job is registered under name.
func (s *Scheduler) IsScheduled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[name]
	return ok
}

// Stop cancels every job and shuts the scheduler down, waiting up to
// stopTimeout for runs in progress. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.jobs = make(map[string]*job)
		s.mu.Unlock()

		s.cancel()
		if err := s.cron.Shutdown(); err != nil {
			s.logger.Warn("scheduler shutdown", "error", err)
		}
	})
}

func (s *Scheduler) runOnce(j *job) {
	ctx := j.ctx
	if ctx.Err() != nil {
		return
	}
	if j.work.RequiresNetwork && !s.probe.Available(ctx) {
		s.logger.Info("skipping job run, network unavailable", "job", j.name)
		return
	}
	// Canceled while probing
	if ctx.Err() != nil {
		return
	}

	runID := uuid.NewString()
	logger := s.logger.With("job", j.name, "run", runID)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panicked", "panic", r)
		}
	}()

	if err := j.work.Run(ctx); err != nil {
		logger.Warn("job run failed", "error", err, "duration", time.Since(start))
		return
	}
	logger.Debug("job run finished", "duration", time.Since(start))
}
