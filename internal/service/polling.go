package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/shutter/internal/adapter"
	"github.com/mmcdole/shutter/internal/domain"
	"github.com/mmcdole/shutter/internal/scheduler"
)

// jobScheduler is the part of the scheduler the polling toggle needs (consumer-defined interface)
type jobScheduler interface {
	EnqueueUniquePeriodic(name string, policy scheduler.Policy, work scheduler.PeriodicWork) (bool, error)
	CancelUnique(name string) bool
	IsScheduled(name string) bool
}

// PollingService turns the background poll job on and off and remembers the choice
type PollingService struct {
	prefs  domain.PrefsStore
	sched  jobScheduler
	job    func(ctx context.Context) error
	cfg    adapter.PollingConfig
	logger *slog.Logger
}

// NewPollingService creates a polling toggle that schedules job under cfg.JobName
func NewPollingService(
	prefs domain.PrefsStore,
	sched jobScheduler,
	job func(ctx context.Context) error,
	cfg adapter.PollingConfig,
	logger *slog.Logger,
) *PollingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PollingService{
		prefs:  prefs,
		sched:  sched,
		job:    job,
		cfg:    cfg,
		logger: logger,
	}
}

// Enabled reports the persisted polling preference
func (s *PollingService) Enabled() bool {
	return s.prefs.IsPolling()
}

// Scheduled reports whether the poll job is currently registered with the scheduler
func (s *PollingService) Scheduled() bool {
	return s.sched.IsScheduled(s.cfg.JobName)
}

// SetEnabled schedules or cancels the poll job and persists the preference.
// Enabling twice never creates a second job.
func (s *PollingService) SetEnabled(enabled bool) error {
	if enabled {
		if err := s.schedule(); err != nil {
			return err
		}
	} else {
		s.sched.CancelUnique(s.cfg.JobName)
	}

	if err := s.prefs.SetPolling(enabled); err != nil {
		return fmt.Errorf("failed to save polling preference: %w", err)
	}
	s.logger.Info("polling preference changed", "enabled", enabled)
	return nil
}

// Toggle flips the polling preference and returns the new value
func (s *PollingService) Toggle() (bool, error) {
	enabled := !s.Enabled()
	if err := s.SetEnabled(enabled); err != nil {
		return !enabled, err
	}
	return enabled, nil
}

// Restore schedules the poll job if polling was enabled in a previous session
func (s *PollingService) Restore() error {
	if !s.Enabled() {
		return nil
	}
	return s.schedule()
}

func (s *PollingService) schedule() error {
	started, err := s.sched.EnqueueUniquePeriodic(s.cfg.JobName, scheduler.KeepExisting, scheduler.PeriodicWork{
		Interval:        s.cfg.Interval,
		RequiresNetwork: true,
		Run:             s.job,
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", s.cfg.JobName, err)
	}
	if started {
		s.logger.Debug("poll job scheduled", "job", s.cfg.JobName, "interval", s.cfg.Interval)
	}
	return nil
}
