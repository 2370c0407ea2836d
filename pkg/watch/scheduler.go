package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers periodic re-validation on a cron schedule, independent
// of file events. It covers inputs a file watcher cannot see, such as a
// policy file on a mount whose change events are unreliable.
type Scheduler struct {
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a scheduler for the given cron expression.
//
// Common expressions:
//   - "*/5 * * * *" - every 5 minutes
//   - "0 * * * *"   - hourly
//   - "0 3 * * *"   - daily at 3 AM
func NewScheduler(schedule string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "watch.scheduler"),
	}
}

// Start begins scheduled runs of onTick. An empty schedule is a no-op. The
// scheduler stops itself when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context, onTick func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Debug("no schedule configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("watch: invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.logger.Info("scheduled re-validation triggered", "schedule", s.schedule)
		onTick()
	}); err != nil {
		return fmt.Errorf("watch: failed to schedule runs: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info("scheduler stopped")
}
