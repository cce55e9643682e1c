package application

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Schedule runs a group of triggers every Interval.
type Schedule struct {
	Interval time.Duration
	Triggers []string
}

// Scheduler drives a Runner from tickers. Each schedule has its own
// goroutine so a slow daily pass does not delay the minute checks.
type Scheduler struct {
	runner    *Runner
	schedules []Schedule
	logger    *slog.Logger
	wg        sync.WaitGroup
}

func NewScheduler(runner *Runner, logger *slog.Logger, schedules ...Schedule) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{runner: runner, schedules: schedules, logger: logger}
}

// Start launches the schedules. Each group runs once immediately and then on
// every tick until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	for _, sched := range s.schedules {
		if sched.Interval <= 0 || len(sched.Triggers) == 0 {
			continue
		}
		s.wg.Add(1)
		go s.loop(ctx, sched)
	}
}

// Wait blocks until every schedule loop has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, sched Schedule) {
	defer s.wg.Done()
	s.logger.Info("trigger schedule started", "interval", sched.Interval, "triggers", sched.Triggers)

	ticker := time.NewTicker(sched.Interval)
	defer ticker.Stop()

	s.runner.RunNames(ctx, sched.Triggers...)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("trigger schedule stopped", "triggers", sched.Triggers)
			return
		case <-ticker.C:
			s.runner.RunNames(ctx, sched.Triggers...)
		}
	}
}
