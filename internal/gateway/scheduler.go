package gateway

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler fires periodic check sweeps through robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	interval int
	sweep    func()
}

func newScheduler(intervalMinutes int, sweep func()) *Scheduler {
	if intervalMinutes <= 0 {
		intervalMinutes = 60
	}
	return &Scheduler{cron: cron.New(), interval: intervalMinutes, sweep: sweep}
}

// Start registers the sweep and starts the cron runner.
func (s *Scheduler) Start() error {
	expr := fmt.Sprintf("@every %dm", s.interval)
	if _, err := s.cron.AddFunc(expr, s.sweep); err != nil {
		return fmt.Errorf("registering sweep schedule %q: %w", expr, err)
	}
	s.cron.Start()
	slog.Info("scheduler started", "interval_minutes", s.interval)
	return nil
}

// Stop halts the cron runner. Sweeps already running are not interrupted.
func (s *Scheduler) Stop() { s.cron.Stop() }
