package daemon

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps gocron for the periodic full-run backstop.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler schedules task every interval.
func NewScheduler(interval time.Duration, task func()) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName("periodic-verification"),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule periodic run: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins the schedule.
func (s *Scheduler) Start() { s.scheduler.Start() }

// Stop shuts the scheduler down, waiting for a running task callback.
func (s *Scheduler) Stop() error { return s.scheduler.Shutdown() }
