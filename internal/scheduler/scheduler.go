// Package scheduler runs deferred and periodic background work.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/muratoffalex/manobot/internal/logger"
)

type Scheduler struct {
	s      gocron.Scheduler
	logger logger.Logger
}

func New(log logger.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(logger.SchedulerAdapter{Logger: log.WithField("component", "scheduler")}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{s: s, logger: log}, nil
}

func (s *Scheduler) Start() {
	s.s.Start()
}

// Every runs job on a fixed interval. Runs never overlap.
func (s *Scheduler) Every(name string, interval time.Duration, job func()) error {
	_, err := s.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(job),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", name, err)
	}

	s.logger.WithFields(logger.Fields{
		"name":     name,
		"interval": interval.String(),
	}).Debug("Job scheduled")
	return nil
}

// After runs job once, delay from now.
func (s *Scheduler) After(name string, delay time.Duration, job func()) error {
	_, err := s.s.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(delay))),
		gocron.NewTask(job),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", name, err)
	}
	return nil
}

func (s *Scheduler) Stop() error {
	if err := s.s.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	return nil
}
