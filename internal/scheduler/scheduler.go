package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Default settings for the idle session sweep
const (
	DefaultSweepInterval = 10 * time.Minute
	DefaultSessionTTL    = 24 * time.Hour
)

// Sweeper drops sessions that have been idle longer than ttl
type Sweeper interface {
	EvictIdle(ttl time.Duration) int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	interval  time.Duration
	ttl       time.Duration
	logger    *slog.Logger
}

// New creates a new scheduler instance. Non-positive durations fall back to the defaults.
func New(sweeper Sweeper, interval, ttl time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweeper:   sweeper,
		interval:  interval,
		ttl:       ttl,
		logger:    logger,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() { s.sweep() })
	if err != nil {
		return fmt.Errorf("failed to schedule session sweep: %v", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	s.logger.Info("Session sweeper started",
		slog.Duration("interval", s.interval),
		slog.Duration("ttl", s.ttl),
	)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// SweepNow runs one sweep immediately and returns the number of evicted sessions
func (s *Scheduler) SweepNow() int {
	return s.sweep()
}

func (s *Scheduler) sweep() int {
	evicted := s.sweeper.EvictIdle(s.ttl)
	if evicted > 0 {
		s.logger.Info("Evicted idle sessions", slog.Int("count", evicted))
	}
	return evicted
}
