package sitemap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps gocron scheduler for periodic sitemap regeneration.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start(_ context.Context) {
	slog.Info("Starting sitemap scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler, waiting for a running generation.
func (s *Scheduler) Stop(_ context.Context) error {
	slog.Info("Stopping sitemap scheduler")
	return s.scheduler.Shutdown()
}

// SchedulePeriodic runs g every interval, starting immediately. Overlapping
// runs are skipped rather than queued. Returns the job ID for later management.
func (s *Scheduler) SchedulePeriodic(ctx context.Context, interval time.Duration, g *Generator) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("sitemap interval must be positive, got %s", interval)
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(g.Run, ctx),
		gocron.WithName("sitemap-generate"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create periodic sitemap job: %w", err)
	}
	return job.ID().String(), nil
}
