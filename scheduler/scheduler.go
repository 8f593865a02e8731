// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jmoiron/sqlx"
)

// SweepInterval is how often stale attempts are removed
const SweepInterval = 15 * time.Minute

// Scheduler runs background maintenance jobs
type Scheduler struct {
	scheduler *gocron.Scheduler
	db        *sqlx.DB
	ttl       time.Duration
}

// New creates a scheduler that drops open attempts older than ttl
func New(db *sqlx.DB, ttl time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		db:        db,
		ttl:       ttl,
	}
}

// Start registers the jobs and runs them in the background
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(SweepInterval).Do(s.sweepJob); err != nil {
		return fmt.Errorf("failed to schedule attempt sweep: %w", err)
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled jobs
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) sweepJob() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.Sweep(ctx, time.Now())
	if err != nil {
		slog.Error("attempt sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("swept stale attempts", "count", n)
	}
}

// Sweep deletes incomplete attempts started more than ttl before now and
// returns how many were removed. A non-positive ttl disables sweeping.
func (s *Scheduler) Sweep(ctx context.Context, now time.Time) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	cutoff := now.Add(-s.ttl).UTC()
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM quiz_attempts WHERE completed_at IS NULL AND started_at < ?
	`), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale attempts: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted attempts: %w", err)
	}
	return n, nil
}
