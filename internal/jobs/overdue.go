// Package jobs holds scheduled background work.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"fuel-backend/internal/services"
	"fuel-backend/internal/timeutil"
)

// Sweeper is the client operation the overdue job runs.
type Sweeper interface {
	SweepOverdue(ctx context.Context) (*services.SweepResult, error)
}

// RunOverdueSweep runs one sweep with a timeout and logs the outcome.
func RunOverdueSweep(ctx context.Context, s Sweeper) (*services.SweepResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	res, err := s.SweepOverdue(ctx)
	if err != nil {
		log.Error().Err(err).Str("component", "jobs").Msg("overdue sweep failed")
		return nil, err
	}
	log.Info().Str("component", "jobs").
		Int("checked", res.Checked).
		Int("overdue", len(res.Overdue)).
		Int("restored", len(res.Restored)).
		Msg("overdue sweep finished")
	return res, nil
}

// StartOverdueSweep schedules the sweep on a standard five-field cron
// expression in the business timezone. The caller stops the returned scheduler.
func StartOverdueSweep(ctx context.Context, schedule string, s Sweeper) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(timeutil.Location))
	_, err := c.AddFunc(schedule, func() {
		_, _ = RunOverdueSweep(ctx, s)
	})
	if err != nil {
		return nil, fmt.Errorf("unable to schedule overdue sweep %q: %w", schedule, err)
	}
	c.Start()
	log.Info().Str("component", "jobs").Str("schedule", schedule).Msg("overdue sweep scheduled")
	return c, nil
}
