// Package scheduler runs the watchlist alert job on a fixed interval and the
// market snapshot job on a cron spec, both in exchange time.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"market-bot/internal/models"
	"market-bot/pkg/utils"
)

// Jobs are the units of work the scheduler fires.
type Jobs interface {
	RunAlerts(ctx context.Context) (models.WatchResult, error)
	RunSnapshot(ctx context.Context) (string, error)
}

// Scheduler drives Jobs until its context is cancelled.
type Scheduler struct {
	jobs         Jobs
	interval     time.Duration
	snapshotSpec string
	logger       zerolog.Logger
}

// New creates a scheduler. An empty snapshotSpec disables scheduled
// snapshots.
func New(jobs Jobs, interval time.Duration, snapshotSpec string, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		jobs:         jobs,
		interval:     interval,
		snapshotSpec: snapshotSpec,
		logger:       logger.With().Str("component", "scheduler").Logger(),
	}
}

// Run checks the watchlist once immediately, then on every interval, and
// blocks until ctx is done. A job still running when its next tick arrives
// causes that tick to be skipped.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval < time.Second {
		return fmt.Errorf("alert interval %s is below one second", s.interval)
	}

	logger := cronLogger{s.logger}
	c := cron.New(
		cron.WithLocation(utils.IndiaLocation),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	c.Schedule(cron.Every(s.interval), cron.FuncJob(func() { s.runAlerts(ctx) }))

	if s.snapshotSpec != "" {
		if _, err := c.AddFunc(s.snapshotSpec, func() { s.runSnapshot(ctx) }); err != nil {
			return fmt.Errorf("scheduling snapshot %q: %w", s.snapshotSpec, err)
		}
	}

	s.logger.Info().
		Dur("interval", s.interval).
		Str("snapshot_schedule", s.snapshotSpec).
		Msg("Scheduler starting")

	s.runAlerts(ctx)

	c.Start()
	<-ctx.Done()

	s.logger.Info().Msg("Scheduler stopping")
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) runAlerts(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	res, err := s.jobs.RunAlerts(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Alert cycle failed")
		return
	}
	s.logger.Debug().
		Int("rows", len(res.Rows)).
		Bool("triggered", res.AnyTriggered).
		Bool("sent", res.ShouldSend).
		Msg("Alert cycle done")
}

func (s *Scheduler) runSnapshot(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.jobs.RunSnapshot(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled snapshot failed")
		return
	}
	s.logger.Info().Msg("Scheduled snapshot sent")
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
