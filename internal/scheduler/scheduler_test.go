package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-bot/internal/models"
)

type countingJobs struct {
	alerts    atomic.Int32
	snapshots atomic.Int32
	err       error
}

func (j *countingJobs) RunAlerts(context.Context) (models.WatchResult, error) {
	j.alerts.Add(1)
	return models.WatchResult{}, j.err
}

func (j *countingJobs) RunSnapshot(context.Context) (string, error) {
	j.snapshots.Add(1)
	return "", j.err
}

func TestRunChecksImmediatelyAndStopsOnCancel(t *testing.T) {
	jobs := &countingJobs{err: errors.New("delivery failed")}
	s := New(jobs, time.Second, "", zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}

	// One immediate run plus at least one tick; job errors do not stop the loop.
	assert.GreaterOrEqual(t, jobs.alerts.Load(), int32(2))
	assert.Equal(t, int32(0), jobs.snapshots.Load())
}

func TestRunRejectsBadSnapshotSpec(t *testing.T) {
	jobs := &countingJobs{}
	s := New(jobs, time.Minute, "not a cron spec", zerolog.Nop())

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(0), jobs.alerts.Load())
}

func TestRunRejectsSubSecondInterval(t *testing.T) {
	s := New(&countingJobs{}, 10*time.Millisecond, "", zerolog.Nop())
	assert.Error(t, s.Run(context.Background()))
}

func TestRunSkipsWorkAfterCancel(t *testing.T) {
	jobs := &countingJobs{}
	s := New(jobs, time.Minute, "@every 1s", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, s.Run(ctx))
	assert.Equal(t, int32(0), jobs.alerts.Load())
}
