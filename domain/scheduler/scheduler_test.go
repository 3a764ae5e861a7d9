package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getcalls/website/internal/testutil"
)

func TestScheduler_AddAndRemoveTasks(t *testing.T) {
	s := NewScheduler(testutil.DiscardLogger())
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.AddIntervalTask("view_sweep", time.Minute, noop))
	require.NoError(t, s.AddCronTask("payment_expire", "*/15 * * * *", noop))
	require.NoError(t, s.AddTask("nightly", "0 2 * * *", time.Hour, noop))
	assert.Equal(t, []string{"nightly", "payment_expire", "view_sweep"}, s.ListTasks())

	// re-adding replaces rather than duplicating
	require.NoError(t, s.AddIntervalTask("view_sweep", 2*time.Minute, noop))
	assert.Len(t, s.ListTasks(), 3)

	s.RemoveTask("nightly")
	s.RemoveTask("unknown")
	assert.Equal(t, []string{"payment_expire", "view_sweep"}, s.ListTasks())

	assert.Error(t, s.AddCronTask("bad", "not a schedule", noop))
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(testutil.DiscardLogger())
	ctx := context.Background()

	assert.False(t, s.IsRunning())
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())

	require.NoError(t, s.AddIntervalTask("tick", time.Hour, func(context.Context) error { return nil }))
	info := s.GetTaskInfo()
	require.Len(t, info, 1)
	assert.Equal(t, "tick", info[0].Name)
	assert.False(t, info[0].NextRun.IsZero())

	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_RunNowReportsErrors(t *testing.T) {
	s := NewScheduler(testutil.DiscardLogger())
	boom := errors.New("boom")

	assert.ErrorIs(t, s.RunNow("failing", func(context.Context) error { return boom }), boom)
	assert.NoError(t, s.RunNow("ok", func(ctx context.Context) error {
		_, has := ctx.Deadline()
		assert.True(t, has)
		return nil
	}))
}

type fakeSweeper struct{ at []time.Time }

func (f *fakeSweeper) Sweep(now time.Time) int {
	f.at = append(f.at, now)
	return 2
}

func TestViewSweepTask(t *testing.T) {
	sw := &fakeSweeper{}
	task := NewViewSweepTask(sw, testutil.DiscardLogger())
	fixed := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	task.now = func() time.Time { return fixed }

	require.NoError(t, task.Run(context.Background()))
	assert.Equal(t, []time.Time{fixed}, sw.at)
}

type fakeExpirer struct {
	before time.Time
	err    error
}

func (f *fakeExpirer) ExpirePending(_ context.Context, before time.Time) (int, error) {
	f.before = before
	return 1, f.err
}

func TestPaymentExpireTask(t *testing.T) {
	fe := &fakeExpirer{}
	task := NewPaymentExpireTask(fe, 24*time.Hour, testutil.DiscardLogger())
	fixed := time.Date(2026, 7, 2, 12, 0, 0, 0, time.UTC)
	task.now = func() time.Time { return fixed }

	require.NoError(t, task.Run(context.Background()))
	assert.Equal(t, fixed.Add(-24*time.Hour), fe.before)

	fe.err = errors.New("db down")
	assert.Error(t, task.Run(context.Background()))
}
