package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/sentinel-weather/internal/weather/metrics"
	"github.com/kart-io/sentinel-weather/pkg/infra/pool"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_RunsOnEachTick(t *testing.T) {
	clock := clockwork.NewFakeClock()
	workers, err := pool.NewPool("scheduler-test", pool.SchedulerPool, nil)
	require.NoError(t, err)
	defer workers.Release()

	m := metrics.New()
	s := New(workers, clock, m)

	var refresh, jitter atomic.Int32
	require.NoError(t, s.Add(Task{Name: "refresh", Interval: 10 * time.Minute, RunOnStart: true, Run: func(context.Context) error {
		refresh.Add(1)
		return nil
	}}))
	require.NoError(t, s.Add(Task{Name: "jitter", Interval: 30 * time.Second, Run: func(context.Context) error {
		jitter.Add(1)
		return errors.New("flaky")
	}}))

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	waitFor(t, func() bool { return refresh.Load() == 1 })
	require.NoError(t, clock.BlockUntilContext(context.Background(), 2))

	for i := 1; i <= 4; i++ {
		clock.Advance(30 * time.Second)
		want := int32(i)
		waitFor(t, func() bool { return jitter.Load() == want })
	}
	assert.Equal(t, int32(1), refresh.Load())

	clock.Advance(8 * time.Minute)
	waitFor(t, func() bool { return refresh.Load() == 2 })

	waitFor(t, func() bool {
		return m.Stats()["tasks"].(map[string]uint64)["jitter/error"] >= 4
	})
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(nil, clock, nil)

	release := make(chan struct{})
	var runs atomic.Int32
	require.NoError(t, s.Add(Task{Name: "slow", Interval: time.Second, Run: func(ctx context.Context) error {
		runs.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}}))
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	clock.Advance(time.Second)
	waitFor(t, func() bool { return runs.Load() == 1 })

	clock.Advance(time.Second)
	clock.Advance(time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	close(release)
	s.Stop()
}

func TestScheduler_StopCancelsRunningTasks(t *testing.T) {
	s := New(nil, clockwork.NewFakeClock(), nil)
	started := make(chan struct{})
	var cancelled atomic.Bool
	require.NoError(t, s.Add(Task{Name: "long", Interval: time.Hour, RunOnStart: true, Run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}}))
	require.NoError(t, s.Start(context.Background()))
	<-started

	s.Stop()
	assert.True(t, cancelled.Load())
	s.Stop()
}

func TestScheduler_Validation(t *testing.T) {
	s := New(nil, nil, nil)
	assert.Error(t, s.Add(Task{Name: "", Interval: time.Second, Run: func(context.Context) error { return nil }}))
	assert.Error(t, s.Add(Task{Name: "x", Interval: 0, Run: func(context.Context) error { return nil }}))
	assert.Error(t, s.Add(Task{Name: "x", Interval: time.Second}))

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))
	assert.Error(t, s.Add(Task{Name: "late", Interval: time.Second, Run: func(context.Context) error { return nil }}))
	s.Stop()
}

func TestScheduler_RecoversPanics(t *testing.T) {
	s := New(nil, clockwork.NewFakeClock(), metrics.New())
	done := make(chan struct{})
	require.NoError(t, s.Add(Task{Name: "panicky", Interval: time.Hour, RunOnStart: true, Run: func(context.Context) error {
		defer close(done)
		panic("boom")
	}}))
	require.NoError(t, s.Start(context.Background()))
	<-done
	s.Stop()
	assert.Equal(t, uint64(1), s.metrics.Stats()["tasks"].(map[string]uint64)["panicky/error"])
}

func TestScheduler_RestartAfterStop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(nil, clock, nil)

	var runs atomic.Int32
	require.NoError(t, s.Add(Task{Name: "refresh", Interval: time.Minute, RunOnStart: true, Run: func(context.Context) error {
		runs.Add(1)
		return nil
	}}))

	require.NoError(t, s.Start(context.Background()))
	waitFor(t, func() bool { return runs.Load() == 1 })
	s.Stop()
	s.Stop()

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()
	waitFor(t, func() bool { return runs.Load() == 2 })
	assert.Error(t, s.Start(context.Background()))
}
