package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	clocktesting "k8s.io/utils/clock/testing"

	pkgsync "github.com/mydv/vrsync/internal/sync"
	syncmocks "github.com/mydv/vrsync/internal/sync/mocks"
	"github.com/mydv/vrsync/internal/sync/state"
	statemocks "github.com/mydv/vrsync/internal/sync/state/mocks"
)

var now = time.Date(2026, 6, 15, 2, 0, 0, 0, time.UTC)

func TestNextInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base time.Duration
		min  time.Duration
		max  time.Duration
	}{
		{name: "daily", base: 24 * time.Hour, min: 24*time.Hour - 72*time.Minute, max: 24*time.Hour + 72*time.Minute},
		{name: "hourly", base: time.Hour, min: 57 * time.Minute, max: 63 * time.Minute},
		{name: "non-positive uses default", base: 0, min: DefaultInterval - 72*time.Minute, max: DefaultInterval + 72*time.Minute},
		{name: "too small to jitter", base: 10 * time.Nanosecond, min: 10 * time.Nanosecond, max: 10 * time.Nanosecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for range 100 {
				got := nextInterval(tt.base)
				assert.GreaterOrEqual(t, got, tt.min)
				assert.LessOrEqual(t, got, tt.max)
			}
		})
	}
}

// blockingSweep makes RunSweep wait until release is closed
func blockingSweep(started chan<- pkgsync.SweepOptions, release <-chan struct{}, report *pkgsync.SweepReport) any {
	return func(ctx context.Context, opts pkgsync.SweepOptions) (*pkgsync.SweepReport, error) {
		started <- opts
		select {
		case <-release:
		case <-ctx.Done():
			return &pkgsync.SweepReport{Cancelled: true}, nil
		}
		return report, nil
	}
}

func TestTrigger_RunsSweep(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	want := &pkgsync.SweepReport{Candidates: 2, Processed: 2, Updated: 2}
	opts := pkgsync.SweepOptions{TenantID: "dealer-1", ForceRefresh: true}
	manager.EXPECT().RunSweep(gomock.Any(), opts).Return(want, nil)

	c := New(manager)
	defer func() { _ = c.Stop() }()

	got, err := c.Trigger(context.Background(), opts)
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestTrigger_PropagatesSelectionFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	manager.EXPECT().RunSweep(gomock.Any(), gomock.Any()).Return(nil, errors.New("database unreachable"))

	c := New(manager)
	defer func() { _ = c.Stop() }()

	_, err := c.Trigger(context.Background(), pkgsync.SweepOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database unreachable")
}

func TestTrigger_IdenticalTriggersShareOneSweep(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	started := make(chan pkgsync.SweepOptions, 1)
	release := make(chan struct{})
	want := &pkgsync.SweepReport{Candidates: 1}
	manager.EXPECT().RunSweep(gomock.Any(), gomock.Any()).DoAndReturn(blockingSweep(started, release, want)).Times(1)

	c := New(manager)
	defer func() { _ = c.Stop() }()

	opts := pkgsync.SweepOptions{TenantID: "dealer-1"}
	results := make(chan *pkgsync.SweepReport, 2)
	go func() {
		r, _ := c.Trigger(context.Background(), opts)
		results <- r
	}()
	<-started

	go func() {
		r, _ := c.Trigger(context.Background(), opts)
		results <- r
	}()

	// give the second trigger time to join the first flight
	time.Sleep(20 * time.Millisecond)
	close(release)

	assert.Same(t, want, <-results)
	assert.Same(t, want, <-results)
}

func TestTrigger_DifferentOptionsRejectedWhileRunning(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	started := make(chan pkgsync.SweepOptions, 1)
	release := make(chan struct{})
	manager.EXPECT().RunSweep(gomock.Any(), gomock.Any()).DoAndReturn(
		blockingSweep(started, release, &pkgsync.SweepReport{})).Times(1)

	c := New(manager)
	defer func() { _ = c.Stop() }()

	done := make(chan error, 1)
	go func() {
		_, err := c.Trigger(context.Background(), pkgsync.SweepOptions{})
		done <- err
	}()
	<-started

	_, err := c.Trigger(context.Background(), pkgsync.SweepOptions{TenantID: "dealer-2"})
	assert.ErrorIs(t, err, ErrSweepInProgress)

	close(release)
	assert.NoError(t, <-done)
}

func TestTrigger_SequentialSweepsRunAgain(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	manager.EXPECT().RunSweep(gomock.Any(), gomock.Any()).Return(&pkgsync.SweepReport{}, nil).Times(2)

	c := New(manager)
	defer func() { _ = c.Stop() }()

	_, err := c.Trigger(context.Background(), pkgsync.SweepOptions{TenantID: "dealer-1"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err = c.Trigger(context.Background(), pkgsync.SweepOptions{TenantID: "dealer-2"})
		return err == nil
	}, time.Second, time.Millisecond)
}

func TestTrigger_CallerCancellationDoesNotCancelSweep(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	started := make(chan pkgsync.SweepOptions, 1)
	release := make(chan struct{})
	sweepCtxErr := make(chan error, 1)
	manager.EXPECT().RunSweep(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ pkgsync.SweepOptions) (*pkgsync.SweepReport, error) {
			started <- pkgsync.SweepOptions{}
			<-release
			sweepCtxErr <- ctx.Err()
			return &pkgsync.SweepReport{}, nil
		})

	c := New(manager)
	defer func() { _ = c.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Trigger(ctx, pkgsync.SweepOptions{})
		done <- err
	}()
	<-started
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	close(release)
	assert.NoError(t, <-sweepCtxErr)
}

func TestStop_CancelsRunningSweep(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	started := make(chan pkgsync.SweepOptions, 1)
	manager.EXPECT().RunSweep(gomock.Any(), gomock.Any()).DoAndReturn(
		blockingSweep(started, make(chan struct{}), nil))

	c := New(manager)

	results := make(chan *pkgsync.SweepReport, 1)
	go func() {
		r, _ := c.Trigger(context.Background(), pkgsync.SweepOptions{})
		results <- r
	}()
	<-started

	require.NoError(t, c.Stop())
	report := <-results
	require.NotNil(t, report)
	assert.True(t, report.Cancelled)

	_, err := c.Trigger(context.Background(), pkgsync.SweepOptions{})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestStart_RunsOnScheduleUntilStopped(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	sweeps := make(chan pkgsync.SweepOptions, 4)
	manager.EXPECT().RunSweep(gomock.Any(), pkgsync.SweepOptions{}).DoAndReturn(
		func(_ context.Context, opts pkgsync.SweepOptions) (*pkgsync.SweepReport, error) {
			sweeps <- opts
			return &pkgsync.SweepReport{}, nil
		}).Times(2)

	fc := clocktesting.NewFakeClock(now)
	c := New(manager, WithInterval(time.Hour), WithClock(fc))

	startErr := make(chan error, 1)
	go func() {
		startErr <- c.Start(context.Background())
	}()

	// initial sweep on start
	select {
	case <-sweeps:
	case <-time.After(time.Second):
		t.Fatal("no sweep on start")
	}

	require.Eventually(t, fc.HasWaiters, time.Second, time.Millisecond)
	fc.Step(63 * time.Minute)

	select {
	case <-sweeps:
	case <-time.After(time.Second):
		t.Fatal("no sweep after the interval elapsed")
	}

	require.Eventually(t, fc.HasWaiters, time.Second, time.Millisecond)
	require.NoError(t, c.Stop())
	assert.NoError(t, <-startErr)
}

func TestStart_StopsWithContext(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	manager.EXPECT().RunSweep(gomock.Any(), gomock.Any()).Return(&pkgsync.SweepReport{}, nil)

	fc := clocktesting.NewFakeClock(now)
	c := New(manager, WithClock(fc))

	ctx, cancel := context.WithCancel(context.Background())
	startErr := make(chan error, 1)
	go func() {
		startErr <- c.Start(ctx)
	}()

	require.Eventually(t, fc.HasWaiters, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-startErr:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancellation")
	}
	require.NoError(t, c.Stop())
}

func TestTrigger_RecordsSweepStatus(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	report := &pkgsync.SweepReport{Candidates: 2, Processed: 2, Updated: 1, Errors: 1, FinishedAt: now}
	manager.EXPECT().RunSweep(gomock.Any(), gomock.Any()).Return(report, nil)

	statuses := state.NewMemoryStateService()
	c := New(manager, WithStateService(statuses), WithClock(clocktesting.NewFakeClock(now)))
	defer func() { _ = c.Stop() }()

	_, err := c.Trigger(context.Background(), pkgsync.SweepOptions{TenantID: "dealer-1"})
	require.NoError(t, err)

	got, err := statuses.GetSweepStatus(context.Background(), "dealer-1")
	require.NoError(t, err)
	assert.Equal(t, state.SweepPhaseComplete, got.Phase)
	assert.Equal(t, 2, got.Candidates)
	assert.Equal(t, 1, got.Errors)
	require.NotNil(t, got.LastSweepTime)
	assert.True(t, got.LastSweepTime.Equal(now))

	_, err = statuses.GetSweepStatus(context.Background(), state.AllTenants)
	assert.ErrorIs(t, err, state.ErrStatusNotFound)
}

func TestTrigger_RecordsFailedSweep(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	manager.EXPECT().RunSweep(gomock.Any(), gomock.Any()).Return(nil, errors.New("database unreachable"))

	statuses := state.NewMemoryStateService()
	c := New(manager, WithStateService(statuses))
	defer func() { _ = c.Stop() }()

	_, err := c.Trigger(context.Background(), pkgsync.SweepOptions{})
	require.Error(t, err)

	got, err := statuses.GetSweepStatus(context.Background(), state.AllTenants)
	require.NoError(t, err)
	assert.Equal(t, state.SweepPhaseFailed, got.Phase)
	assert.Equal(t, "database unreachable", got.Message)
	assert.Equal(t, 1, got.AttemptCount)
}

func TestTrigger_StatusFailureDoesNotFailSweep(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	want := &pkgsync.SweepReport{}
	manager.EXPECT().RunSweep(gomock.Any(), gomock.Any()).Return(want, nil)

	statuses := statemocks.NewMockStateService(ctrl)
	statuses.EXPECT().UpdateStatusAtomically(gomock.Any(), state.AllTenants, gomock.Any()).
		Return(false, errors.New("connection refused")).Times(2)

	c := New(manager, WithStateService(statuses))
	defer func() { _ = c.Stop() }()

	got, err := c.Trigger(context.Background(), pkgsync.SweepOptions{})
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestStart_DelaysFirstSweepAfterRecentSweep(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	sweeps := make(chan pkgsync.SweepOptions, 2)
	manager.EXPECT().RunSweep(gomock.Any(), pkgsync.SweepOptions{}).DoAndReturn(
		func(_ context.Context, opts pkgsync.SweepOptions) (*pkgsync.SweepReport, error) {
			sweeps <- opts
			return &pkgsync.SweepReport{}, nil
		}).Times(1)

	statuses := state.NewMemoryStateService()
	lastSweep := now.Add(-40 * time.Minute)
	_, err := statuses.UpdateStatusAtomically(context.Background(), state.AllTenants,
		state.MarkFinished(&pkgsync.SweepReport{FinishedAt: lastSweep}, nil, lastSweep))
	require.NoError(t, err)

	fc := clocktesting.NewFakeClock(now)
	c := New(manager, WithInterval(time.Hour), WithClock(fc), WithStateService(statuses))

	startErr := make(chan error, 1)
	go func() {
		startErr <- c.Start(context.Background())
	}()

	require.Eventually(t, fc.HasWaiters, time.Second, time.Millisecond)
	select {
	case <-sweeps:
		t.Fatal("swept on start despite a recent sweep")
	case <-time.After(50 * time.Millisecond):
	}

	// 20 of the 60 minutes remain
	fc.Step(20 * time.Minute)

	select {
	case <-sweeps:
	case <-time.After(time.Second):
		t.Fatal("no sweep once the interval since the last sweep elapsed")
	}

	require.Eventually(t, fc.HasWaiters, time.Second, time.Millisecond)
	require.NoError(t, c.Stop())
	assert.NoError(t, <-startErr)
}

func TestStart_SweepsWhenLastSweepIsOld(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	sweeps := make(chan pkgsync.SweepOptions, 1)
	manager.EXPECT().RunSweep(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, opts pkgsync.SweepOptions) (*pkgsync.SweepReport, error) {
			sweeps <- opts
			return &pkgsync.SweepReport{}, nil
		}).Times(1)

	statuses := statemocks.NewMockStateService(ctrl)
	old := now.Add(-2 * time.Hour)
	statuses.EXPECT().GetSweepStatus(gomock.Any(), state.AllTenants).
		Return(&state.SweepStatus{Phase: state.SweepPhaseComplete, LastSweepTime: &old}, nil)
	statuses.EXPECT().UpdateStatusAtomically(gomock.Any(), state.AllTenants, gomock.Any()).
		Return(true, nil).Times(2)

	fc := clocktesting.NewFakeClock(now)
	c := New(manager, WithInterval(time.Hour), WithClock(fc), WithStateService(statuses))

	startErr := make(chan error, 1)
	go func() {
		startErr <- c.Start(context.Background())
	}()

	select {
	case <-sweeps:
	case <-time.After(time.Second):
		t.Fatal("no sweep on start")
	}

	require.Eventually(t, fc.HasWaiters, time.Second, time.Millisecond)
	require.NoError(t, c.Stop())
	assert.NoError(t, <-startErr)
}

func TestRun_CancellationReturnsPartialReport(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	started := make(chan pkgsync.SweepOptions, 1)
	manager.EXPECT().RunSweep(gomock.Any(), gomock.Any()).
		DoAndReturn(blockingSweep(started, make(chan struct{}), nil))

	c := New(manager)
	defer func() { _ = c.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		report *pkgsync.SweepReport
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := c.Run(ctx, pkgsync.SweepOptions{TenantID: "dealer-1"})
		done <- result{report, err}
	}()

	<-started
	cancel()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		require.NotNil(t, res.report)
		assert.True(t, res.report.Cancelled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after its context was cancelled")
	}

	// the flight is released, so the next sweep is accepted
	manager.EXPECT().RunSweep(gomock.Any(), gomock.Any()).Return(&pkgsync.SweepReport{}, nil)
	_, err := c.Trigger(context.Background(), pkgsync.SweepOptions{})
	require.NoError(t, err)
}

func TestRun_ExclusiveWithTriggers(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	started := make(chan pkgsync.SweepOptions, 1)
	release := make(chan struct{})
	manager.EXPECT().RunSweep(gomock.Any(), gomock.Any()).
		DoAndReturn(blockingSweep(started, release, &pkgsync.SweepReport{})).Times(1)

	c := New(manager)
	defer func() { _ = c.Stop() }()

	opts := pkgsync.SweepOptions{}
	done := make(chan error, 1)
	go func() {
		_, err := c.Run(context.Background(), opts)
		done <- err
	}()
	<-started

	// an identical trigger cannot join a caller-owned sweep
	_, err := c.Trigger(context.Background(), opts)
	require.ErrorIs(t, err, ErrSweepInProgress)
	_, err = c.Run(context.Background(), opts)
	require.ErrorIs(t, err, ErrSweepInProgress)

	close(release)
	require.NoError(t, <-done)
}

func TestStop_CancelsRun(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)
	started := make(chan pkgsync.SweepOptions, 1)
	manager.EXPECT().RunSweep(gomock.Any(), gomock.Any()).
		DoAndReturn(blockingSweep(started, make(chan struct{}), nil))

	c := New(manager)

	done := make(chan *pkgsync.SweepReport, 1)
	go func() {
		report, _ := c.Run(context.Background(), pkgsync.SweepOptions{})
		done <- report
	}()
	<-started

	require.NoError(t, c.Stop())
	report := <-done
	require.NotNil(t, report)
	assert.True(t, report.Cancelled)

	_, err := c.Run(context.Background(), pkgsync.SweepOptions{})
	assert.ErrorIs(t, err, ErrStopped)
}
