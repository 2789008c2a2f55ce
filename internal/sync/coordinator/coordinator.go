package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"k8s.io/utils/clock"

	pkgsync "github.com/mydv/vrsync/internal/sync"
	"github.com/mydv/vrsync/internal/sync/state"
)

// statusTimeout bounds each sweep status write
const statusTimeout = 10 * time.Second

// ErrSweepInProgress is returned by Trigger when a sweep with different
// options is already running
var ErrSweepInProgress = errors.New("a sweep with different options is already in progress")

// ErrStopped is returned by Trigger after Stop
var ErrStopped = errors.New("sweep coordinator stopped")

//go:generate mockgen -destination=mocks/mock_coordinator.go -package=mocks github.com/mydv/vrsync/internal/sync/coordinator Coordinator

// Coordinator runs sweeps on a schedule and makes sure at most one sweep runs
// at a time
type Coordinator interface {
	// Start runs the scheduled sweep loop. It blocks until ctx is cancelled
	// or Stop is called.
	Start(ctx context.Context) error

	// Stop ends the scheduled loop, cancels any running sweep and waits for it
	Stop() error

	// Trigger runs a sweep now. A trigger with the same options as the running
	// sweep waits for that sweep and shares its report; any other trigger
	// fails with ErrSweepInProgress. Cancelling ctx stops the wait, not the
	// sweep.
	Trigger(ctx context.Context, opts pkgsync.SweepOptions) (*pkgsync.SweepReport, error)

	// Run runs a sweep owned by the caller. Cancelling ctx, or Stop, ends it
	// at the next vehicle or group and returns the partial report. No trigger
	// can join it, and it fails with ErrSweepInProgress while another sweep
	// runs.
	Run(ctx context.Context, opts pkgsync.SweepOptions) (*pkgsync.SweepReport, error)
}

type defaultCoordinator struct {
	manager  pkgsync.Manager
	statuses state.StateService
	interval time.Duration
	clock    clock.Clock

	group singleflight.Group

	mu       sync.Mutex
	running  string
	inFlight sync.WaitGroup

	// sweeps run on this context so that a caller going away does not
	// cancel a sweep other callers may be waiting on
	baseCtx    context.Context
	baseCancel context.CancelFunc

	cancelFunc context.CancelFunc
	done       chan struct{}
}

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithInterval sets the base time between scheduled sweeps
func WithInterval(interval time.Duration) Option {
	return func(c *defaultCoordinator) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// WithClock sets the clock driving the schedule
func WithClock(clk clock.Clock) Option {
	return func(c *defaultCoordinator) {
		c.clock = clk
	}
}

// WithStateService records the progress of every sweep in svc. The recorded
// all-tenant status also lets Start skip the initial sweep after a restart.
func WithStateService(svc state.StateService) Option {
	return func(c *defaultCoordinator) {
		c.statuses = svc
	}
}

// New creates a new coordinator around manager
func New(manager pkgsync.Manager, opts ...Option) Coordinator {
	baseCtx, baseCancel := context.WithCancel(context.Background())
	c := &defaultCoordinator{
		manager:    manager,
		interval:   DefaultInterval,
		clock:      clock.RealClock{},
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
		done:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start implements Coordinator
func (c *defaultCoordinator) Start(ctx context.Context) error {
	interval := nextInterval(c.interval)
	slog.Info("Starting scheduled sweep coordinator",
		"base_interval", c.interval.String(),
		"actual_interval", interval.String())

	coordCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelFunc = cancel
	c.mu.Unlock()
	defer func() {
		cancel()
		close(c.done)
		slog.Info("Scheduled sweep coordinator shut down")
	}()

	first := c.initialDelay(coordCtx)
	if first > 0 {
		slog.Info("Recent sweep found, delaying first scheduled sweep", "in", first.String())
		interval = first
	}

	timer := c.clock.NewTimer(interval)
	defer timer.Stop()

	if first == 0 {
		c.runScheduled(coordCtx)
	}

	for {
		select {
		case <-timer.C():
			c.runScheduled(coordCtx)

			next := nextInterval(c.interval)
			slog.Debug("Next scheduled sweep", "in", next.String())
			timer.Reset(next)
		case <-coordCtx.Done():
			slog.Info("Scheduled sweep coordinator stopping")
			return nil
		case <-c.baseCtx.Done():
			return nil
		}
	}
}

// Stop implements Coordinator
func (c *defaultCoordinator) Stop() error {
	slog.Info("Stopping sweep coordinator")

	c.mu.Lock()
	c.baseCancel()
	cancel := c.cancelFunc
	c.mu.Unlock()
	if cancel != nil {
		cancel()
		<-c.done
	}

	c.inFlight.Wait()
	return nil
}

// runScheduled runs the periodic all-tenant sweep
func (c *defaultCoordinator) runScheduled(ctx context.Context) {
	report, err := c.Trigger(ctx, pkgsync.SweepOptions{})
	switch {
	case errors.Is(err, ErrSweepInProgress):
		slog.Info("Skipping scheduled sweep, another sweep is running")
	case errors.Is(err, context.Canceled), errors.Is(err, ErrStopped):
		return
	case err != nil:
		slog.Error("Scheduled sweep failed", "error", err)
	default:
		slog.Info("Scheduled sweep finished",
			"candidates", report.Candidates,
			"updated", report.Updated,
			"errors", report.Errors,
			"cancelled", report.Cancelled)
	}
}

// Trigger implements Coordinator
func (c *defaultCoordinator) Trigger(ctx context.Context, opts pkgsync.SweepOptions) (*pkgsync.SweepReport, error) {
	key := sweepKey(opts)

	// DoChan only spawns the flight, so holding mu across it keeps running in
	// step with the flight that owns it.
	c.mu.Lock()
	if c.baseCtx.Err() != nil {
		c.mu.Unlock()
		return nil, ErrStopped
	}
	if c.running != "" && c.running != key {
		running := c.running
		c.mu.Unlock()
		slog.Debug("Rejecting sweep trigger", "requested", key, "running", running)
		return nil, ErrSweepInProgress
	}
	c.running = key
	c.inFlight.Add(1)
	ch := c.group.DoChan(key, func() (any, error) {
		defer func() {
			c.mu.Lock()
			c.running = ""
			c.mu.Unlock()
		}()
		return c.runSweep(c.baseCtx, opts)
	})
	c.mu.Unlock()

	select {
	case res := <-ch:
		c.inFlight.Done()
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			slog.Debug("Joined running sweep", "options", key)
		}
		return res.Val.(*pkgsync.SweepReport), nil
	case <-ctx.Done():
		go func() {
			<-ch
			c.inFlight.Done()
		}()
		return nil, ctx.Err()
	}
}

// Run implements Coordinator
func (c *defaultCoordinator) Run(ctx context.Context, opts pkgsync.SweepOptions) (*pkgsync.SweepReport, error) {
	c.mu.Lock()
	if c.baseCtx.Err() != nil {
		c.mu.Unlock()
		return nil, ErrStopped
	}
	if c.running != "" {
		running := c.running
		c.mu.Unlock()
		slog.Debug("Rejecting owned sweep", "requested", sweepKey(opts), "running", running)
		return nil, ErrSweepInProgress
	}
	// a key no trigger produces, so identical triggers are rejected rather
	// than starting a second flight
	c.running = ownedPrefix + sweepKey(opts)
	c.inFlight.Add(1)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = ""
		c.mu.Unlock()
		c.inFlight.Done()
	}()

	sweepCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopOnShutdown := context.AfterFunc(c.baseCtx, cancel)
	defer stopOnShutdown()

	return c.runSweep(sweepCtx, opts)
}

// runSweep runs one sweep on ctx and records its progress
func (c *defaultCoordinator) runSweep(ctx context.Context, opts pkgsync.SweepOptions) (*pkgsync.SweepReport, error) {
	scope := state.Scope(opts.TenantID)
	c.recordStatus(scope, state.MarkRunning(c.clock.Now()))

	report, err := c.manager.RunSweep(ctx, opts)

	c.recordStatus(scope, state.MarkFinished(report, err, c.clock.Now()))
	return report, err
}

// recordStatus applies update to the status of scope. Failures are logged
// only: a sweep never fails because its status could not be stored.
func (c *defaultCoordinator) recordStatus(scope string, update func(*state.SweepStatus) bool) {
	if c.statuses == nil {
		return
	}

	// a sweep cancelled by Stop still records how far it got
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.baseCtx), statusTimeout)
	defer cancel()

	if _, err := c.statuses.UpdateStatusAtomically(ctx, scope, update); err != nil {
		slog.Warn("Failed to record sweep status", "scope", scope, "error", err)
	}
}

// initialDelay returns how long Start waits before its first sweep. It is
// zero unless the last complete all-tenant sweep finished less than one
// interval ago.
func (c *defaultCoordinator) initialDelay(ctx context.Context) time.Duration {
	if c.statuses == nil {
		return 0
	}

	status, err := c.statuses.GetSweepStatus(ctx, state.AllTenants)
	if err != nil {
		if !errors.Is(err, state.ErrStatusNotFound) {
			slog.Warn("Failed to read sweep status, sweeping now", "error", err)
		}
		return 0
	}
	if status.LastSweepTime == nil {
		return 0
	}

	elapsed := c.clock.Since(*status.LastSweepTime)
	if elapsed < 0 || elapsed >= c.interval {
		return 0
	}
	return c.interval - elapsed
}

const ownedPrefix = "owned "

func sweepKey(opts pkgsync.SweepOptions) string {
	return fmt.Sprintf("tenant=%s force=%t batch=%d", opts.TenantID, opts.ForceRefresh, opts.BatchSize)
}
