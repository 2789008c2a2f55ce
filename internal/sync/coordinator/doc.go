// Package coordinator schedules registry sweeps and keeps them from
// overlapping.
//
// The coordinator sits on top of sync.Manager:
//
//   - Start runs an all-tenant sweep immediately and then every interval,
//     with a ±5% jitter recalculated before each wait
//   - Trigger runs an on-demand sweep for the HTTP API and the CLI
//   - Stop cancels the running sweep, which returns its partial report, and
//     waits for it to finish
//
// # Single flight
//
// Sweeps are keyed by their options (tenant, force, batch size) through
// golang.org/x/sync/singleflight. A trigger whose options match the running
// sweep joins it and receives the same report. A trigger with different
// options fails fast with ErrSweepInProgress; the API maps it to 409.
// The scheduled loop treats ErrSweepInProgress as "already covered" and
// waits for the next tick.
//
// Sweeps run on the coordinator's own context, so an HTTP client that
// disconnects stops waiting without cancelling a sweep other callers may
// share. Run is the exception: one-shot commands own their sweep, so it runs
// on the caller's context and an interrupt yields the partial report.
//
// # Usage
//
//	coord := coordinator.New(manager, coordinator.WithInterval(24*time.Hour))
//	go func() { _ = coord.Start(ctx) }()
//	defer coord.Stop()
//
//	report, err := coord.Trigger(ctx, sync.SweepOptions{TenantID: "dealer-1"})
package coordinator
