// Package sync runs registry sweeps: it selects the vehicles whose registry
// facts are stale, looks each one up in strict sequence with pacing between
// requests and between groups, and commits successful results.
//
// # Components
//
//   - selector: decides which vehicles are due (see sync/selector)
//   - enquiry.Client: one paced, retried lookup per plate
//   - writer: commits the canonical record and the vehicle summary together
//     (see sync/writer)
//
// Manager.RunSweep drives all three and returns a SweepReport. A failure for
// one vehicle is recorded as an Outcome and never aborts the sweep; only a
// failing selection does. Manager.RefreshVehicle refreshes a single vehicle
// outside of any sweep.
//
// # Pacing
//
// Vehicles are processed one at a time. Within a group the manager pauses
// Options.RequestDelay between vehicles; between groups it pauses
// Options.BatchDelay. No pause follows the last vehicle of a group or the
// last group. Pauses go through a Pacer so tests can observe them.
//
// # Cancellation
//
// The sweep context is checked before every vehicle and during every pause.
// A cancelled sweep stops cleanly and returns the partial report with
// Cancelled set and a nil error.
//
// The sync/coordinator subpackage runs sweeps on a schedule and guards
// against concurrent sweeps.
package sync
