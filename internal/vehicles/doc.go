// Package vehicles holds the data model shared by the registry sync pipeline:
// tracked inventory vehicles, the canonical registry record for a plate, and
// the read-optimised summary projection carried on each vehicle.
//
// A registration plate is the join key between a Vehicle and a Record. Plates
// are always compared in their normalised form (see NormalizeRegistration),
// so "ab12 cde" on a vehicle row matches the record stored under "AB12CDE".
package vehicles
