package vehicles

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Vehicle is an inventory item whose registry facts can be refreshed.
// Rows are owned by the inventory subsystem; the pipeline only reads them and
// updates the Summary projection.
type Vehicle struct {
	ID           uuid.UUID
	TenantID     string
	Registration string
	Active       bool
	CreatedAt    time.Time
	Summary      Summary
}

// Summary is the denormalised slice of a Record stored on the vehicle row.
// After a successful refresh it carries the same roadworthiness status and
// check time as the canonical record for the vehicle's plate.
type Summary struct {
	RoadworthinessStatus string
	RoadworthinessExpiry *time.Time
	CheckedAt            *time.Time
	RawPayload           json.RawMessage
}

// NormalizedRegistration returns the vehicle's plate in lookup form.
func (v *Vehicle) NormalizedRegistration() string {
	return NormalizeRegistration(v.Registration)
}

// Eligible reports whether the vehicle can take part in a refresh: it must be
// active and carry a non-empty registration.
func (v *Vehicle) Eligible() bool {
	return v.Active && v.NormalizedRegistration() != ""
}
