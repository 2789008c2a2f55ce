package sync

import (
	"time"

	"github.com/google/uuid"
)

// Outcome error kinds that do not come from the registry client
const (
	// ErrorKindPersistence means the lookup succeeded but the commit failed.
	// The canonical record may already be written.
	ErrorKindPersistence = "persistence"
	// ErrorKindVehicleNotFound means the single-vehicle refresh named an
	// unknown vehicle
	ErrorKindVehicleNotFound = "vehicle-not-found"
	// ErrorKindIneligible means the vehicle is archived or has no registration
	ErrorKindIneligible = "ineligible"
	// ErrorKindStorage means the vehicle could not be loaded
	ErrorKindStorage = "storage"
)

// SweepOptions are the inbound parameters of one sweep
type SweepOptions struct {
	TenantID     string `json:"tenantId,omitempty"`
	ForceRefresh bool   `json:"forceRefresh,omitempty"`
	// BatchSize overrides the configured group size when positive
	BatchSize int `json:"batchSize,omitempty"`
}

// Outcome is the result of one attempted refresh during a sweep
type Outcome struct {
	VehicleID            uuid.UUID `json:"vehicleId"`
	Registration         string    `json:"registration"`
	Success              bool      `json:"success"`
	RoadworthinessStatus string    `json:"roadworthinessStatus,omitempty"`
	ExpiryDate           string    `json:"expiryDate,omitempty"`
	// Error is the failure kind: an enquiry.ErrorKind or ErrorKindPersistence
	Error    string `json:"error,omitempty"`
	Message  string `json:"message,omitempty"`
	Attempts int    `json:"attempts"`
}

// SweepReport summarises one sweep. Processed == Updated + Errors.
type SweepReport struct {
	Candidates int       `json:"candidates"`
	Groups     int       `json:"groups"`
	Processed  int       `json:"processed"`
	Updated    int       `json:"updated"`
	Errors     int       `json:"errors"`
	Outcomes   []Outcome `json:"outcomes"`
	Cancelled  bool      `json:"cancelled,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

func (r *SweepReport) add(o Outcome) {
	r.Processed++
	if o.Success {
		r.Updated++
	} else {
		r.Errors++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Duration is the wall time of the sweep
func (r *SweepReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RefreshResult is returned by the single-vehicle entry point
type RefreshResult struct {
	Success              bool   `json:"success"`
	RoadworthinessStatus string `json:"roadworthinessStatus,omitempty"`
	ExpiryDate           string `json:"expiryDate,omitempty"`
	Error                string `json:"error,omitempty"`
	Message              string `json:"message,omitempty"`
	Attempts             int    `json:"attempts,omitempty"`
}

func (o Outcome) result() RefreshResult {
	return RefreshResult{
		Success:              o.Success,
		RoadworthinessStatus: o.RoadworthinessStatus,
		ExpiryDate:           o.ExpiryDate,
		Error:                o.Error,
		Message:              o.Message,
		Attempts:             o.Attempts,
	}
}
