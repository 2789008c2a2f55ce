package vehicles

import (
	"encoding/json"
	"time"
)

// DateLayout is the calendar date format used by the external registry.
const DateLayout = "2006-01-02"

// Facts is the vehicle fact sheet returned by the external registry for one
// plate. Field names follow the registry's JSON document.
type Facts struct {
	Registration             string `json:"registrationNumber"`
	Make                     string `json:"make,omitempty"`
	Colour                   string `json:"colour,omitempty"`
	FuelType                 string `json:"fuelType,omitempty"`
	YearOfManufacture        int32  `json:"yearOfManufacture,omitempty"`
	EngineCapacity           int32  `json:"engineCapacity,omitempty"`
	CO2Emissions             int32  `json:"co2Emissions,omitempty"`
	RoadworthinessStatus     string `json:"motStatus,omitempty"`
	RoadworthinessExpiryDate string `json:"motExpiryDate,omitempty"`
	TaxStatus                string `json:"taxStatus,omitempty"`
	TaxDueDate               string `json:"taxDueDate,omitempty"`
	TypeApproval             string `json:"typeApproval,omitempty"`
	Wheelplan                string `json:"wheelplan,omitempty"`
	RevenueWeight            int32  `json:"revenueWeight,omitempty"`
	MarkedForExport          bool   `json:"markedForExport,omitempty"`
	DateOfLastV5CIssued      string `json:"dateOfLastV5CIssued,omitempty"`
	MonthOfFirstRegistration string `json:"monthOfFirstRegistration,omitempty"`

	// Raw is the response body exactly as received.
	Raw json.RawMessage `json:"-"`
}

// Record is the canonical registry fact sheet for a plate. There is one
// record per normalised registration regardless of how many vehicles carry
// that plate. CheckedAt is set iff at least one lookup has succeeded.
type Record struct {
	Registration string
	Facts        Facts
	CheckedAt    *time.Time
}

// NewRecord builds the record written after a successful lookup at checkedAt.
// Every field comes from facts; nothing is merged from an older record.
func NewRecord(registration string, facts *Facts, checkedAt time.Time) *Record {
	checked := checkedAt
	return &Record{
		Registration: NormalizeRegistration(registration),
		Facts:        *facts,
		CheckedAt:    &checked,
	}
}

// Summary returns the projection that must be written to every vehicle
// refreshed from this record.
func (r *Record) Summary() Summary {
	return Summary{
		RoadworthinessStatus: r.Facts.RoadworthinessStatus,
		RoadworthinessExpiry: ParseDate(r.Facts.RoadworthinessExpiryDate),
		CheckedAt:            r.CheckedAt,
		RawPayload:           r.Facts.Raw,
	}
}

// ParseDate parses a registry calendar date. Empty or malformed values yield nil.
func ParseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil
	}
	return &t
}

// FormatDate renders a date in registry form, or "" for nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
