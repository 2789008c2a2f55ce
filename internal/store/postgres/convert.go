package postgres

import (
	"github.com/mydv/vrsync/internal/db/sqlc"
	"github.com/mydv/vrsync/internal/vehicles"
)

func vehicleFromRow(row sqlc.GetVehicleRow) vehicles.Vehicle {
	return vehicles.Vehicle{
		ID:           row.ID,
		TenantID:     row.TenantID,
		Registration: deref(row.Registration),
		Active:       row.Active,
		CreatedAt:    row.CreatedAt,
		Summary: vehicles.Summary{
			RoadworthinessStatus: deref(row.RoadworthinessStatus),
			RoadworthinessExpiry: row.RoadworthinessExpiry,
			CheckedAt:            row.RegistryCheckedAt,
			RawPayload:           row.RegistryPayload,
		},
	}
}

func recordFromRow(row sqlc.GetRegistryRecordRow) *vehicles.Record {
	return &vehicles.Record{
		Registration: row.Registration,
		CheckedAt:    row.CheckedAt,
		Facts: vehicles.Facts{
			Registration:             row.Registration,
			Make:                     deref(row.Make),
			Colour:                   deref(row.Colour),
			FuelType:                 deref(row.FuelType),
			YearOfManufacture:        derefInt(row.YearOfManufacture),
			EngineCapacity:           derefInt(row.EngineCapacity),
			CO2Emissions:             derefInt(row.Co2Emissions),
			RoadworthinessStatus:     deref(row.RoadworthinessStatus),
			RoadworthinessExpiryDate: vehicles.FormatDate(row.RoadworthinessExpiry),
			TaxStatus:                deref(row.TaxStatus),
			TaxDueDate:               vehicles.FormatDate(row.TaxDueDate),
			TypeApproval:             deref(row.TypeApproval),
			Wheelplan:                deref(row.Wheelplan),
			RevenueWeight:            derefInt(row.RevenueWeight),
			MarkedForExport:          row.MarkedForExport,
			DateOfLastV5CIssued:      vehicles.FormatDate(row.DateOfLastV5cIssued),
			MonthOfFirstRegistration: deref(row.MonthOfFirstRegistration),
			Raw:                      row.RawPayload,
		},
	}
}

func upsertParams(r *vehicles.Record) sqlc.UpsertRegistryRecordParams {
	f := r.Facts
	raw := []byte(f.Raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	return sqlc.UpsertRegistryRecordParams{
		Registration:             r.Registration,
		Make:                     nullString(f.Make),
		Colour:                   nullString(f.Colour),
		FuelType:                 nullString(f.FuelType),
		YearOfManufacture:        nullInt(f.YearOfManufacture),
		EngineCapacity:           nullInt(f.EngineCapacity),
		Co2Emissions:             nullInt(f.CO2Emissions),
		RoadworthinessStatus:     nullString(f.RoadworthinessStatus),
		RoadworthinessExpiry:     vehicles.ParseDate(f.RoadworthinessExpiryDate),
		TaxStatus:                nullString(f.TaxStatus),
		TaxDueDate:               vehicles.ParseDate(f.TaxDueDate),
		TypeApproval:             nullString(f.TypeApproval),
		Wheelplan:                nullString(f.Wheelplan),
		RevenueWeight:            nullInt(f.RevenueWeight),
		MarkedForExport:          f.MarkedForExport,
		DateOfLastV5cIssued:      vehicles.ParseDate(f.DateOfLastV5CIssued),
		MonthOfFirstRegistration: nullString(f.MonthOfFirstRegistration),
		RawPayload:               raw,
		CheckedAt:                r.CheckedAt,
	}
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullInt(i int32) *int32 {
	if i == 0 {
		return nil
	}
	return &i
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int32) int32 {
	if i == nil {
		return 0
	}
	return *i
}
