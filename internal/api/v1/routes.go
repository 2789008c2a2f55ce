// Package v1 provides the REST API handlers for sweeps, sweep statuses,
// single-vehicle refreshes and freshness statistics.
package v1

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/mydv/vrsync/internal/api/common"
	"github.com/mydv/vrsync/internal/service"
	pkgsync "github.com/mydv/vrsync/internal/sync"
	"github.com/mydv/vrsync/internal/sync/coordinator"
	"github.com/mydv/vrsync/internal/versions"
)

// maxBodyBytes caps the size of request bodies
const maxBodyBytes = 64 << 10

// Routes holds the handlers of the v1 API
type Routes struct {
	service service.SyncService
}

// NewRoutes creates a new Routes instance with the provided service
func NewRoutes(svc service.SyncService) *Routes {
	return &Routes{
		service: svc,
	}
}

// Router creates the router mounted under /v1
func Router(svc service.SyncService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()
	r.Post("/sweeps", routes.triggerSweep)
	r.Get("/sweeps/status", routes.getSweepStatuses)
	r.Post("/vehicles/{vehicleID}/refresh", routes.refreshVehicle)
	r.Get("/stats", routes.getStats)

	return r
}

// HealthRouter creates a router for health check endpoints
func HealthRouter(svc service.SyncService) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(svc))
	r.Get("/version", versionHandler)

	return r
}

// triggerSweep runs a sweep and returns its report.
//
// Body (optional): {"tenantId": "...", "forceRefresh": true, "batchSize": 5}
func (rr *Routes) triggerSweep(w http.ResponseWriter, r *http.Request) {
	var opts pkgsync.SweepOptions

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		common.WriteErrorResponse(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	report, err := rr.service.TriggerSweep(r.Context(), opts)
	switch {
	case err == nil:
		common.WriteJSONResponse(w, report, http.StatusOK)
	case errors.Is(err, service.ErrInvalidBatchSize), errors.Is(err, service.ErrInvalidTenantID):
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrSweepInProgress):
		common.WriteErrorResponse(w, err.Error(), http.StatusConflict)
	case errors.Is(err, coordinator.ErrStopped):
		common.WriteErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
	case r.Context().Err() != nil:
		// client went away; the sweep keeps running
		slog.Debug("Sweep trigger abandoned by client", "error", err)
	default:
		slog.Error("Sweep failed", "tenant_id", opts.TenantID, "error", err)
		common.WriteErrorResponse(w, err.Error(), http.StatusInternalServerError)
	}
}

// refreshVehicle refreshes one vehicle. Lookup and persistence failures are
// reported in the body with 200; only request problems change the status.
func (rr *Routes) refreshVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := common.GetUUIDParam(r, "vehicleID")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := rr.service.RefreshVehicle(r.Context(), vehicleID)

	status := http.StatusOK
	switch result.Error {
	case pkgsync.ErrorKindVehicleNotFound:
		status = http.StatusNotFound
	case pkgsync.ErrorKindIneligible:
		status = http.StatusUnprocessableEntity
	case pkgsync.ErrorKindStorage:
		status = http.StatusServiceUnavailable
	}
	common.WriteJSONResponse(w, result, status)
}

// getStats returns the freshness statistics, optionally for ?tenantId=
func (rr *Routes) getStats(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenantId")

	st, err := rr.service.GetStats(r.Context(), tenantID)
	if errors.Is(err, service.ErrInvalidTenantID) {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("Failed to compute stats", "tenant_id", tenantID, "error", err)
		common.WriteErrorResponse(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, st, http.StatusOK)
}

// getSweepStatuses returns the last sweep of every scope, keyed by tenant ID
// or "*" for all-tenant sweeps
func (rr *Routes) getSweepStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := rr.service.GetSweepStatuses(r.Context())
	if err != nil {
		slog.Error("Failed to read sweep statuses", "error", err)
		common.WriteErrorResponse(w, "failed to read sweep statuses", http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, map[string]any{"sweeps": statuses}, http.StatusOK)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, map[string]string{"status": "healthy"}, http.StatusOK)
}

func readinessHandler(svc service.SyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CheckReadiness(r.Context()); err != nil {
			common.WriteErrorResponse(w, "service not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		common.WriteJSONResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
	}
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}
