package v1

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mydv/vrsync/internal/service"
	"github.com/mydv/vrsync/internal/service/mocks"
	"github.com/mydv/vrsync/internal/stats"
	pkgsync "github.com/mydv/vrsync/internal/sync"
	"github.com/mydv/vrsync/internal/sync/coordinator"
	"github.com/mydv/vrsync/internal/sync/state"
)

func TestTriggerSweep(t *testing.T) {
	t.Parallel()

	started := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	report := &pkgsync.SweepReport{
		Candidates: 2,
		Groups:     1,
		Processed:  2,
		Updated:    1,
		Errors:     1,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
	}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*mocks.MockSyncService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "empty body runs default sweep",
			body: "",
			setupMock: func(m *mocks.MockSyncService) {
				m.EXPECT().TriggerSweep(gomock.Any(), pkgsync.SweepOptions{}).Return(report, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"candidates":2`,
		},
		{
			name: "options are decoded",
			body: `{"tenantId":"dealer-1","forceRefresh":true,"batchSize":3}`,
			setupMock: func(m *mocks.MockSyncService) {
				m.EXPECT().TriggerSweep(gomock.Any(), pkgsync.SweepOptions{
					TenantID:     "dealer-1",
					ForceRefresh: true,
					BatchSize:    3,
				}).Return(report, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"updated":1`,
		},
		{
			name:           "malformed body",
			body:           `{"tenantId":`,
			setupMock:      func(*mocks.MockSyncService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid request body",
		},
		{
			name:           "unknown field",
			body:           `{"tenant":"dealer-1"}`,
			setupMock:      func(*mocks.MockSyncService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid request body",
		},
		{
			name: "negative batch size",
			body: `{"batchSize":-1}`,
			setupMock: func(m *mocks.MockSyncService) {
				m.EXPECT().TriggerSweep(gomock.Any(), gomock.Any()).Return(nil, service.ErrInvalidBatchSize)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "batch size",
		},
		{
			name: "different sweep running",
			body: `{"tenantId":"dealer-2"}`,
			setupMock: func(m *mocks.MockSyncService) {
				m.EXPECT().TriggerSweep(gomock.Any(), gomock.Any()).Return(nil, service.ErrSweepInProgress)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   "already in progress",
		},
		{
			name: "coordinator stopped",
			body: "",
			setupMock: func(m *mocks.MockSyncService) {
				m.EXPECT().TriggerSweep(gomock.Any(), gomock.Any()).Return(nil, coordinator.ErrStopped)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "stopped",
		},
		{
			name: "selection failure",
			body: "",
			setupMock: func(m *mocks.MockSyncService) {
				m.EXPECT().TriggerSweep(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("failed to select sweep candidates: connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			svc := mocks.NewMockSyncService(ctrl)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/sweeps", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			Router(svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
		})
	}
}

func TestTriggerSweep_ClientGone(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockSyncService(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	svc.EXPECT().TriggerSweep(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, pkgsync.SweepOptions) (*pkgsync.SweepReport, error) {
			cancel()
			return nil, context.Canceled
		})

	req := httptest.NewRequest(http.MethodPost, "/sweeps", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	Router(svc).ServeHTTP(rr, req)

	assert.Empty(t, rr.Body.String())
}

func TestRefreshVehicle(t *testing.T) {
	t.Parallel()

	vehicleID := uuid.MustParse("6f1c2d9e-4b7a-4c1e-9a53-1b2c3d4e5f60")

	tests := []struct {
		name           string
		path           string
		setupMock      func(*mocks.MockSyncService)
		expectedStatus int
		expectedResult *pkgsync.RefreshResult
	}{
		{
			name:           "invalid vehicle id",
			path:           "/vehicles/not-a-uuid/refresh",
			setupMock:      func(*mocks.MockSyncService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "refreshed",
			path: "/vehicles/" + vehicleID.String() + "/refresh",
			setupMock: func(m *mocks.MockSyncService) {
				m.EXPECT().RefreshVehicle(gomock.Any(), vehicleID).Return(pkgsync.RefreshResult{
					Success:              true,
					RoadworthinessStatus: "Valid",
					ExpiryDate:           "2026-11-30",
					Attempts:             1,
				})
			},
			expectedStatus: http.StatusOK,
			expectedResult: &pkgsync.RefreshResult{
				Success:              true,
				RoadworthinessStatus: "Valid",
				ExpiryDate:           "2026-11-30",
				Attempts:             1,
			},
		},
		{
			name: "lookup failure is reported in the body",
			path: "/vehicles/" + vehicleID.String() + "/refresh",
			setupMock: func(m *mocks.MockSyncService) {
				m.EXPECT().RefreshVehicle(gomock.Any(), vehicleID).Return(pkgsync.RefreshResult{
					Error:    "not-found",
					Message:  "registration not known to registry",
					Attempts: 1,
				})
			},
			expectedStatus: http.StatusOK,
			expectedResult: &pkgsync.RefreshResult{
				Error:    "not-found",
				Message:  "registration not known to registry",
				Attempts: 1,
			},
		},
		{
			name: "unknown vehicle",
			path: "/vehicles/" + vehicleID.String() + "/refresh",
			setupMock: func(m *mocks.MockSyncService) {
				m.EXPECT().RefreshVehicle(gomock.Any(), vehicleID).
					Return(pkgsync.RefreshResult{Error: pkgsync.ErrorKindVehicleNotFound})
			},
			expectedStatus: http.StatusNotFound,
			expectedResult: &pkgsync.RefreshResult{Error: pkgsync.ErrorKindVehicleNotFound},
		},
		{
			name: "archived vehicle",
			path: "/vehicles/" + vehicleID.String() + "/refresh",
			setupMock: func(m *mocks.MockSyncService) {
				m.EXPECT().RefreshVehicle(gomock.Any(), vehicleID).
					Return(pkgsync.RefreshResult{Error: pkgsync.ErrorKindIneligible})
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedResult: &pkgsync.RefreshResult{Error: pkgsync.ErrorKindIneligible},
		},
		{
			name: "storage unavailable",
			path: "/vehicles/" + vehicleID.String() + "/refresh",
			setupMock: func(m *mocks.MockSyncService) {
				m.EXPECT().RefreshVehicle(gomock.Any(), vehicleID).
					Return(pkgsync.RefreshResult{Error: pkgsync.ErrorKindStorage})
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedResult: &pkgsync.RefreshResult{Error: pkgsync.ErrorKindStorage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			svc := mocks.NewMockSyncService(ctrl)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			rr := httptest.NewRecorder()
			Router(svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedResult == nil {
				return
			}

			var got pkgsync.RefreshResult
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			assert.Equal(t, *tt.expectedResult, got)
		})
	}
}

func TestGetStats(t *testing.T) {
	t.Parallel()

	t.Run("tenant query is passed through", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		svc := mocks.NewMockSyncService(ctrl)
		svc.EXPECT().GetStats(gomock.Any(), "dealer-1").Return(&stats.Stats{
			Total:          10,
			WithData:       7,
			NeedingRefresh: 3,
			ValidStatus:    5,
			ExpiredStatus:  1,
			UnknownStatus:  1,
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/stats?tenantId=dealer-1", nil)
		rr := httptest.NewRecorder()
		Router(svc).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got stats.Stats
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, 10, got.Total)
		assert.Equal(t, 3, got.NeedingRefresh)
	})

	t.Run("all tenants", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		svc := mocks.NewMockSyncService(ctrl)
		svc.EXPECT().GetStats(gomock.Any(), "").Return(&stats.Stats{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		rr := httptest.NewRecorder()
		Router(svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("malformed tenant", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		svc := mocks.NewMockSyncService(ctrl)
		svc.EXPECT().GetStats(gomock.Any(), "dealer_").Return(nil, service.ErrInvalidTenantID)

		req := httptest.NewRequest(http.MethodGet, "/stats?tenantId=dealer_", nil)
		rr := httptest.NewRecorder()
		Router(svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		svc := mocks.NewMockSyncService(ctrl)
		svc.EXPECT().GetStats(gomock.Any(), "").Return(nil, errors.New("connection reset"))

		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		rr := httptest.NewRecorder()
		Router(svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "connection reset")
	})
}

func TestGetSweepStatuses(t *testing.T) {
	t.Parallel()

	t.Run("keyed by scope", func(t *testing.T) {
		t.Parallel()

		finished := time.Date(2026, 3, 1, 2, 30, 0, 0, time.UTC)
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockSyncService(ctrl)
		svc.EXPECT().GetSweepStatuses(gomock.Any()).Return(map[string]*state.SweepStatus{
			state.AllTenants: {Phase: state.SweepPhaseComplete, LastSweepTime: &finished, Candidates: 4, Updated: 4},
			"dealer-1":       {Phase: state.SweepPhaseRunning, AttemptCount: 1},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/sweeps/status", nil)
		rr := httptest.NewRecorder()
		Router(svc).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got struct {
			Sweeps map[string]state.SweepStatus `json:"sweeps"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got.Sweeps, 2)
		assert.Equal(t, state.SweepPhaseComplete, got.Sweeps["*"].Phase)
		assert.Equal(t, 4, got.Sweeps["*"].Updated)
		require.NotNil(t, got.Sweeps["*"].LastSweepTime)
		assert.True(t, got.Sweeps["*"].LastSweepTime.Equal(finished))
		assert.Equal(t, state.SweepPhaseRunning, got.Sweeps["dealer-1"].Phase)
	})

	t.Run("storage failure", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		svc := mocks.NewMockSyncService(ctrl)
		svc.EXPECT().GetSweepStatuses(gomock.Any()).Return(nil, errors.New("connection reset"))

		req := httptest.NewRequest(http.MethodGet, "/sweeps/status", nil)
		rr := httptest.NewRecorder()
		Router(svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "connection reset")
	})
}

func TestHealthRouter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		path           string
		setupMock      func(*mocks.MockSyncService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "health",
			path:           "/health",
			setupMock:      func(*mocks.MockSyncService) {},
			expectedStatus: http.StatusOK,
			expectedBody:   "healthy",
		},
		{
			name: "ready",
			path: "/readiness",
			setupMock: func(m *mocks.MockSyncService) {
				m.EXPECT().CheckReadiness(gomock.Any()).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "ready",
		},
		{
			name: "not ready",
			path: "/readiness",
			setupMock: func(m *mocks.MockSyncService) {
				m.EXPECT().CheckReadiness(gomock.Any()).Return(errors.New("storage not ready: dial tcp"))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "service not ready",
		},
		{
			name:           "version",
			path:           "/version",
			setupMock:      func(*mocks.MockSyncService) {},
			expectedStatus: http.StatusOK,
			expectedBody:   `"go_version"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			svc := mocks.NewMockSyncService(ctrl)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rr := httptest.NewRecorder()
			HealthRouter(svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
		})
	}
}
