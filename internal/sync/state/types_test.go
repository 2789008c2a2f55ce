package state

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgsync "github.com/mydv/vrsync/internal/sync"
)

func TestScope(t *testing.T) {
	t.Parallel()

	assert.Equal(t, AllTenants, Scope(""))
	assert.Equal(t, "dealer-1", Scope("dealer-1"))
}

func TestMarkRunning(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &SweepStatus{Phase: SweepPhaseFailed, Message: "boom", AttemptCount: 2}

	require.True(t, MarkRunning(now)(s))
	assert.Equal(t, SweepPhaseRunning, s.Phase)
	assert.Empty(t, s.Message)
	assert.Equal(t, 3, s.AttemptCount)
	require.NotNil(t, s.LastAttempt)
	assert.True(t, s.LastAttempt.Equal(now))
}

func TestMarkFinished(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	finished := now.Add(-time.Minute)
	earlier := now.Add(-24 * time.Hour)

	tests := []struct {
		name          string
		report        *pkgsync.SweepReport
		err           error
		wantPhase     SweepPhase
		wantMessage   string
		wantSweepTime *time.Time
		wantAttempts  int
		wantProcessed int
	}{
		{
			name: "complete sweep resets attempts",
			report: &pkgsync.SweepReport{
				Candidates: 3, Processed: 3, Updated: 2, Errors: 1, FinishedAt: finished,
			},
			wantPhase:     SweepPhaseComplete,
			wantSweepTime: &finished,
			wantAttempts:  0,
			wantProcessed: 3,
		},
		{
			name:          "complete sweep without finish time uses now",
			report:        &pkgsync.SweepReport{},
			wantPhase:     SweepPhaseComplete,
			wantSweepTime: &now,
			wantAttempts:  0,
		},
		{
			name: "cancelled sweep keeps last sweep time",
			report: &pkgsync.SweepReport{
				Candidates: 3, Processed: 1, Updated: 1, Cancelled: true, FinishedAt: finished,
			},
			wantPhase:     SweepPhaseCancelled,
			wantSweepTime: &earlier,
			wantAttempts:  1,
			wantProcessed: 1,
		},
		{
			name:          "failed selection records message",
			err:           errors.New("failed to select sweep candidates: db down"),
			wantPhase:     SweepPhaseFailed,
			wantMessage:   "failed to select sweep candidates: db down",
			wantSweepTime: &earlier,
			wantAttempts:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			last := earlier
			s := &SweepStatus{Phase: SweepPhaseRunning, LastSweepTime: &last, AttemptCount: 1}

			require.True(t, MarkFinished(tt.report, tt.err, now)(s))
			assert.Equal(t, tt.wantPhase, s.Phase)
			assert.Equal(t, tt.wantMessage, s.Message)
			assert.Equal(t, tt.wantAttempts, s.AttemptCount)
			assert.Equal(t, tt.wantProcessed, s.Processed)
			require.NotNil(t, s.LastSweepTime)
			assert.True(t, s.LastSweepTime.Equal(*tt.wantSweepTime))
		})
	}
}
