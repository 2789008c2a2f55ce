package state

import (
	"time"

	pkgsync "github.com/mydv/vrsync/internal/sync"
)

// AllTenants is the scope of sweeps that are not restricted to one tenant
const AllTenants = "*"

// SweepPhase is the state of the most recent sweep of a scope
type SweepPhase string

const (
	// SweepPhasePending means no sweep of the scope has started yet
	SweepPhasePending SweepPhase = "Pending"

	// SweepPhaseRunning means a sweep is in progress
	SweepPhaseRunning SweepPhase = "Running"

	// SweepPhaseComplete means the last sweep processed every candidate
	SweepPhaseComplete SweepPhase = "Complete"

	// SweepPhaseCancelled means the last sweep was stopped part way
	SweepPhaseCancelled SweepPhase = "Cancelled"

	// SweepPhaseFailed means the last sweep could not select its candidates
	SweepPhaseFailed SweepPhase = "Failed"
)

// SweepStatus is the persisted state of the sweeps of one scope
type SweepStatus struct {
	Phase SweepPhase `json:"phase"`

	// Message holds the failure of the last sweep, if any
	Message string `json:"message,omitempty"`

	// LastAttempt is when the most recent sweep started
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`

	// LastSweepTime is when the most recent sweep that processed every
	// candidate finished
	LastSweepTime *time.Time `json:"lastSweepTime,omitempty"`

	// AttemptCount is the number of sweeps started since the last complete one
	AttemptCount int `json:"attemptCount"`

	// Counts of the most recent finished sweep
	Candidates int `json:"candidates"`
	Processed  int `json:"processed"`
	Updated    int `json:"updated"`
	Errors     int `json:"errors"`
}

// Scope returns the status scope of a sweep restricted to tenantID
func Scope(tenantID string) string {
	if tenantID == "" {
		return AllTenants
	}
	return tenantID
}

// MarkRunning returns an update that records a sweep starting at now
func MarkRunning(now time.Time) func(*SweepStatus) bool {
	return func(s *SweepStatus) bool {
		s.Phase = SweepPhaseRunning
		s.Message = ""
		s.LastAttempt = &now
		s.AttemptCount++
		return true
	}
}

// MarkFinished returns an update that records the end of a sweep. err is the
// error returned by the sweep; report may be nil when err is set.
func MarkFinished(report *pkgsync.SweepReport, err error, now time.Time) func(*SweepStatus) bool {
	return func(s *SweepStatus) bool {
		if err != nil {
			s.Phase = SweepPhaseFailed
			s.Message = err.Error()
			return true
		}

		s.Message = ""
		s.Candidates = report.Candidates
		s.Processed = report.Processed
		s.Updated = report.Updated
		s.Errors = report.Errors

		if report.Cancelled {
			s.Phase = SweepPhaseCancelled
			return true
		}

		finished := report.FinishedAt
		if finished.IsZero() {
			finished = now
		}
		s.Phase = SweepPhaseComplete
		s.LastSweepTime = &finished
		s.AttemptCount = 0
		return true
	}
}

func (s *SweepStatus) clone() *SweepStatus {
	c := *s
	if s.LastAttempt != nil {
		t := *s.LastAttempt
		c.LastAttempt = &t
	}
	if s.LastSweepTime != nil {
		t := *s.LastSweepTime
		c.LastSweepTime = &t
	}
	return &c
}
