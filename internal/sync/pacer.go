package sync

import (
	"context"
	"time"

	"k8s.io/utils/clock"
)

//go:generate mockgen -destination=mocks/mock_pacer.go -package=mocks github.com/mydv/vrsync/internal/sync Pacer

// Pacer waits between registry requests
type Pacer interface {
	// Pause blocks for d or until ctx is done, returning ctx.Err() in the
	// latter case. A non-positive d only checks ctx.
	Pause(ctx context.Context, d time.Duration) error
}

// ClockPacer pauses on a clock.Clock
type ClockPacer struct {
	Clock clock.Clock
}

// NewClockPacer returns a pacer on the real clock
func NewClockPacer() *ClockPacer {
	return &ClockPacer{Clock: clock.RealClock{}}
}

// Pause implements Pacer
func (p *ClockPacer) Pause(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := p.Clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C():
		return nil
	}
}
