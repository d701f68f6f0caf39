package ingestion

import (
	"context"
	"time"
)

// DefaultPoliteDelay is the pause between successive article fetches.
const DefaultPoliteDelay = time.Second

// Pacer spaces out requests to the article source.
type Pacer interface {
	// Wait blocks until the next request may be issued or ctx is done.
	Wait(ctx context.Context) error
}

// FixedPacer waits the same delay every time, whatever happened before.
type FixedPacer struct {
	delay time.Duration
}

var _ Pacer = (*FixedPacer)(nil)

// NewFixedPacer creates a pacer with the given delay. A non-positive delay
// never waits.
func NewFixedPacer(delay time.Duration) *FixedPacer {
	return &FixedPacer{delay: delay}
}

// Delay returns the configured delay.
func (p *FixedPacer) Delay() time.Duration {
	return p.delay
}

// Wait sleeps for the delay, returning early with ctx.Err() on cancellation.
func (p *FixedPacer) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
