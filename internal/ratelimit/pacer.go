package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Pacer spaces sequential calls to an external service at least interval apart.
// Nominatim's usage policy allows one request per second, so the geocoder runs
// behind a Pacer with a little over that.
type Pacer struct {
	interval time.Duration
	mu       sync.Mutex
	last     time.Time
	now      func() time.Time
}

// NewPacer creates a pacer. A non-positive interval disables waiting.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval, now: time.Now}
}

// Wait blocks until interval has passed since the previous call returned,
// or until ctx is done. The first call never waits.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interval > 0 && !p.last.IsZero() {
		if wait := p.interval - p.now().Sub(p.last); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	p.last = p.now()
	return nil
}

// Interval returns the configured spacing
func (p *Pacer) Interval() time.Duration {
	return p.interval
}
