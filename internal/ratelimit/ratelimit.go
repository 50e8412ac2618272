package ratelimit

import (
	"sync"
	"time"
)

// RateLimiter caps how many requests may be made in sliding minute, hour and
// day windows. A zero limit leaves that window unbounded.
type RateLimiter struct {
	windows [3]window
	enabled bool
	now     func() time.Time
	mu      sync.Mutex
}

type window struct {
	span  time.Duration
	limit int
	hits  []time.Time
}

// NewRateLimiter creates a new rate limiter with the given limits
func NewRateLimiter(requestsPerMinute, requestsPerHour, requestsPerDay int, enabled bool) *RateLimiter {
	return &RateLimiter{
		windows: [3]window{
			{span: time.Minute, limit: requestsPerMinute},
			{span: time.Hour, limit: requestsPerHour},
			{span: 24 * time.Hour, limit: requestsPerDay},
		},
		enabled: enabled,
		now:     time.Now,
	}
}

// NewDailyQuota is a limiter that only bounds the trailing 24 hours
func NewDailyQuota(perDay int) *RateLimiter {
	return NewRateLimiter(0, 0, perDay, perDay > 0)
}

// SetClock replaces the time source
func (rl *RateLimiter) SetClock(now func() time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.now = now
}

// AllowRequest records a request and returns true, or returns false without
// recording when any window is full.
func (rl *RateLimiter) AllowRequest() bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.cleanup(now)

	for i := range rl.windows {
		w := &rl.windows[i]
		if w.limit > 0 && len(w.hits) >= w.limit {
			return false
		}
	}
	for i := range rl.windows {
		rl.windows[i].hits = append(rl.windows[i].hits, now)
	}
	return true
}

func (rl *RateLimiter) cleanup(now time.Time) {
	for i := range rl.windows {
		w := &rl.windows[i]
		cutoff := now.Add(-w.span)
		kept := w.hits[:0]
		for _, t := range w.hits {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		w.hits = kept
	}
}

// Stats contains rate limiter statistics
type Stats struct {
	Enabled            bool `json:"enabled"`
	RequestsLastMinute int  `json:"requests_last_minute"`
	RequestsLastHour   int  `json:"requests_last_hour"`
	RequestsLastDay    int  `json:"requests_last_day"`
	LimitPerDay        int  `json:"limit_per_day"`
	RemainingToday     int  `json:"remaining_today"` // -1 when unbounded
}

// GetStats returns current rate limiter statistics
func (rl *RateLimiter) GetStats() Stats {
	if !rl.enabled {
		return Stats{Enabled: false, RemainingToday: -1}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.cleanup(rl.now())

	day := rl.windows[2]
	remaining := -1
	if day.limit > 0 {
		remaining = max(0, day.limit-len(day.hits))
	}
	return Stats{
		Enabled:            true,
		RequestsLastMinute: len(rl.windows[0].hits),
		RequestsLastHour:   len(rl.windows[1].hits),
		RequestsLastDay:    len(day.hits),
		LimitPerDay:        day.limit,
		RemainingToday:     remaining,
	}
}

// Reset clears all tracked requests
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for i := range rl.windows {
		rl.windows[i].hits = nil
	}
}
