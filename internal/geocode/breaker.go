package geocode

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"
)

// CircuitBreaker stops a batch when the geocoding service keeps failing.
// Two consecutive 403/429/5xx answers open it at once; otherwise it opens
// after failureThreshold consecutive failures. It closes again once
// resetTimeout has passed since the last failure.
type CircuitBreaker struct {
	failureThreshold int
	resetTimeout     time.Duration
	now              func() time.Time

	mutex               sync.Mutex
	consecutiveFailures int
	blockedInARow       int
	failures            int
	totalRequests       int
	isOpen              bool
	lastFailureTime     time.Time
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
	}
}

// RecordSuccess records a request that got an answer, match or not
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.totalRequests++
	cb.consecutiveFailures = 0
	cb.blockedInARow = 0
}

// RecordFailure records a failed request
func (cb *CircuitBreaker) RecordFailure(err error) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failures++
	cb.totalRequests++
	cb.consecutiveFailures++
	cb.lastFailureTime = cb.now()

	var statusErr *StatusError
	if errors.As(err, &statusErr) && blockingStatus(statusErr.Code) {
		cb.blockedInARow++
	} else {
		cb.blockedInARow = 0
	}

	if cb.isOpen {
		return
	}
	if cb.blockedInARow >= 2 || cb.consecutiveFailures >= cb.failureThreshold {
		cb.isOpen = true
		log.Printf("[Geocode] Circuit breaker open after %d consecutive failures (last: %v); retry after %v",
			cb.consecutiveFailures, err, cb.resetTimeout)
	}
}

// CanProceed reports whether requests are allowed
func (cb *CircuitBreaker) CanProceed() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if !cb.isOpen {
		return true
	}
	if cb.now().Sub(cb.lastFailureTime) > cb.resetTimeout {
		log.Printf("[Geocode] Circuit breaker half-open after %v", cb.resetTimeout)
		cb.isOpen = false
		cb.consecutiveFailures = 0
		cb.blockedInARow = 0
		return true
	}
	return false
}

// BreakerStatus is the breaker state reported by the stats endpoint
type BreakerStatus struct {
	Open          bool `json:"open"`
	Failures      int  `json:"failures"`
	TotalRequests int  `json:"total_requests"`
}

// Status returns the current breaker state
func (cb *CircuitBreaker) Status() BreakerStatus {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return BreakerStatus{Open: cb.isOpen, Failures: cb.failures, TotalRequests: cb.totalRequests}
}

func blockingStatus(code int) bool {
	return code == http.StatusForbidden || code == http.StatusTooManyRequests || code >= 500
}
