package geocode

import (
	"context"
	"errors"
	"log"
	"property-backoffice/internal/models"
	"property-backoffice/internal/ratelimit"
	"sync"
	"time"
)

// ErrBatchRunning is returned when a batch is requested while one is in progress
var ErrBatchRunning = errors.New("geocode batch already running")

// Store is the persistence the batch needs
type Store interface {
	PropertiesMissingCoordinates(ctx context.Context, limit int) ([]models.Property, error)
	SetCoordinates(ctx context.Context, id uint, lat, lng float64, at time.Time) error
}

// Item outcomes
const (
	StatusGeocoded = "geocoded"
	StatusNoMatch  = "no_match"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
)

// ItemResult is the outcome for one property
type ItemResult struct {
	PropertyID uint    `json:"property_id"`
	Address    string  `json:"address"`
	Status     string  `json:"status"`
	Lat        float64 `json:"lat,omitempty"`
	Lng        float64 `json:"lng,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// BatchResult summarizes a GeocodeMissing run
type BatchResult struct {
	Total    int          `json:"total"`
	Geocoded int          `json:"geocoded"`
	Missed   int          `json:"missed"`
	Failed   int          `json:"failed"`
	Skipped  int          `json:"skipped"`
	Items    []ItemResult `json:"items"`
}

func (r *BatchResult) add(item ItemResult) {
	r.Items = append(r.Items, item)
	switch item.Status {
	case StatusGeocoded:
		r.Geocoded++
	case StatusNoMatch:
		r.Missed++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	}
}

// Service fills in coordinates for properties that have none
type Service struct {
	geocoder Geocoder
	store    Store
	pacer    *ratelimit.Pacer
	quota    *ratelimit.RateLimiter
	breaker  *CircuitBreaker
	now      func() time.Time

	// OnUpdated runs after a batch that stored at least one coordinate
	OnUpdated func(ctx context.Context)

	running sync.Mutex
}

// NewService creates a geocoding service. quota may be nil.
func NewService(g Geocoder, store Store, pacer *ratelimit.Pacer, quota *ratelimit.RateLimiter) *Service {
	return &Service{
		geocoder: g,
		store:    store,
		pacer:    pacer,
		quota:    quota,
		now:      time.Now,
	}
}

// WithBreaker stops batches early while the service keeps failing
func (s *Service) WithBreaker(cb *CircuitBreaker) *Service {
	s.breaker = cb
	return s
}

// BreakerStatus returns the breaker state, or nil without a breaker
func (s *Service) BreakerStatus() *BreakerStatus {
	if s.breaker == nil {
		return nil
	}
	status := s.breaker.Status()
	return &status
}

// QuotaStats reports the daily quota usage
func (s *Service) QuotaStats() ratelimit.Stats {
	if s.quota == nil {
		return ratelimit.Stats{RemainingToday: -1}
	}
	return s.quota.GetStats()
}

// GeocodeMissing geocodes up to limit properties lacking coordinates, one at a
// time behind the pacer. Misses and failures are recorded per item and never stop
// the batch; only a cancelled context or a failed listing ends it early.
func (s *Service) GeocodeMissing(ctx context.Context, limit int) (*BatchResult, error) {
	if !s.running.TryLock() {
		return nil, ErrBatchRunning
	}
	defer s.running.Unlock()

	properties, err := s.store.PropertiesMissingCoordinates(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Total: len(properties), Items: make([]ItemResult, 0, len(properties))}
	log.Printf("[Geocode] Starting batch for %d properties", len(properties))

	quotaExhausted := false
	for i := range properties {
		p := &properties[i]
		item := ItemResult{PropertyID: p.ID, Address: p.FullAddress()}

		switch {
		case ctx.Err() != nil:
			item.Status = StatusSkipped
			item.Error = ctx.Err().Error()
		case item.Address == "":
			item.Status = StatusSkipped
			item.Error = "no address"
		case s.breaker != nil && !s.breaker.CanProceed():
			item.Status = StatusSkipped
			item.Error = "geocoder unavailable"
		case quotaExhausted || (s.quota != nil && !s.quota.AllowRequest()):
			quotaExhausted = true
			item.Status = StatusSkipped
			item.Error = "daily quota exhausted"
		default:
			s.geocodeOne(ctx, &item)
		}
		result.add(item)
	}

	log.Printf("[Geocode] Batch done: %d geocoded, %d no match, %d failed, %d skipped",
		result.Geocoded, result.Missed, result.Failed, result.Skipped)

	if result.Geocoded > 0 && s.OnUpdated != nil {
		s.OnUpdated(ctx)
	}
	return result, ctx.Err()
}

func (s *Service) geocodeOne(ctx context.Context, item *ItemResult) {
	if err := s.pacer.Wait(ctx); err != nil {
		item.Status = StatusSkipped
		item.Error = err.Error()
		return
	}

	point, err := s.geocoder.Geocode(ctx, item.Address)
	if s.breaker != nil && ctx.Err() == nil {
		if err == nil || errors.Is(err, ErrNoMatch) {
			s.breaker.RecordSuccess()
		} else {
			s.breaker.RecordFailure(err)
		}
	}
	switch {
	case errors.Is(err, ErrNoMatch):
		log.Printf("[Geocode] No match for property %d (%s)", item.PropertyID, item.Address)
		item.Status = StatusNoMatch
		return
	case err != nil:
		log.Printf("[Geocode] Failed for property %d: %v", item.PropertyID, err)
		item.Status = StatusFailed
		item.Error = err.Error()
		return
	}

	if err := s.store.SetCoordinates(ctx, item.PropertyID, point.Lat, point.Lng, s.now()); err != nil {
		log.Printf("[Geocode] Failed to save coordinates for property %d: %v", item.PropertyID, err)
		item.Status = StatusFailed
		item.Error = err.Error()
		return
	}
	item.Status = StatusGeocoded
	item.Lat = point.Lat
	item.Lng = point.Lng
}
