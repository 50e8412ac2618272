package scheduler

import (
	"context"
	"errors"
	"log"
	"property-backoffice/internal/cleanup"
	"property-backoffice/internal/config"
	"property-backoffice/internal/geocode"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the geocoding batch and delete log pruning on cron schedules
type Scheduler struct {
	cron       *cron.Cron
	geocoder   *geocode.Service
	config     config.GeocodingConfig
	cleaner    *cleanup.Service
	cleanupCfg config.CleanupConfig
	isRunning  bool
}

// NewScheduler creates a new scheduler. svc may be nil when geocoding is disabled.
func NewScheduler(svc *geocode.Service, cfg config.GeocodingConfig) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		geocoder: svc,
		config:   cfg,
	}
}

// WithCleanup adds the delete log pruning job
func (s *Scheduler) WithCleanup(svc *cleanup.Service, cfg config.CleanupConfig) *Scheduler {
	s.cleaner = svc
	s.cleanupCfg = cfg
	return s
}

// Start registers the enabled jobs and starts the cron runner
func (s *Scheduler) Start() error {
	if s.geocoder != nil && s.config.Enabled && s.config.ScheduleEnabled {
		_, err := s.cron.AddFunc(s.config.Schedule, func() {
			log.Println("[Scheduler] Starting scheduled geocoding batch...")
			if _, err := s.RunNow(context.Background()); err != nil {
				log.Printf("[Scheduler] Geocoding batch failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
		log.Printf("[Scheduler] Geocoding job registered (cron: %s)", s.config.Schedule)
	} else {
		log.Println("[Scheduler] Geocoding schedule is disabled in configuration")
	}

	if s.cleaner != nil && s.cleanupCfg.ScheduleEnabled && s.cleanupCfg.RetentionDays > 0 {
		_, err := s.cron.AddFunc(s.cleanupCfg.Schedule, func() {
			log.Println("[Scheduler] Starting scheduled delete log cleanup...")
			if _, err := s.RunCleanup(context.Background()); err != nil {
				log.Printf("[Scheduler] Cleanup failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
		log.Printf("[Scheduler] Cleanup job registered (cron: %s)", s.cleanupCfg.Schedule)
	}

	if s.Entries() == 0 {
		return nil
	}
	s.cron.Start()
	s.isRunning = true
	log.Printf("[Scheduler] Started with %d job(s)", s.Entries())
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	if s.isRunning {
		<-s.cron.Stop().Done()
		s.isRunning = false
		log.Println("[Scheduler] Stopped")
	}
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// RunNow runs one geocoding batch immediately with the configured batch limit
func (s *Scheduler) RunNow(ctx context.Context) (*geocode.BatchResult, error) {
	if s.geocoder == nil {
		return nil, nil
	}
	result, err := s.geocoder.GeocodeMissing(ctx, s.config.BatchLimit)
	if errors.Is(err, geocode.ErrBatchRunning) {
		log.Println("[Scheduler] Previous geocoding batch still running, skipping")
		return nil, nil
	}
	return result, err
}

// RunCleanup prunes the delete log with the configured retention
func (s *Scheduler) RunCleanup(ctx context.Context) (*cleanup.Result, error) {
	if s.cleaner == nil {
		return nil, nil
	}
	return s.cleaner.PruneDeleteLogs(ctx, cleanup.OptionsFromConfig(s.cleanupCfg))
}
